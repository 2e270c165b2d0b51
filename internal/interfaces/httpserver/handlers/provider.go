// Package handlers contains the HTTP and SSE request handlers.
package handlers

import (
	"github.com/rs/zerolog"

	"deck-server/internal/config"
	"deck-server/internal/domain/deck"
)

// Provider aggregates the request handlers.
type Provider struct {
	Deck   *DeckHandler
	Export *ExportHandler
}

// NewProvider wires the handlers to their services.
func NewProvider(deckService *deck.Service, exportService *deck.ExportService, cfg *config.Config, log zerolog.Logger) *Provider {
	return &Provider{
		Deck:   NewDeckHandler(deckService, cfg.HeartbeatInterval, log),
		Export: NewExportHandler(exportService, log),
	}
}
