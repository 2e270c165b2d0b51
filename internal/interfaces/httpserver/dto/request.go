// Package dto defines the HTTP request and response payloads.
package dto

import (
	"fmt"
	"strings"

	"deck-server/internal/domain/export"
	"deck-server/internal/domain/slide"
)

// OutlineEntryRequest is one pre-planned slide supplied by the caller.
type OutlineEntryRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary,omitempty"`
}

// GenerateDeckRequest creates a deck and streams its generation.
type GenerateDeckRequest struct {
	Prompt     string                `json:"prompt"`
	Title      string                `json:"title,omitempty"`
	SlideCount int                   `json:"slide_count,omitempty"`
	Model      string                `json:"model,omitempty"`
	Outline    []OutlineEntryRequest `json:"outline,omitempty"`
}

// Validate checks request invariants before any work starts.
func (r *GenerateDeckRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" && len(r.Outline) == 0 {
		return fmt.Errorf("either prompt or outline is required")
	}
	if r.SlideCount < 0 {
		return fmt.Errorf("slide_count must not be negative")
	}
	return nil
}

// DomainOutline converts the supplied outline, or returns nil when absent.
func (r *GenerateDeckRequest) DomainOutline() *slide.Outline {
	if len(r.Outline) == 0 {
		return nil
	}
	outline := &slide.Outline{Slides: make([]slide.OutlineEntry, len(r.Outline))}
	for i, entry := range r.Outline {
		outline.Slides[i] = slide.OutlineEntry{Title: entry.Title, Summary: entry.Summary}
	}
	return outline
}

// ExportRequest carries the extracted element attribute records for a
// rendered presentation. The slide arrays are immutable once bound.
type ExportRequest struct {
	PresentationID string                `json:"presentation_id" binding:"required"`
	Async          bool                  `json:"async,omitempty"`
	Slides         []export.SlideExtract `json:"slides" binding:"required"`
}

// Validate checks request invariants before any work starts.
func (r *ExportRequest) Validate() error {
	if len(r.Slides) == 0 {
		return fmt.Errorf("slides must not be empty")
	}
	return nil
}
