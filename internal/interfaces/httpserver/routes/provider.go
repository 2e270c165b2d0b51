// Package routes registers the versioned API surface.
package routes

import (
	"github.com/gin-gonic/gin"

	"deck-server/internal/interfaces/httpserver/handlers"
)

// Provider registers all API routes.
type Provider struct {
	handlers *handlers.Provider
}

// NewProvider creates a new route provider.
func NewProvider(h *handlers.Provider) *Provider {
	return &Provider{handlers: h}
}

// Register mounts the v1 API onto the engine.
func (p *Provider) Register(router *gin.Engine) {
	v1 := router.Group("/v1")

	presentations := v1.Group("/presentations")
	presentations.POST("/generate", p.handlers.Deck.Generate)
	presentations.GET("/:id", p.handlers.Deck.Get)

	exports := v1.Group("/exports")
	exports.POST("", p.handlers.Export.Create)
	exports.GET("/:id", p.handlers.Export.GetJob)
}
