package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/infrastructure/metrics"
	"deck-server/internal/infrastructure/observability"
	"deck-server/internal/infrastructure/repository/presentation"
	"deck-server/internal/interfaces/httpserver/dto"
	"deck-server/internal/interfaces/httpserver/responses"
)

// DeckHandler serves deck generation and retrieval.
type DeckHandler struct {
	service   *deck.Service
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewDeckHandler creates a new deck handler.
func NewDeckHandler(service *deck.Service, heartbeat time.Duration, log zerolog.Logger) *DeckHandler {
	return &DeckHandler{
		service:   service,
		heartbeat: heartbeat,
		log:       log.With().Str("handler", "deck").Logger(),
	}
}

// Generate creates a presentation and streams its generation over SSE.
// POST /v1/presentations/generate
func (h *DeckHandler) Generate(reqCtx *gin.Context) {
	var req dto.GenerateDeckRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleError(reqCtx, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		responses.HandleError(reqCtx, http.StatusBadRequest, "invalid request", err)
		return
	}

	flusher, ok := reqCtx.Writer.(http.Flusher)
	if !ok {
		responses.HandleError(reqCtx, http.StatusInternalServerError, "streaming unsupported", nil)
		return
	}

	reqCtx.Header("Content-Type", "text/event-stream")
	reqCtx.Header("Cache-Control", "no-cache")
	reqCtx.Header("Connection", "keep-alive")
	reqCtx.Header("X-Accel-Buffering", "no")
	reqCtx.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	metrics.ActiveStreams.Inc()
	defer metrics.ActiveStreams.Dec()
	started := time.Now()

	encoder := newSSEEncoder(reqCtx.Writer, flusher, h.heartbeat, h.log)
	encoder.start()
	defer encoder.stop()

	ctx, span := observability.StartGenerationSpan(reqCtx.Request.Context(), "", req.Model, req.SlideCount)
	defer span.End()

	result, err := h.service.Generate(ctx, deck.GenerateRequest{
		Prompt:     req.Prompt,
		Title:      req.Title,
		SlideCount: req.SlideCount,
		Model:      req.Model,
		Outline:    req.DomainOutline(),
	}, encoder)
	metrics.GenerationDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		observability.RecordError(span, err, "generation")
		if errors.Is(err, context.Canceled) {
			// The client disconnected; there is nobody left to write to.
			h.log.Info().Msg("generation stream cancelled by client")
			return
		}
		h.log.Error().Err(err).Msg("deck generation failed")
		encoder.SendError(err.Error())
		return
	}

	encoder.SendComplete(result.Presentation.PublicID, result.Warnings)
}

// Get returns a stored presentation with its slides.
// GET /v1/presentations/:id
func (h *DeckHandler) Get(reqCtx *gin.Context) {
	publicID := reqCtx.Param("id")

	p, err := h.service.GetByPublicID(reqCtx.Request.Context(), publicID)
	if err != nil {
		if errors.Is(err, presentation.ErrNotFound) {
			responses.NotFound(reqCtx, "presentation not found")
			return
		}
		responses.HandleError(reqCtx, http.StatusInternalServerError, "failed to load presentation", err)
		return
	}

	reqCtx.JSON(http.StatusOK, responses.FromPresentation(p))
}
