package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/infrastructure/metrics"
	"deck-server/internal/infrastructure/repository/exportjob"
	"deck-server/internal/infrastructure/repository/presentation"
	"deck-server/internal/interfaces/httpserver/dto"
	"deck-server/internal/interfaces/httpserver/responses"
)

// ExportHandler serves document model builds, synchronous and queued.
type ExportHandler struct {
	service *deck.ExportService
	log     zerolog.Logger
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service *deck.ExportService, log zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		log:     log.With().Str("handler", "export").Logger(),
	}
}

// Create builds a document model from extracted element records. With async
// set, the build is queued and a job payload is returned instead.
// POST /v1/exports
func (h *ExportHandler) Create(reqCtx *gin.Context) {
	var req dto.ExportRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.HandleError(reqCtx, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		responses.HandleError(reqCtx, http.StatusBadRequest, "invalid request", err)
		return
	}

	if req.Async {
		job, err := h.service.Enqueue(reqCtx.Request.Context(), req.PresentationID, req.Slides)
		if err != nil {
			if errors.Is(err, presentation.ErrNotFound) {
				responses.NotFound(reqCtx, "presentation not found")
				return
			}
			responses.HandleError(reqCtx, http.StatusInternalServerError, "failed to enqueue export", err)
			return
		}
		reqCtx.JSON(http.StatusAccepted, responses.FromExportJob(job, req.PresentationID))
		return
	}

	doc := h.service.BuildDocument(req.Slides)
	for _, s := range doc.Slides {
		for _, shape := range s.Shapes {
			metrics.ShapesClassified.WithLabelValues(string(shape.Kind)).Inc()
		}
	}
	reqCtx.JSON(http.StatusOK, doc)
}

// GetJob returns the current state of an export job.
// GET /v1/exports/:id
func (h *ExportHandler) GetJob(reqCtx *gin.Context) {
	publicID := reqCtx.Param("id")

	job, err := h.service.GetJob(reqCtx.Request.Context(), publicID)
	if err != nil {
		if errors.Is(err, exportjob.ErrNotFound) {
			responses.NotFound(reqCtx, "export job not found")
			return
		}
		responses.HandleError(reqCtx, http.StatusInternalServerError, "failed to load export job", err)
		return
	}

	reqCtx.JSON(http.StatusOK, responses.FromExportJob(job, ""))
}
