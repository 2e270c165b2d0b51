// Package responses maps domain results onto client payloads.
package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/export"
)

// ErrorResponse is the error envelope for non-streaming endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// HandleError aborts the request with the given status and message.
func HandleError(reqCtx *gin.Context, statusCode int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Message = err.Error()
	}
	reqCtx.AbortWithStatusJSON(statusCode, resp)
}

// NotFound aborts with a 404 envelope.
func NotFound(reqCtx *gin.Context, message string) {
	reqCtx.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: message})
}

// SlidePayload is one slide returned to clients.
type SlidePayload struct {
	Index   int         `json:"index"`
	Status  string      `json:"status"`
	Content interface{} `json:"content,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// PresentationPayload is returned to clients reading a deck back.
type PresentationPayload struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Model      string         `json:"model"`
	Status     string         `json:"status"`
	SlideCount int            `json:"slide_count"`
	Outline    interface{}    `json:"outline,omitempty"`
	Slides     []SlidePayload `json:"slides,omitempty"`
	Error      interface{}    `json:"error,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
	CreatedAt  int64          `json:"created_at"`
}

// FromPresentation maps the domain aggregate to the client payload.
func FromPresentation(p *deck.Presentation) PresentationPayload {
	payload := PresentationPayload{
		ID:         p.PublicID,
		Title:      p.Title,
		Model:      p.Model,
		Status:     p.Status.String(),
		SlideCount: p.SlideCount,
		Warnings:   p.Warnings,
		CreatedAt:  p.CreatedAt.Unix(),
	}
	if p.Outline != nil {
		payload.Outline = p.Outline
	}
	if p.Error != nil {
		payload.Error = p.Error
	}
	for _, s := range p.Slides {
		sp := SlidePayload{Index: s.Index, Status: s.Status.String()}
		if s.Content != nil {
			sp.Content = s.Content
		}
		if s.Error != nil {
			sp.Error = s.Error
		}
		payload.Slides = append(payload.Slides, sp)
	}
	return payload
}

// ExportJobPayload is returned for queued and finished export jobs.
type ExportJobPayload struct {
	ID             string                       `json:"id"`
	PresentationID string                       `json:"presentation_id,omitempty"`
	Status         string                       `json:"status"`
	Document       *export.PresentationDocument `json:"document,omitempty"`
	Error          interface{}                  `json:"error,omitempty"`
	CreatedAt      int64                        `json:"created_at"`
}

// FromExportJob maps the domain job to the client payload.
func FromExportJob(job *deck.ExportJob, presentationPublicID string) ExportJobPayload {
	payload := ExportJobPayload{
		ID:             job.PublicID,
		PresentationID: presentationPublicID,
		Status:         job.Status.String(),
		Document:       job.Document,
		CreatedAt:      job.CreatedAt.Unix(),
	}
	if job.Error != nil {
		payload.Error = job.Error
	}
	return payload
}
