// Package deck owns the presentation aggregate: outline and slide generation
// orchestration, save-as-you-go persistence, and export job lifecycle.
package deck

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"deck-server/internal/domain/export"
	"deck-server/internal/domain/slide"
	"deck-server/internal/domain/status"
)

// ErrorDetails is the persisted, client-safe failure summary for a deck or a
// single slide.
type ErrorDetails struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Presentation is the deck aggregate root.
type Presentation struct {
	ID         uint
	PublicID   string
	Title      string
	Prompt     string
	Model      string
	Status     status.Status
	SlideCount int
	Outline    *slide.Outline
	Slides     []Slide
	Error      *ErrorDetails
	Warnings   []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Slide is one generated slide of a presentation, keyed by its stable index.
type Slide struct {
	ID             uint
	PresentationID uint
	Index          int
	Status         status.Status
	Content        *slide.Content
	Error          *ErrorDetails
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ExportJob is one queued or finished document build. The job row doubles as
// the queue entry; Extracts is the input payload and Document the output.
type ExportJob struct {
	ID             uint
	PublicID       string
	PresentationID uint
	Status         status.Status
	Extracts       []export.SlideExtract
	Document       *export.PresentationDocument
	Error          *ErrorDetails
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewDeckID mints a public presentation identifier.
func NewDeckID() string {
	return fmt.Sprintf("deck_%s", uuid.New().String())
}

// NewJobID mints a public export job identifier.
func NewJobID() string {
	return fmt.Sprintf("job_%s", uuid.New().String())
}
