package deck

import (
	"deck-server/internal/domain/generation"
	"deck-server/internal/domain/slide"
)

// Meta is the deck-level header emitted before any slide content.
type Meta struct {
	DeckID     string `json:"deck_id"`
	Title      string `json:"title"`
	Model      string `json:"model"`
	SlideCount int    `json:"slide_count"`
}

// Placeholder announces one upcoming slide so clients can render its slot
// before any content arrives.
type Placeholder struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

// StreamObserver receives generation lifecycle callbacks in emission order.
// For one index every OnSlideDelta precedes the single OnSlideComplete or
// OnSlideFailed. Implementations encode these onto the client transport; the
// service never blocks on anything else while calling them.
type StreamObserver interface {
	OnMeta(meta Meta)
	OnSlidesInit(count int, placeholders []Placeholder)
	OnSlideDelta(ev generation.DeltaEvent)
	OnSlideComplete(index int, content *slide.Content)
	OnSlideFailed(index int, details ErrorDetails)
	OnProgress(completed, total int)
}
