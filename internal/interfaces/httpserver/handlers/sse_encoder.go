package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/generation"
	"deck-server/internal/domain/slide"
	"deck-server/internal/infrastructure/metrics"
)

type encoderState int

const (
	stateOpening encoderState = iota
	stateStreaming
	stateClosing
)

// sseEncoder turns generation lifecycle callbacks into wire events. Lifecycle:
// Opening until the meta event, Streaming while content flows, Closing after
// the one terminal complete or error event; nothing is written after that.
// A background ticker emits heartbeats while the stream is idle.
type sseEncoder struct {
	writer    http.ResponseWriter
	flusher   http.Flusher
	log       zerolog.Logger
	interval  time.Duration
	mu        sync.Mutex
	state     encoderState
	lastWrite time.Time
	done      chan struct{}
	stopOnce  sync.Once
}

func newSSEEncoder(w http.ResponseWriter, flusher http.Flusher, heartbeat time.Duration, log zerolog.Logger) *sseEncoder {
	return &sseEncoder{
		writer:    w,
		flusher:   flusher,
		log:       log.With().Str("component", "sse_encoder").Logger(),
		interval:  heartbeat,
		state:     stateOpening,
		lastWrite: time.Now(),
		done:      make(chan struct{}),
	}
}

// start launches the heartbeat loop. stop is idempotent and implied by the
// terminal events.
func (e *sseEncoder) start() {
	go e.heartbeatLoop()
}

func (e *sseEncoder) stop() {
	e.stopOnce.Do(func() { close(e.done) })
}

func (e *sseEncoder) heartbeatLoop() {
	tick := e.interval / 4
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.mu.Lock()
			idle := time.Since(e.lastWrite) >= e.interval
			e.mu.Unlock()
			if idle {
				e.sendEvent("heartbeat", struct{}{})
			}
		}
	}
}

// OnMeta transitions the stream from Opening to Streaming.
func (e *sseEncoder) OnMeta(meta deck.Meta) {
	e.mu.Lock()
	if e.state == stateOpening {
		e.state = stateStreaming
	}
	e.mu.Unlock()
	e.sendEvent("meta", meta)
}

func (e *sseEncoder) OnSlidesInit(count int, placeholders []deck.Placeholder) {
	e.sendEvent("slides_init", map[string]interface{}{
		"count":        count,
		"placeholders": placeholders,
	})
}

func (e *sseEncoder) OnSlideDelta(ev generation.DeltaEvent) {
	e.sendEvent("slide_delta", ev)
}

func (e *sseEncoder) OnSlideComplete(index int, content *slide.Content) {
	metrics.UnitsCompleted.WithLabelValues("slide", "completed").Inc()
	e.sendEvent("slide", map[string]interface{}{
		"index": index,
		"slide": content,
	})
}

// OnSlideFailed surfaces a failed unit as a slide event carrying an error
// placeholder, so clients render a per-slide error state instead of a hole.
func (e *sseEncoder) OnSlideFailed(index int, details deck.ErrorDetails) {
	metrics.UnitsCompleted.WithLabelValues("slide", "failed").Inc()
	e.sendEvent("slide", map[string]interface{}{
		"index": index,
		"error": details,
	})
}

func (e *sseEncoder) OnProgress(completed, total int) {
	e.sendEvent("progress", generation.Progress{Completed: completed, Total: total})
}

// SendComplete emits the terminal complete event and closes the stream.
func (e *sseEncoder) SendComplete(deckID string, warnings []string) {
	payload := map[string]interface{}{
		"deck_id":  deckID,
		"saved_at": time.Now().UTC().Format(time.RFC3339),
	}
	if len(warnings) > 0 {
		payload["warnings"] = warnings
	}
	e.sendTerminal("complete", payload)
}

// SendError emits the terminal error event and closes the stream.
func (e *sseEncoder) SendError(reason string) {
	e.sendTerminal("error", map[string]string{"reason": reason})
}

func (e *sseEncoder) sendTerminal(name string, payload interface{}) {
	e.sendEvent(name, payload)
	e.mu.Lock()
	e.state = stateClosing
	e.mu.Unlock()
	e.stop()
}

func (e *sseEncoder) sendEvent(name string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.log.Error().Err(err).Str("event", name).Msg("marshal stream event")
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == stateClosing {
		return
	}

	fmt.Fprintf(e.writer, "event: %s\n", name)
	fmt.Fprintf(e.writer, "data: %s\n\n", data)
	e.flusher.Flush()
	e.lastWrite = time.Now()
	metrics.StreamEvents.WithLabelValues(name).Inc()
}

var _ deck.StreamObserver = (*sseEncoder)(nil)
