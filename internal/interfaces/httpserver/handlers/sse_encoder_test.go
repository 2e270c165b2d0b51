package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/generation"
)

func newRecordedEncoder(heartbeat time.Duration) (*sseEncoder, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return newSSEEncoder(rec, rec, heartbeat, zerolog.Nop()), rec
}

// lockedWriter is a ResponseWriter safe to read while the heartbeat goroutine
// writes.
type lockedWriter struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (w *lockedWriter) Header() http.Header { return http.Header{} }

func (w *lockedWriter) WriteHeader(int) {}

func (w *lockedWriter) Flush() {}

func (w *lockedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

func (w *lockedWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func TestEncoderFrameFormat(t *testing.T) {
	enc, rec := newRecordedEncoder(time.Minute)

	enc.OnMeta(deck.Meta{DeckID: "deck_1", Title: "T", Model: "m", SlideCount: 2})

	body := rec.Body.String()
	if !strings.HasPrefix(body, "event: meta\ndata: ") {
		t.Fatalf("frame = %q", body)
	}
	if !strings.HasSuffix(body, "}\n\n") {
		t.Fatalf("frame not terminated by blank line: %q", body)
	}
	if !strings.Contains(body, `"deck_id":"deck_1"`) {
		t.Fatalf("payload missing deck id: %q", body)
	}
}

func TestEncoderNothingAfterTerminal(t *testing.T) {
	enc, rec := newRecordedEncoder(time.Minute)

	enc.OnMeta(deck.Meta{DeckID: "deck_1"})
	enc.SendComplete("deck_1", nil)
	after := rec.Body.Len()

	enc.OnSlideDelta(generation.DeltaEvent{UnitIndex: 0})
	enc.OnProgress(1, 2)
	enc.SendError("too late")

	if rec.Body.Len() != after {
		t.Fatalf("bytes written after terminal event: %q", rec.Body.String()[after:])
	}
}

func TestEncoderSingleTerminalEvent(t *testing.T) {
	enc, rec := newRecordedEncoder(time.Minute)

	enc.SendError("upstream gone")
	enc.SendComplete("deck_1", nil)

	body := rec.Body.String()
	if strings.Count(body, "event: error") != 1 {
		t.Fatalf("error events = %d, body = %q", strings.Count(body, "event: error"), body)
	}
	if strings.Contains(body, "event: complete") {
		t.Fatalf("complete after error: %q", body)
	}
}

func TestEncoderCompleteCarriesWarnings(t *testing.T) {
	enc, rec := newRecordedEncoder(time.Minute)

	enc.SendComplete("deck_1", []string{"slide 2 generated but not saved"})

	body := rec.Body.String()
	if !strings.Contains(body, `"warnings":["slide 2 generated but not saved"]`) {
		t.Fatalf("complete payload missing warnings: %q", body)
	}
}

func TestEncoderHeartbeatWhileIdle(t *testing.T) {
	w := &lockedWriter{}
	enc := newSSEEncoder(w, w, 20*time.Millisecond, zerolog.Nop())
	enc.start()
	defer enc.stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(w.String(), "event: heartbeat") {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("no heartbeat on an idle stream")
}

func TestEncoderHeartbeatStopsAfterTerminal(t *testing.T) {
	w := &lockedWriter{}
	enc := newSSEEncoder(w, w, 10*time.Millisecond, zerolog.Nop())
	enc.start()

	enc.SendComplete("deck_1", nil)
	settled := w.String()
	time.Sleep(60 * time.Millisecond)

	if got := w.String(); got != settled {
		t.Fatalf("heartbeat after terminal: %q", got[len(settled):])
	}
}
