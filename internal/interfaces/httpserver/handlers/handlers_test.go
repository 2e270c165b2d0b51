package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/export"
	"deck-server/internal/domain/generation"
	"deck-server/internal/domain/llm"
	"deck-server/internal/domain/retry"
	"deck-server/internal/domain/status"
	"deck-server/internal/infrastructure/repository/exportjob"
	"deck-server/internal/infrastructure/repository/presentation"
)

type scriptedStream struct {
	chunks []string
	idx    int
}

func (s *scriptedStream) Recv() (*llm.ChatCompletionDelta, error) {
	if s.idx >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.idx]
	s.idx++
	return &llm.ChatCompletionDelta{
		Choices: []llm.ChatCompletionDeltaChoice{
			{Delta: llm.ChatMessage{Role: "assistant", Content: chunk}},
		},
	}, nil
}

func (s *scriptedStream) Close() error { return nil }

type scriptedProvider struct {
	outlineJSON string
	slideJSON   string
}

func (p *scriptedProvider) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	return &llm.ChatCompletionResponse{
		Choices: []llm.ChatCompletionChoice{
			{Message: llm.ChatMessage{Role: "assistant", Content: p.outlineJSON}},
		},
	}, nil
}

func (p *scriptedProvider) CreateChatCompletionStream(ctx context.Context, req llm.ChatCompletionRequest) (llm.Stream, error) {
	mid := len(p.slideJSON) / 2
	return &scriptedStream{chunks: []string{p.slideJSON[:mid], p.slideJSON[mid:]}}, nil
}

type memRepo struct {
	mu            sync.Mutex
	nextID        uint
	presentations map[string]*deck.Presentation
	slides        map[uint]map[int]*deck.Slide
	jobs          map[string]*deck.ExportJob
}

func newMemRepo() *memRepo {
	return &memRepo{
		presentations: map[string]*deck.Presentation{},
		slides:        map[uint]map[int]*deck.Slide{},
		jobs:          map[string]*deck.ExportJob{},
	}
}

func (r *memRepo) CreatePresentation(ctx context.Context, p *deck.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	cp := *p
	r.presentations[p.PublicID] = &cp
	return nil
}

func (r *memRepo) UpdatePresentation(ctx context.Context, p *deck.Presentation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.presentations[p.PublicID] = &cp
	return nil
}

func (r *memRepo) FindByPublicID(ctx context.Context, publicID string) (*deck.Presentation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.presentations[publicID]
	if !ok {
		return nil, presentation.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memRepo) SaveSlide(ctx context.Context, presentationID uint, s *deck.Slide) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slides[presentationID] == nil {
		r.slides[presentationID] = map[int]*deck.Slide{}
	}
	cp := *s
	r.slides[presentationID][s.Index] = &cp
	return nil
}

func (r *memRepo) ListSlides(ctx context.Context, presentationID uint) ([]deck.Slide, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byIndex := r.slides[presentationID]
	out := make([]deck.Slide, 0, len(byIndex))
	for i := 0; i < len(byIndex); i++ {
		if s, ok := byIndex[i]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memRepo) CreateJob(ctx context.Context, job *deck.ExportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	job.ID = r.nextID
	job.CreatedAt = time.Now()
	cp := *job
	r.jobs[job.PublicID] = &cp
	return nil
}

func (r *memRepo) UpdateJob(ctx context.Context, job *deck.ExportJob) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *job
	r.jobs[job.PublicID] = &cp
	return nil
}

func (r *memRepo) FindJobByPublicID(ctx context.Context, publicID string) (*deck.ExportJob, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[publicID]
	if !ok {
		return nil, exportjob.ErrNotFound
	}
	cp := *job
	return &cp, nil
}

func newTestRouter(t *testing.T, repo *memRepo, provider llm.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gen := generation.NewGenerator(provider, generation.GeneratorOptions{
		Policy:      retry.NoRetryPolicy(),
		UnitTimeout: 5 * time.Second,
		Model:       "test-model",
		Logger:      zerolog.Nop(),
	})
	sched := generation.NewScheduler(gen, zerolog.Nop())
	deckService := deck.NewService(repo, provider, sched, deck.ServiceOptions{
		MaxConcurrentUnits: 2,
		DefaultModel:       "test-model",
	}, zerolog.Nop())
	exportService := deck.NewExportService(export.NewBuilder(export.DefaultThresholds()), repo, repo, zerolog.Nop())

	deckHandler := NewDeckHandler(deckService, time.Minute, zerolog.Nop())
	exportHandler := NewExportHandler(exportService, zerolog.Nop())

	router := gin.New()
	router.POST("/v1/presentations/generate", deckHandler.Generate)
	router.GET("/v1/presentations/:id", deckHandler.Get)
	router.POST("/v1/exports", exportHandler.Create)
	router.GET("/v1/exports/:id", exportHandler.GetJob)
	return router
}

func defaultProvider(slides int) *scriptedProvider {
	var sb strings.Builder
	sb.WriteString(`{"slides":[`)
	for i := 0; i < slides; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"title":"Slide %d"}`, i+1)
	}
	sb.WriteString("]}")
	return &scriptedProvider{
		outlineJSON: sb.String(),
		slideJSON:   `{"type":"bullets","title":"Generated","bullets":[{"text":"one"}]}`,
	}
}

// sseEvents splits a raw SSE body into (event, data) pairs in wire order.
func sseEvents(body string) [][2]string {
	var out [][2]string
	for _, frame := range strings.Split(body, "\n\n") {
		var name, data string
		for _, line := range strings.Split(frame, "\n") {
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				name = v
			}
			if v, ok := strings.CutPrefix(line, "data: "); ok {
				data = v
			}
		}
		if name != "" {
			out = append(out, [2]string{name, data})
		}
	}
	return out
}

func TestGenerateStreamsProtocolOrder(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(t, repo, defaultProvider(2))

	req := httptest.NewRequest(http.MethodPost, "/v1/presentations/generate",
		strings.NewReader(`{"prompt":"launch plan","slide_count":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	events := sseEvents(rec.Body.String())
	if len(events) < 4 {
		t.Fatalf("too few events: %+v", events)
	}
	if events[0][0] != "meta" {
		t.Fatalf("first event = %q, want meta", events[0][0])
	}
	if events[1][0] != "slides_init" {
		t.Fatalf("second event = %q, want slides_init", events[1][0])
	}
	if last := events[len(events)-1][0]; last != "complete" {
		t.Fatalf("last event = %q, want complete", last)
	}

	terminals := 0
	slideEvents := 0
	deltas := 0
	for _, ev := range events {
		switch ev[0] {
		case "complete", "error":
			terminals++
		case "slide":
			slideEvents++
		case "slide_delta":
			deltas++
		}
	}
	if terminals != 1 {
		t.Fatalf("terminal events = %d, want exactly one", terminals)
	}
	if slideEvents != 2 {
		t.Fatalf("slide events = %d, want 2", slideEvents)
	}
	if deltas == 0 {
		t.Fatal("no slide_delta events before completion")
	}

	var complete struct {
		DeckID  string `json:"deck_id"`
		SavedAt string `json:"saved_at"`
	}
	if err := json.Unmarshal([]byte(events[len(events)-1][1]), &complete); err != nil {
		t.Fatalf("decode complete payload: %v", err)
	}
	if complete.DeckID == "" || complete.SavedAt == "" {
		t.Fatalf("complete payload = %+v", complete)
	}
}

func TestGenerateRejectsEmptyRequest(t *testing.T) {
	router := newTestRouter(t, newMemRepo(), defaultProvider(1))

	req := httptest.NewRequest(http.MethodPost, "/v1/presentations/generate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetPresentationRoundTrip(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(t, repo, defaultProvider(2))

	req := httptest.NewRequest(http.MethodPost, "/v1/presentations/generate",
		strings.NewReader(`{"prompt":"x","slide_count":2}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	events := sseEvents(rec.Body.String())
	var complete struct {
		DeckID string `json:"deck_id"`
	}
	if err := json.Unmarshal([]byte(events[len(events)-1][1]), &complete); err != nil {
		t.Fatalf("decode complete payload: %v", err)
	}

	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/v1/presentations/"+complete.DeckID, nil))
	if getRec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", getRec.Code, getRec.Body.String())
	}

	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Slides []struct {
			Index  int    `json:"index"`
			Status string `json:"status"`
		} `json:"slides"`
	}
	if err := json.Unmarshal(getRec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ID != complete.DeckID || payload.Status != status.StatusCompleted.String() {
		t.Fatalf("payload = %+v", payload)
	}
	if len(payload.Slides) != 2 {
		t.Fatalf("slides = %d, want 2", len(payload.Slides))
	}
}

func TestGetPresentationNotFound(t *testing.T) {
	router := newTestRouter(t, newMemRepo(), defaultProvider(1))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/presentations/deck_missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestExportSyncReturnsDocument(t *testing.T) {
	router := newTestRouter(t, newMemRepo(), defaultProvider(1))

	body := `{"presentation_id":"deck_x","slides":[{"elements":[{"position":{"width":200,"height":100},"inner_text":"hello"}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var doc export.PresentationDocument
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if len(doc.Slides) != 1 || len(doc.Slides[0].Shapes) != 1 {
		t.Fatalf("document = %+v", doc)
	}
	if doc.Slides[0].Shapes[0].Kind != export.ShapeTextBox {
		t.Fatalf("shape kind = %s, want text_box", doc.Slides[0].Shapes[0].Kind)
	}
}

func TestExportAsyncEnqueuesJob(t *testing.T) {
	repo := newMemRepo()
	router := newTestRouter(t, repo, defaultProvider(1))

	// Seed a presentation to attach the job to.
	p := &deck.Presentation{PublicID: "deck_seed", Status: status.StatusCompleted}
	if err := repo.CreatePresentation(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	body := `{"presentation_id":"deck_seed","async":true,"slides":[{"elements":[{"position":{"width":10,"height":10},"inner_text":"a"}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Status != status.StatusQueued.String() || payload.ID == "" {
		t.Fatalf("payload = %+v, want a queued job", payload)
	}

	getRec := httptest.NewRecorder()
	router.ServeHTTP(getRec, httptest.NewRequest(http.MethodGet, "/v1/exports/"+payload.ID, nil))
	if getRec.Code != http.StatusOK {
		t.Fatalf("job lookup status = %d", getRec.Code)
	}
}

func TestExportRejectsEmptySlides(t *testing.T) {
	router := newTestRouter(t, newMemRepo(), defaultProvider(1))

	req := httptest.NewRequest(http.MethodPost, "/v1/exports",
		strings.NewReader(`{"presentation_id":"deck_x","slides":[]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestExportJobNotFound(t *testing.T) {
	router := newTestRouter(t, newMemRepo(), defaultProvider(1))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/exports/job_missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
