package deck

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/generation"
	"deck-server/internal/domain/llm"
	"deck-server/internal/domain/slide"
	"deck-server/internal/domain/status"
)

// ServiceOptions bound the generation workload.
type ServiceOptions struct {
	MaxConcurrentUnits int
	MaxSlideCount      int
	DefaultSlideCount  int
	DefaultModel       string
}

// Service orchestrates deck generation: outline planning, fan-out of slide
// units under the scheduler, save-as-you-go persistence, and status
// transitions. Streaming callers observe progress through a StreamObserver.
type Service struct {
	repo      Repository
	provider  llm.Provider
	scheduler *generation.Scheduler
	opts      ServiceOptions
	log       zerolog.Logger
}

func NewService(repo Repository, provider llm.Provider, scheduler *generation.Scheduler, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.MaxConcurrentUnits < 1 {
		opts.MaxConcurrentUnits = 3
	}
	if opts.MaxSlideCount < 1 {
		opts.MaxSlideCount = 30
	}
	if opts.DefaultSlideCount < 1 {
		opts.DefaultSlideCount = 8
	}
	return &Service{
		repo:      repo,
		provider:  provider,
		scheduler: scheduler,
		opts:      opts,
		log:       logger.With().Str("component", "deck_service").Logger(),
	}
}

// GenerateRequest describes one deck to produce. A supplied outline skips the
// planning call.
type GenerateRequest struct {
	Prompt     string
	Title      string
	SlideCount int
	Model      string
	Outline    *slide.Outline
}

// GenerateResult is the terminal outcome handed to the caller after the
// stream drains. Warnings carry partial-save failures that did not abort the
// deck.
type GenerateResult struct {
	Presentation *Presentation
	Warnings     []string
}

// Generate runs a deck end to end. Observer callbacks arrive in protocol
// order: meta, slides_init, then interleaved deltas/terminals/progress.
// Per-slide failures never abort the deck; cancellation of ctx does.
func (s *Service) Generate(ctx context.Context, req GenerateRequest, obs StreamObserver) (*GenerateResult, error) {
	model := req.Model
	if model == "" {
		model = s.opts.DefaultModel
	}
	slideCount := req.SlideCount
	if slideCount < 1 {
		slideCount = s.opts.DefaultSlideCount
	}
	if slideCount > s.opts.MaxSlideCount {
		slideCount = s.opts.MaxSlideCount
	}

	p := &Presentation{
		PublicID:   NewDeckID(),
		Title:      req.Title,
		Prompt:     req.Prompt,
		Model:      model,
		Status:     status.StatusPending,
		SlideCount: slideCount,
	}
	if err := s.repo.CreatePresentation(ctx, p); err != nil {
		return nil, fmt.Errorf("create presentation: %w", err)
	}

	outline := req.Outline
	if outline == nil {
		var err error
		outline, err = s.planOutline(ctx, req.Prompt, slideCount, model)
		if err != nil {
			s.failPresentation(ctx, p, "outline", err)
			return nil, fmt.Errorf("plan outline: %w", err)
		}
	}
	p.Outline = outline
	p.SlideCount = len(outline.Slides)
	if p.Title == "" {
		p.Title = outline.Slides[0].Title
	}
	if next, err := p.Status.TransitionTo(status.StatusGenerating); err == nil {
		p.Status = next
	}
	if err := s.repo.UpdatePresentation(ctx, p); err != nil {
		return nil, fmt.Errorf("persist outline: %w", err)
	}

	obs.OnMeta(Meta{
		DeckID:     p.PublicID,
		Title:      p.Title,
		Model:      p.Model,
		SlideCount: p.SlideCount,
	})
	placeholders := make([]Placeholder, len(outline.Slides))
	for i, entry := range outline.Slides {
		placeholders[i] = Placeholder{Index: i, Title: entry.Title}
		s.savePlaceholder(ctx, p, i)
	}
	obs.OnSlidesInit(len(placeholders), placeholders)

	units := make([]*generation.Unit, len(outline.Slides))
	for i := range outline.Slides {
		units[i] = &generation.Unit{
			Index:    i,
			Kind:     generation.UnitKindSlide,
			Messages: SlideMessages(p.Title, outline, i),
			Validate: slide.ValidateRaw,
			Status:   status.StatusPending,
		}
	}

	var warnings []string
	succeeded := 0
	for ev := range s.scheduler.Run(ctx, units, s.opts.MaxConcurrentUnits) {
		switch {
		case ev.Delta != nil:
			obs.OnSlideDelta(*ev.Delta)

		case ev.Result != nil:
			content, err := slide.Decode(ev.Result)
			if err != nil {
				details := ErrorDetails{Kind: generation.ErrKindMalformed.String(), Message: err.Error()}
				s.saveFailedSlide(ctx, p, ev.Index, details)
				obs.OnSlideFailed(ev.Index, details)
				continue
			}
			succeeded++
			if err := s.saveCompletedSlide(ctx, p, ev.Index, content); err != nil {
				w := fmt.Sprintf("slide %d generated but not saved: %v", ev.Index, err)
				warnings = append(warnings, w)
				s.log.Error().Err(err).Int("slide", ev.Index).Str("deck", p.PublicID).
					Str("kind", generation.ErrKindPersistenceFailure.String()).
					Msg("save-as-you-go write failed")
			}
			obs.OnSlideComplete(ev.Index, content)

		case ev.Err != nil:
			details := ErrorDetails{Kind: ev.Err.Kind.String(), Message: ev.Err.Message}
			s.saveFailedSlide(ctx, p, ev.Index, details)
			obs.OnSlideFailed(ev.Index, details)

		case ev.Progress != nil:
			obs.OnProgress(ev.Progress.Completed, ev.Progress.Total)
		}
	}

	if ctx.Err() != nil {
		s.cancelPresentation(p)
		// The client is gone; persist the terminal state on a fresh context.
		if err := s.repo.UpdatePresentation(context.WithoutCancel(ctx), p); err != nil {
			s.log.Error().Err(err).Str("deck", p.PublicID).Msg("persist cancelled deck")
		}
		return nil, ctx.Err()
	}

	p.Warnings = warnings
	if succeeded > 0 {
		if next, err := p.Status.TransitionTo(status.StatusCompleted); err == nil {
			p.Status = next
		}
	} else {
		if next, err := p.Status.TransitionTo(status.StatusFailed); err == nil {
			p.Status = next
		}
		p.Error = &ErrorDetails{
			Kind:    generation.ErrKindUpstreamUnavailable.String(),
			Message: "no slide could be generated",
		}
	}
	if err := s.repo.UpdatePresentation(ctx, p); err != nil {
		warnings = append(warnings, fmt.Sprintf("deck state not saved: %v", err))
		p.Warnings = warnings
		s.log.Error().Err(err).Str("deck", p.PublicID).Msg("persist final deck state")
	}

	s.log.Info().Str("deck", p.PublicID).Int("slides", p.SlideCount).
		Int("succeeded", succeeded).Str("status", p.Status.String()).
		Msg("deck generation finished")
	return &GenerateResult{Presentation: p, Warnings: warnings}, nil
}

// GetByPublicID loads a presentation with its slides.
func (s *Service) GetByPublicID(ctx context.Context, publicID string) (*Presentation, error) {
	p, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	slides, err := s.repo.ListSlides(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}
	p.Slides = slides
	return p, nil
}

// planOutline runs the single non-streaming planning completion.
func (s *Service) planOutline(ctx context.Context, prompt string, slideCount int, model string) (*slide.Outline, error) {
	resp, err := s.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
		Model:          model,
		Messages:       OutlineMessages(prompt, slideCount),
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}
	text := llm.NormalizeContent(resp.Choices[0].Message.Content)
	outline, err := slide.DecodeOutline([]byte(text))
	if err != nil {
		return nil, err
	}
	if len(outline.Slides) > slideCount {
		outline.Slides = outline.Slides[:slideCount]
	}
	return outline, nil
}

func (s *Service) savePlaceholder(ctx context.Context, p *Presentation, index int) {
	err := s.repo.SaveSlide(ctx, p.ID, &Slide{
		PresentationID: p.ID,
		Index:          index,
		Status:         status.StatusPending,
	})
	if err != nil {
		s.log.Warn().Err(err).Int("slide", index).Str("deck", p.PublicID).Msg("save slide placeholder")
	}
}

func (s *Service) saveCompletedSlide(ctx context.Context, p *Presentation, index int, content *slide.Content) error {
	return s.repo.SaveSlide(ctx, p.ID, &Slide{
		PresentationID: p.ID,
		Index:          index,
		Status:         status.StatusCompleted,
		Content:        content,
	})
}

func (s *Service) saveFailedSlide(ctx context.Context, p *Presentation, index int, details ErrorDetails) {
	err := s.repo.SaveSlide(ctx, p.ID, &Slide{
		PresentationID: p.ID,
		Index:          index,
		Status:         status.StatusFailed,
		Error:          &details,
	})
	if err != nil {
		s.log.Error().Err(err).Int("slide", index).Str("deck", p.PublicID).Msg("persist failed slide")
	}
}

func (s *Service) failPresentation(ctx context.Context, p *Presentation, stage string, cause error) {
	if next, err := p.Status.TransitionTo(status.StatusFailed); err == nil {
		p.Status = next
	}
	p.Error = &ErrorDetails{
		Kind:    generation.Classify(cause).Kind.String(),
		Message: fmt.Sprintf("%s failed: %v", stage, cause),
	}
	if err := s.repo.UpdatePresentation(ctx, p); err != nil {
		s.log.Error().Err(err).Str("deck", p.PublicID).Msg("persist failed deck")
	}
}

func (s *Service) cancelPresentation(p *Presentation) {
	if next, err := p.Status.TransitionTo(status.StatusCancelled); err == nil {
		p.Status = next
	}
}
