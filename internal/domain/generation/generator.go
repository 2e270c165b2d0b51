package generation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/llm"
	"deck-server/internal/domain/retry"
)

// Generator runs a single unit end to end: open the completion stream, feed
// chunks through the delta parser, finalize, and retry transient failures with
// a fresh stream. Attempts share nothing but the revision watermark, so a
// retried unit re-emits from a clean buffer without rewinding revisions.
type Generator struct {
	provider    llm.Provider
	policy      retry.Policy
	unitTimeout time.Duration
	model       string
	temperature *float64
	maxTokens   *int
	onRetry     func(ErrorKind)
	log         zerolog.Logger
}

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	Policy      retry.Policy
	UnitTimeout time.Duration
	Model       string
	Temperature *float64
	MaxTokens   *int
	// OnRetry is called with the failure kind that triggered each restart.
	OnRetry func(ErrorKind)
	Logger  zerolog.Logger
}

func NewGenerator(provider llm.Provider, opts GeneratorOptions) *Generator {
	if opts.UnitTimeout <= 0 {
		opts.UnitTimeout = 90 * time.Second
	}
	return &Generator{
		provider:    provider,
		policy:      opts.Policy,
		unitTimeout: opts.UnitTimeout,
		model:       opts.Model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		onRetry:     opts.OnRetry,
		log:         opts.Logger.With().Str("component", "generator").Logger(),
	}
}

// Run executes the unit until it produces a valid document or fails
// permanently. Deltas stream through emit as fields complete.
func (g *Generator) Run(ctx context.Context, unit *Unit, emit func(DeltaEvent)) (json.RawMessage, *UnitError) {
	attempts := 0
	var baseRevision uint64
	var lastKind ErrorKind

	retryable := func(err error) bool {
		var ue *UnitError
		if errors.As(err, &ue) {
			return ue.IsRetryable()
		}
		return false
	}

	result, err := retry.ExecuteWithResult(ctx, g.policy, retryable,
		func(ctx context.Context, attempt int) (json.RawMessage, error) {
			attempts = attempt + 1
			if attempt > 0 {
				g.log.Warn().Int("unit", unit.Index).Int("attempt", attempt).
					Str("kind", string(lastKind)).Msg("retrying unit with a fresh stream")
				if g.onRetry != nil {
					g.onRetry(lastKind)
				}
			}
			raw, rev, aerr := g.runAttempt(ctx, unit, baseRevision, emit)
			baseRevision = rev
			if aerr != nil {
				var ue *UnitError
				if errors.As(aerr, &ue) {
					lastKind = ue.Kind
				}
				return nil, aerr
			}
			return raw, nil
		})

	if err != nil {
		var ue *UnitError
		if !errors.As(err, &ue) {
			ue = Classify(err)
		}
		ue.UnitIndex = unit.Index
		ue.Attempts = attempts
		g.log.Error().Int("unit", unit.Index).Int("attempts", attempts).
			Str("kind", string(ue.Kind)).Msg("unit failed permanently")
		return nil, ue
	}
	return result, nil
}

func (g *Generator) runAttempt(parent context.Context, unit *Unit, baseRevision uint64, emit func(DeltaEvent)) (json.RawMessage, uint64, error) {
	ctx, cancel := context.WithTimeout(parent, g.unitTimeout)
	defer cancel()

	req := llm.ChatCompletionRequest{
		Model:          g.model,
		Messages:       unit.Messages,
		Temperature:    g.temperature,
		MaxTokens:      g.maxTokens,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
		Stream:         true,
	}

	stream, err := g.provider.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, baseRevision, g.transportError(parent, ctx, unit, err, "open stream")
	}
	defer stream.Close()

	parser := NewParser(unit.Index, baseRevision, unit.Validate)
	for {
		delta, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, parser.Revision(), g.transportError(parent, ctx, unit, err, "read stream")
		}
		text := llm.DeltaText(*delta)
		if text == "" {
			continue
		}
		for _, ev := range parser.Feed(text) {
			emit(ev)
		}
	}

	raw, perr := parser.Finalize()
	if perr != nil {
		return nil, parser.Revision(), NewUnitError(perr.Kind, perr.Message).WithCause(perr).WithUnit(unit.Index)
	}
	return raw, parser.Revision(), nil
}

// transportError tells a caller-initiated cancel apart from an attempt
// deadline; only the latter is worth another stream.
func (g *Generator) transportError(parent, attempt context.Context, unit *Unit, err error, op string) *UnitError {
	if parent.Err() != nil {
		return NewUnitError(ErrKindCancelled, "generation cancelled").WithCause(parent.Err()).WithUnit(unit.Index)
	}
	if attempt.Err() != nil {
		return NewUnitError(ErrKindTransportTimeout, "unit deadline exceeded during "+op).
			WithCause(err).WithUnit(unit.Index)
	}
	return NewUnitError(Classify(err).Kind, op+": "+err.Error()).WithCause(err).WithUnit(unit.Index)
}
