package generation

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Scheduler fans units out to the generator under a concurrency cap and
// multiplexes their deltas, results, failures, and progress onto one channel.
// Per-unit ordering is preserved; cross-unit interleaving is arbitrary and
// consumers attribute every event by unit index.
type Scheduler struct {
	gen *Generator
	log zerolog.Logger
}

func NewScheduler(gen *Generator, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		gen: gen,
		log: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Run starts the units and returns the event channel. The channel closes once
// every admitted unit reached a terminal state. One unit's permanent failure
// does not stop the others; cancelling ctx stops admission and drains.
func (s *Scheduler) Run(ctx context.Context, units []*Unit, maxConcurrent int) <-chan UnitEvent {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	out := make(chan UnitEvent, len(units)*4)

	go func() {
		defer close(out)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(maxConcurrent)

		var completed atomic.Int64
		total := len(units)

		send := func(ev UnitEvent) {
			select {
			case out <- ev:
			case <-ctx.Done():
			}
		}

		finish := func(index int) {
			done := int(completed.Add(1))
			send(UnitEvent{Index: index, Progress: &Progress{Completed: done, Total: total}})
		}

		for _, unit := range units {
			if ctx.Err() != nil {
				break
			}
			unit := unit
			g.Go(func() error {
				if gctx.Err() != nil {
					send(UnitEvent{Index: unit.Index, Err: NewUnitError(ErrKindCancelled, "generation cancelled").WithUnit(unit.Index)})
					finish(unit.Index)
					return nil
				}

				raw, uerr := s.gen.Run(gctx, unit, func(delta DeltaEvent) {
					d := delta
					send(UnitEvent{Index: unit.Index, Delta: &d})
				})
				if uerr != nil {
					send(UnitEvent{Index: unit.Index, Err: uerr})
				} else {
					send(UnitEvent{Index: unit.Index, Result: raw})
				}
				finish(unit.Index)
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			s.log.Error().Err(err).Msg("unit group ended with error")
		}
	}()

	return out
}
