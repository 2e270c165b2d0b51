// Package worker runs the background export job processors.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/infrastructure/metrics"
	"deck-server/internal/infrastructure/observability"
	"deck-server/internal/infrastructure/queue"
)

// Worker polls the queue and builds claimed export jobs.
type Worker struct {
	id            int
	queue         queue.TaskQueue
	exportService *deck.ExportService
	taskTimeout   time.Duration
	log           zerolog.Logger
}

// NewWorker creates a new background worker.
func NewWorker(id int, taskQueue queue.TaskQueue, exportService *deck.ExportService, taskTimeout time.Duration, log zerolog.Logger) *Worker {
	return &Worker{
		id:            id,
		queue:         taskQueue,
		exportService: exportService,
		taskTimeout:   taskTimeout,
		log:           log.With().Int("worker_id", id).Str("component", "export-worker").Logger(),
	}
}

// Start begins processing jobs until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info().Msg("export worker started")

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("export worker stopped")
			return
		case <-ticker.C:
			w.processNext(ctx)
		}
	}
}

func (w *Worker) processNext(ctx context.Context) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("dequeue export job")
		return
	}
	if task == nil {
		return
	}

	w.log.Info().Str("job", task.JobID).Uint("presentation", task.PresentationID).
		Msg("processing export job")

	taskCtx, cancel := context.WithTimeout(ctx, w.taskTimeout)
	defer cancel()

	taskCtx, span := observability.StartExportSpan(taskCtx, task.JobID, 0)
	defer span.End()

	if err := w.exportService.Process(taskCtx, task.JobID); err != nil {
		observability.RecordError(span, err, "export")
		metrics.ExportJobs.WithLabelValues("failed").Inc()
		w.log.Error().Err(err).Str("job", task.JobID).Msg("export job failed")
		if markErr := w.queue.MarkFailed(ctx, task.JobID, err); markErr != nil {
			w.log.Error().Err(markErr).Str("job", task.JobID).Msg("mark export job failed")
		}
		return
	}

	metrics.ExportJobs.WithLabelValues("completed").Inc()
	w.log.Info().Str("job", task.JobID).Msg("export job completed")
}
