package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"deck-server/internal/domain/deck"
	"deck-server/internal/infrastructure/metrics"
	"deck-server/internal/infrastructure/queue"
)

// Pool manages the background export workers.
type Pool struct {
	workers       []*Worker
	queue         queue.TaskQueue
	exportService *deck.ExportService
	workerCount   int
	taskTimeout   time.Duration
	log           zerolog.Logger
	wg            sync.WaitGroup
}

// Config contains worker pool configuration.
type Config struct {
	WorkerCount int
	TaskTimeout time.Duration
}

// NewPool creates a new worker pool.
func NewPool(taskQueue queue.TaskQueue, exportService *deck.ExportService, cfg Config, log zerolog.Logger) *Pool {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &Pool{
		queue:         taskQueue,
		exportService: exportService,
		workerCount:   cfg.WorkerCount,
		taskTimeout:   cfg.TaskTimeout,
		log:           log.With().Str("component", "worker-pool").Logger(),
	}
}

// Start launches all workers plus the queue-depth gauge loop. Workers run
// until ctx is cancelled.
func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("starting export worker pool")

	p.workers = make([]*Worker, p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		w := NewWorker(i+1, p.queue, p.exportService, p.taskTimeout, p.log)
		p.workers[i] = w

		p.wg.Add(1)
		go func(w *Worker) {
			defer p.wg.Done()
			w.Start(ctx)
		}(w)
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.reportQueueDepth(ctx)
	}()
}

// Stop waits for all workers to finish their current task.
func (p *Pool) Stop() {
	p.log.Info().Msg("stopping export worker pool")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info().Msg("all export workers stopped")
	case <-time.After(30 * time.Second):
		p.log.Warn().Msg("export worker pool shutdown timed out")
	}
}

func (p *Pool) reportQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			depth, err := p.queue.GetQueueDepth(ctx)
			if err != nil {
				p.log.Warn().Err(err).Msg("read export queue depth")
				continue
			}
			metrics.ExportQueueDepth.Set(float64(depth))
		}
	}
}
