package queue

import (
	"context"
	"time"
)

// Task is one claimed export job handed to a worker.
type Task struct {
	JobID          string
	PresentationID uint
	QueuedAt       time.Time
}

// TaskQueue claims export jobs for background processing. The export_job row
// doubles as the queue entry; claiming is an atomic status flip.
type TaskQueue interface {
	// Dequeue claims the oldest queued job using FOR UPDATE SKIP LOCKED and
	// marks it generating. Returns nil when the queue is empty.
	Dequeue(ctx context.Context) (*Task, error)

	// MarkFailed records a worker-level failure on the job.
	MarkFailed(ctx context.Context, jobID string, err error) error

	// GetQueueDepth returns the number of queued jobs.
	GetQueueDepth(ctx context.Context) (int64, error)
}
