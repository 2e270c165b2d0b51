package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"deck-server/internal/infrastructure/database/entities"
)

// PostgresQueue implements TaskQueue on the export_job table.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresQueue creates a new PostgreSQL-backed task queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "postgres-queue").Logger(),
	}
}

// Dequeue claims the oldest queued job. The claim flips status inside one
// statement so competing workers skip locked rows instead of double-claiming.
func (q *PostgresQueue) Dequeue(ctx context.Context) (*Task, error) {
	var entity entities.ExportJob

	err := q.db.WithContext(ctx).Raw(`
		UPDATE export_job SET status = ?, started_at = NOW(), updated_at = NOW()
		WHERE id = (
			SELECT id FROM export_job
			WHERE status = ?
			ORDER BY queued_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		"generating", "queued",
	).Scan(&entity).Error
	if err != nil {
		return nil, fmt.Errorf("dequeue export job: %w", err)
	}

	if entity.ID == 0 {
		return nil, nil // No jobs available
	}

	task := &Task{
		JobID:          entity.PublicID,
		PresentationID: entity.PresentationID,
	}
	if entity.QueuedAt != nil {
		task.QueuedAt = *entity.QueuedAt
	}
	return task, nil
}

// MarkFailed updates the job status to failed with the worker's error.
func (q *PostgresQueue) MarkFailed(ctx context.Context, jobID string, taskErr error) error {
	details, _ := json.Marshal(map[string]string{
		"kind":    "PERSISTENCE_FAILURE",
		"message": taskErr.Error(),
	})
	now := time.Now()
	result := q.db.WithContext(ctx).
		Model(&entities.ExportJob{}).
		Where("public_id = ?", jobID).
		Updates(map[string]interface{}{
			"status":       "failed",
			"error":        details,
			"completed_at": now,
			"updated_at":   now,
		})
	if result.Error != nil {
		return fmt.Errorf("mark failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("export job not found: %s", jobID)
	}
	return nil
}

// GetQueueDepth returns the number of queued jobs.
func (q *PostgresQueue) GetQueueDepth(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.WithContext(ctx).
		Model(&entities.ExportJob{}).
		Where("status = ?", "queued").
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("queue depth: %w", err)
	}
	return count, nil
}
