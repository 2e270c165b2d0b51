// Package exportjob provides the PostgreSQL-backed export job repository.
package exportjob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/export"
	"deck-server/internal/domain/status"
	"deck-server/internal/infrastructure/database/entities"
)

// ErrNotFound is returned when an export job does not exist.
var ErrNotFound = errors.New("export job not found")

// PostgresRepository implements deck.ExportJobRepository on GORM.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateJob(ctx context.Context, job *deck.ExportJob) error {
	entity, err := toEntity(job)
	if err != nil {
		return err
	}
	now := time.Now()
	entity.QueuedAt = &now
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("insert export job: %w", err)
	}
	job.ID = entity.ID
	job.CreatedAt = entity.CreatedAt
	return nil
}

func (r *PostgresRepository) UpdateJob(ctx context.Context, job *deck.ExportJob) error {
	entity, err := toEntity(job)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"status":     entity.Status,
		"document":   entity.Document,
		"error":      entity.Error,
		"updated_at": time.Now(),
	}
	if job.Status.IsTerminal() {
		now := time.Now()
		updates["completed_at"] = &now
	}
	result := r.db.WithContext(ctx).Model(&entities.ExportJob{}).
		Where("public_id = ?", job.PublicID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update export job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) FindJobByPublicID(ctx context.Context, publicID string) (*deck.ExportJob, error) {
	var entity entities.ExportJob
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find export job: %w", err)
	}
	return toDomain(&entity)
}

func toEntity(job *deck.ExportJob) (*entities.ExportJob, error) {
	entity := &entities.ExportJob{
		PublicID:       job.PublicID,
		PresentationID: job.PresentationID,
		Status:         job.Status.String(),
	}
	if job.Extracts != nil {
		raw, err := json.Marshal(job.Extracts)
		if err != nil {
			return nil, fmt.Errorf("marshal extracts: %w", err)
		}
		entity.Extracts = datatypes.JSON(raw)
	}
	if job.Document != nil {
		raw, err := json.Marshal(job.Document)
		if err != nil {
			return nil, fmt.Errorf("marshal document: %w", err)
		}
		entity.Document = datatypes.JSON(raw)
	}
	if job.Error != nil {
		raw, err := json.Marshal(job.Error)
		if err != nil {
			return nil, fmt.Errorf("marshal job error: %w", err)
		}
		entity.Error = datatypes.JSON(raw)
	}
	return entity, nil
}

func toDomain(entity *entities.ExportJob) (*deck.ExportJob, error) {
	job := &deck.ExportJob{
		ID:             entity.ID,
		PublicID:       entity.PublicID,
		PresentationID: entity.PresentationID,
		Status:         status.Status(entity.Status),
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
	if len(entity.Extracts) > 0 {
		if err := json.Unmarshal(entity.Extracts, &job.Extracts); err != nil {
			return nil, fmt.Errorf("unmarshal extracts: %w", err)
		}
	}
	if len(entity.Document) > 0 {
		var doc export.PresentationDocument
		if err := json.Unmarshal(entity.Document, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal document: %w", err)
		}
		job.Document = &doc
	}
	if len(entity.Error) > 0 {
		var details deck.ErrorDetails
		if err := json.Unmarshal(entity.Error, &details); err != nil {
			return nil, fmt.Errorf("unmarshal job error: %w", err)
		}
		job.Error = &details
	}
	return job, nil
}
