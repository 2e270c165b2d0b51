// Package presentation provides the PostgreSQL-backed deck repository.
package presentation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"deck-server/internal/domain/deck"
	"deck-server/internal/domain/slide"
	"deck-server/internal/domain/status"
	"deck-server/internal/infrastructure/database/entities"
)

// ErrNotFound is returned when a presentation does not exist.
var ErrNotFound = errors.New("presentation not found")

// PostgresRepository implements deck.Repository on GORM.
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreatePresentation(ctx context.Context, p *deck.Presentation) error {
	entity, err := toPresentationEntity(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("insert presentation: %w", err)
	}
	p.ID = entity.ID
	p.CreatedAt = entity.CreatedAt
	p.UpdatedAt = entity.UpdatedAt
	return nil
}

func (r *PostgresRepository) UpdatePresentation(ctx context.Context, p *deck.Presentation) error {
	entity, err := toPresentationEntity(p)
	if err != nil {
		return err
	}
	entity.ID = p.ID
	if p.Status.IsTerminal() {
		now := time.Now()
		entity.CompletedAt = &now
	}
	result := r.db.WithContext(ctx).Model(&entities.Presentation{}).
		Where("id = ?", p.ID).
		Updates(map[string]interface{}{
			"title":        entity.Title,
			"status":       entity.Status,
			"slide_count":  entity.SlideCount,
			"outline":      entity.Outline,
			"error":        entity.Error,
			"warnings":     entity.Warnings,
			"completed_at": entity.CompletedAt,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("update presentation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) FindByPublicID(ctx context.Context, publicID string) (*deck.Presentation, error) {
	var entity entities.Presentation
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find presentation: %w", err)
	}
	return toPresentationDomain(&entity)
}

// SaveSlide upserts on (presentation_id, slide_index); placeholder rows
// written at slides_init are overwritten by the terminal write.
func (r *PostgresRepository) SaveSlide(ctx context.Context, presentationID uint, s *deck.Slide) error {
	entity, err := toSlideEntity(presentationID, s)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "presentation_id"}, {Name: "slide_index"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "content", "error", "updated_at",
		}),
	}).Create(entity).Error
	if err != nil {
		return fmt.Errorf("save slide %d: %w", s.Index, err)
	}
	s.ID = entity.ID
	return nil
}

func (r *PostgresRepository) ListSlides(ctx context.Context, presentationID uint) ([]deck.Slide, error) {
	var rows []entities.Slide
	err := r.db.WithContext(ctx).
		Where("presentation_id = ?", presentationID).
		Order("slide_index ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list slides: %w", err)
	}

	out := make([]deck.Slide, 0, len(rows))
	for i := range rows {
		s, err := toSlideDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, nil
}

func toPresentationEntity(p *deck.Presentation) (*entities.Presentation, error) {
	entity := &entities.Presentation{
		PublicID:   p.PublicID,
		Title:      p.Title,
		Prompt:     p.Prompt,
		Model:      p.Model,
		Status:     p.Status.String(),
		SlideCount: p.SlideCount,
	}
	if p.Outline != nil {
		raw, err := json.Marshal(p.Outline)
		if err != nil {
			return nil, fmt.Errorf("marshal outline: %w", err)
		}
		entity.Outline = datatypes.JSON(raw)
	}
	if p.Error != nil {
		raw, err := json.Marshal(p.Error)
		if err != nil {
			return nil, fmt.Errorf("marshal error details: %w", err)
		}
		entity.Error = datatypes.JSON(raw)
	}
	if len(p.Warnings) > 0 {
		raw, err := json.Marshal(p.Warnings)
		if err != nil {
			return nil, fmt.Errorf("marshal warnings: %w", err)
		}
		entity.Warnings = datatypes.JSON(raw)
	}
	return entity, nil
}

func toPresentationDomain(entity *entities.Presentation) (*deck.Presentation, error) {
	p := &deck.Presentation{
		ID:         entity.ID,
		PublicID:   entity.PublicID,
		Title:      entity.Title,
		Prompt:     entity.Prompt,
		Model:      entity.Model,
		Status:     status.Status(entity.Status),
		SlideCount: entity.SlideCount,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
	}
	if len(entity.Outline) > 0 {
		var outline slide.Outline
		if err := json.Unmarshal(entity.Outline, &outline); err != nil {
			return nil, fmt.Errorf("unmarshal outline: %w", err)
		}
		p.Outline = &outline
	}
	if len(entity.Error) > 0 {
		var details deck.ErrorDetails
		if err := json.Unmarshal(entity.Error, &details); err != nil {
			return nil, fmt.Errorf("unmarshal error details: %w", err)
		}
		p.Error = &details
	}
	if len(entity.Warnings) > 0 {
		if err := json.Unmarshal(entity.Warnings, &p.Warnings); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
	}
	return p, nil
}

func toSlideEntity(presentationID uint, s *deck.Slide) (*entities.Slide, error) {
	entity := &entities.Slide{
		PresentationID: presentationID,
		SlideIndex:     s.Index,
		Status:         s.Status.String(),
	}
	if s.Content != nil {
		raw, err := json.Marshal(s.Content)
		if err != nil {
			return nil, fmt.Errorf("marshal slide content: %w", err)
		}
		entity.Content = datatypes.JSON(raw)
	}
	if s.Error != nil {
		raw, err := json.Marshal(s.Error)
		if err != nil {
			return nil, fmt.Errorf("marshal slide error: %w", err)
		}
		entity.Error = datatypes.JSON(raw)
	}
	return entity, nil
}

func toSlideDomain(entity *entities.Slide) (*deck.Slide, error) {
	s := &deck.Slide{
		ID:             entity.ID,
		PresentationID: entity.PresentationID,
		Index:          entity.SlideIndex,
		Status:         status.Status(entity.Status),
		CreatedAt:      entity.CreatedAt,
		UpdatedAt:      entity.UpdatedAt,
	}
	if len(entity.Content) > 0 {
		var content slide.Content
		if err := json.Unmarshal(entity.Content, &content); err != nil {
			return nil, fmt.Errorf("unmarshal slide content: %w", err)
		}
		s.Content = &content
	}
	if len(entity.Error) > 0 {
		var details deck.ErrorDetails
		if err := json.Unmarshal(entity.Error, &details); err != nil {
			return nil, fmt.Errorf("unmarshal slide error: %w", err)
		}
		s.Error = &details
	}
	return s, nil
}
