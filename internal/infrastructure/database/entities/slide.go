package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Slide represents one persisted slide, unique per (presentation, index) so
// concurrent save-as-you-go writes for different indexes never collide.
type Slide struct {
	ID             uint           `gorm:"primaryKey"`
	PresentationID uint           `gorm:"uniqueIndex:idx_presentation_slide;index"`
	SlideIndex     int            `gorm:"uniqueIndex:idx_presentation_slide"`
	Status         string         `gorm:"size:32"`
	Content        datatypes.JSON `gorm:"type:jsonb"`
	Error          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
