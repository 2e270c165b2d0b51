package entities

import (
	"time"

	"gorm.io/datatypes"
)

// Presentation represents the persisted deck record.
type Presentation struct {
	ID          uint   `gorm:"primaryKey"`
	PublicID    string `gorm:"uniqueIndex;size:64"`
	Title       string `gorm:"size:512"`
	Prompt      string `gorm:"type:text"`
	Model       string `gorm:"size:128"`
	Status      string `gorm:"size:32;index"`
	SlideCount  int
	Outline     datatypes.JSON `gorm:"type:jsonb"`
	Error       datatypes.JSON `gorm:"type:jsonb"`
	Warnings    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
}
