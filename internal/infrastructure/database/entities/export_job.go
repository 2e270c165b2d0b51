package entities

import (
	"time"

	"gorm.io/datatypes"
)

// ExportJob represents one queued or finished document build. The row doubles
// as the work-queue entry: workers claim rows by status with SKIP LOCKED.
type ExportJob struct {
	ID             uint           `gorm:"primaryKey"`
	PublicID       string         `gorm:"uniqueIndex;size:64"`
	PresentationID uint           `gorm:"index"`
	Status         string         `gorm:"size:32;index"`
	Extracts       datatypes.JSON `gorm:"type:jsonb"`
	Document       datatypes.JSON `gorm:"type:jsonb"`
	Error          datatypes.JSON `gorm:"type:jsonb"`
	QueuedAt       *time.Time     `gorm:"index"`
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
