package database

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"deck-server/internal/infrastructure/database/entities"
)

// AutoMigrate applies database schema changes for the deck domain.
func AutoMigrate(ctx context.Context, db *gorm.DB, log zerolog.Logger) error {
	if err := db.WithContext(ctx).AutoMigrate(
		&entities.Presentation{},
		&entities.Slide{},
		&entities.ExportJob{},
	); err != nil {
		return err
	}

	log.Info().Msg("database schema up to date")
	return nil
}
