package db

import (
	"gorm.io/gorm"

	"github.com/yungbote/whisperweb-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// Identity + auth
		&domain.User{},
		&domain.UserToken{},

		// Transcription records
		&domain.Transcription{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
