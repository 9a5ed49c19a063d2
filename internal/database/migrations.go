package database

import (
	"linklift/internal/database/models"

	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.ShortURL{},
		&models.RewardTier{},
		&models.ClickEvent{},
	)
}
