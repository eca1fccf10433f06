package database

import (
	"log"

	"github.com/the-aether-lab/aether-lab-api/internal/config"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(cfg *config.Config) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto Migrate
	err = db.AutoMigrate(
		&models.User{},
		&models.APIKey{},
		&models.Card{},
		&models.CollectionCard{},
		&models.Deck{},
		&models.DeckCard{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.AchievementNotification{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate: %v", err)
	}

	return db
}
