package handlers

import (
	"fmt"
	"testing"

	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/config"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv bundles the pieces most handler tests need: an in-memory database,
// an auth handler, one user and that user's session cookie.
type testEnv struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	user        models.User
	cookie      string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.CollectionCard{},
		&models.Deck{},
		&models.DeckCard{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.AchievementNotification{},
		&models.APIKey{},
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	user := models.User{Username: "tester", Email: "tester@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	cfg := &config.Config{JWTSecret: "test-secret"}
	authHandler := auth.NewAuthHandler(cfg, db)
	token, err := authHandler.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	return &testEnv{
		db:          db,
		authHandler: authHandler,
		user:        user,
		cookie:      "auth_token=" + token,
	}
}

var cardSeq int

func (env *testEnv) createCard(t *testing.T, card models.Card) models.Card {
	t.Helper()
	cardSeq++
	if card.ScryfallID == "" {
		card.ScryfallID = fmt.Sprintf("00000000-0000-0000-0000-%012d", cardSeq)
	}
	if card.Name == "" {
		card.Name = fmt.Sprintf("Test Card %d", cardSeq)
	}
	if err := env.db.Create(&card).Error; err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
	return card
}

func (env *testEnv) createAchievement(t *testing.T, name, category string, criteria models.Criteria) models.Achievement {
	t.Helper()
	achievement := models.Achievement{
		Name:        name,
		Description: name,
		Category:    category,
		Criteria:    criteria,
		Points:      10,
		IsActive:    true,
	}
	if err := env.db.Create(&achievement).Error; err != nil {
		t.Fatalf("failed to create achievement: %v", err)
	}
	return achievement
}
