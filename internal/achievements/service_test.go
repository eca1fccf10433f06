package achievements

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
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
	)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Username: "tester", Email: "tester@example.com"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

var cardSeq int

func createCard(t *testing.T, db *gorm.DB, card models.Card) models.Card {
	t.Helper()
	cardSeq++
	if card.ScryfallID == "" {
		card.ScryfallID = fmt.Sprintf("00000000-0000-0000-0000-%012d", cardSeq)
	}
	if card.Name == "" {
		card.Name = fmt.Sprintf("Test Card %d", cardSeq)
	}
	if err := db.Create(&card).Error; err != nil {
		t.Fatalf("failed to create card: %v", err)
	}
	return card
}

func addToCollection(t *testing.T, db *gorm.DB, userID uint, card models.Card, quantity int) {
	t.Helper()
	entry := models.CollectionCard{
		UserID:     userID,
		ScryfallID: card.ScryfallID,
		Quantity:   quantity,
		Condition:  "near_mint",
	}
	if err := db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to add to collection: %v", err)
	}
}

func createAchievement(t *testing.T, db *gorm.DB, name, category string, criteria models.Criteria) models.Achievement {
	t.Helper()
	achievement := models.Achievement{
		Name:        name,
		Description: name,
		Category:    category,
		Criteria:    criteria,
		Points:      10,
		IsActive:    true,
	}
	if err := db.Create(&achievement).Error; err != nil {
		t.Fatalf("failed to create achievement: %v", err)
	}
	return achievement
}

func TestCollectionCountQuantityVsUnique(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	createAchievement(t, db, "Four Copies", "collection", models.Criteria{
		Type:   models.CriteriaCollectionCount,
		Target: 4,
	})
	createAchievement(t, db, "Three Distinct", "collection", models.Criteria{
		Type:   models.CriteriaCollectionCount,
		Target: 3,
		Unique: true,
	})

	cardA := createCard(t, db, models.Card{})
	cardB := createCard(t, db, models.Card{})
	addToCollection(t, db, user.ID, cardA, 2)
	addToCollection(t, db, user.ID, cardB, 2)

	completed, err := service.Evaluate(user.ID, TriggerCollectionUpdate)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}

	if len(completed) != 1 || completed[0].Name != "Four Copies" {
		t.Fatalf("expected only 'Four Copies' to complete, got %v", names(completed))
	}

	var unique models.UserAchievement
	err = db.Joins("JOIN achievements ON achievements.id = user_achievements.achievement_id").
		Where("achievements.name = ? AND user_achievements.user_id = ?", "Three Distinct", user.ID).
		First(&unique).Error
	if err != nil {
		t.Fatalf("failed to load progress row: %v", err)
	}
	if unique.Progress.Current != 2 {
		t.Errorf("expected unique progress 2 (two buckets), got %d", unique.Progress.Current)
	}
	if unique.IsCompleted {
		t.Error("unique achievement should not be complete at 2/3")
	}
}

func TestTriggerRouting(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	createAchievement(t, db, "Deck Goal", "deck", models.Criteria{
		Type:   models.CriteriaDeckCount,
		Target: 1,
	})
	createAchievement(t, db, "Discovery Goal", "discovery", models.Criteria{
		Type:   models.CriteriaCollectionCount,
		Target: 1,
	})

	if err := db.Create(&models.Deck{UserID: user.ID, Name: "Mono Red", Format: "casual"}).Error; err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}
	addToCollection(t, db, user.ID, createCard(t, db, models.Card{}), 1)

	t.Run("CollectionUpdateSkipsDeckCategory", func(t *testing.T) {
		completed, err := service.Evaluate(user.ID, TriggerCollectionUpdate)
		if err != nil {
			t.Fatalf("Evaluate returned error: %v", err)
		}
		if len(completed) != 1 || completed[0].Name != "Discovery Goal" {
			t.Fatalf("expected only 'Discovery Goal', got %v", names(completed))
		}
	})

	t.Run("DeckUpdateSkipsDiscoveryCategory", func(t *testing.T) {
		completed, err := service.Evaluate(user.ID, TriggerDeckUpdate)
		if err != nil {
			t.Fatalf("Evaluate returned error: %v", err)
		}
		if len(completed) != 1 || completed[0].Name != "Deck Goal" {
			t.Fatalf("expected only 'Deck Goal', got %v", names(completed))
		}
	})

	t.Run("RetroactiveCoversEverything", func(t *testing.T) {
		var rows int64
		db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&rows)
		if rows != 2 {
			t.Errorf("expected 2 progress rows after both triggers, got %d", rows)
		}

		completed, err := service.RunRetroactiveCheck(user.ID)
		if err != nil {
			t.Fatalf("RunRetroactiveCheck returned error: %v", err)
		}
		if len(completed) != 0 {
			t.Errorf("already-completed achievements must not complete again, got %v", names(completed))
		}
	})
}

func TestCompletionIsOneShot(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	achievement := createAchievement(t, db, "First Card", "collection", models.Criteria{
		Type:   models.CriteriaCollectionCount,
		Target: 1,
	})

	card := createCard(t, db, models.Card{})
	addToCollection(t, db, user.ID, card, 1)

	completed, err := service.Evaluate(user.ID, TriggerCollectionUpdate)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(completed))
	}

	// Empty the collection and re-evaluate. Progress drops but completion and
	// its notification survive.
	if err := db.Where("user_id = ?", user.ID).Delete(&models.CollectionCard{}).Error; err != nil {
		t.Fatalf("failed to clear collection: %v", err)
	}

	completed, err = service.Evaluate(user.ID, TriggerCollectionUpdate)
	if err != nil {
		t.Fatalf("second Evaluate returned error: %v", err)
	}
	if len(completed) != 0 {
		t.Fatalf("expected no new completions, got %v", names(completed))
	}

	var row models.UserAchievement
	err = db.Where("user_id = ? AND achievement_id = ?", user.ID, achievement.ID).First(&row).Error
	if err != nil {
		t.Fatalf("failed to load progress row: %v", err)
	}
	if !row.IsCompleted {
		t.Error("completion must not be reverted when the collection shrinks")
	}
	if row.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if row.Progress.Current != 0 {
		t.Errorf("expected progress snapshot to reflect current state 0, got %d", row.Progress.Current)
	}

	var notifications int64
	db.Model(&models.AchievementNotification{}).Where("user_id = ?", user.ID).Count(&notifications)
	if notifications != 1 {
		t.Errorf("expected exactly 1 notification, got %d", notifications)
	}
}

func TestCardCriteriaFilters(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	mythic := createCard(t, db, models.Card{Rarity: "mythic", TypeLine: "Legendary Creature — Dragon", Colors: models.StringList{"R"}})
	rare := createCard(t, db, models.Card{Rarity: "rare", TypeLine: "Instant", Colors: models.StringList{"U"}})
	gold := createCard(t, db, models.Card{Rarity: "uncommon", TypeLine: "Creature — Human Wizard", Colors: models.StringList{"U", "R"}})

	addToCollection(t, db, user.ID, mythic, 4)
	addToCollection(t, db, user.ID, rare, 1)
	addToCollection(t, db, user.ID, gold, 1)

	cases := []struct {
		name    string
		filter  models.CardFilter
		current int
	}{
		{"Rarity", models.CardFilter{Rarity: "mythic"}, 1},
		{"TypeLineSubstring", models.CardFilter{TypeLine: "Creature"}, 2},
		{"MonoColor", models.CardFilter{Colors: json.RawMessage(`"mono"`)}, 2},
		{"ColorContainment", models.CardFilter{Colors: json.RawMessage(`["U","R"]`)}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			progress, err := service.checkCardCriteria(user.ID, models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 10,
				Filter: &tc.filter,
			})
			if err != nil {
				t.Fatalf("checkCardCriteria returned error: %v", err)
			}
			if progress.Current != tc.current {
				t.Errorf("expected current %d, got %d", tc.current, progress.Current)
			}
		})
	}

	t.Run("QuantityDoesNotInflateCount", func(t *testing.T) {
		// The mythic bucket holds 4 copies but counts once.
		progress, err := service.checkCardCriteria(user.ID, models.Criteria{
			Type:   models.CriteriaCardCriteria,
			Target: 10,
			Filter: &models.CardFilter{Rarity: "mythic"},
		})
		if err != nil {
			t.Fatalf("checkCardCriteria returned error: %v", err)
		}
		if progress.Current != 1 {
			t.Errorf("expected 1, got %d", progress.Current)
		}
	})

	t.Run("MissingFilterIsAnError", func(t *testing.T) {
		_, err := service.checkCardCriteria(user.ID, models.Criteria{
			Type:   models.CriteriaCardCriteria,
			Target: 10,
		})
		if err == nil {
			t.Fatal("expected error for card_criteria without filter")
		}
	})
}

func TestCreatureTypeDiversity(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	deck := models.Deck{UserID: user.ID, Name: "Tribal Soup", Format: "casual"}
	if err := db.Create(&deck).Error; err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}

	wizard := createCard(t, db, models.Card{TypeLine: "Creature — Human Wizard"})
	goblin := createCard(t, db, models.Card{TypeLine: "Creature — Goblin"})
	repeat := createCard(t, db, models.Card{TypeLine: "Legendary Creature — Goblin Shaman"})
	land := createCard(t, db, models.Card{TypeLine: "Basic Land — Mountain"})
	sideboardOnly := createCard(t, db, models.Card{TypeLine: "Creature — Elf"})

	for _, card := range []models.Card{wizard, goblin, repeat, land} {
		entry := models.DeckCard{DeckID: deck.ID, ScryfallID: card.ScryfallID, Quantity: 1, CardType: models.ZoneMainboard}
		if err := db.Create(&entry).Error; err != nil {
			t.Fatalf("failed to add deck card: %v", err)
		}
	}
	side := models.DeckCard{DeckID: deck.ID, ScryfallID: sideboardOnly.ScryfallID, Quantity: 1, CardType: models.ZoneSideboard}
	if err := db.Create(&side).Error; err != nil {
		t.Fatalf("failed to add sideboard card: %v", err)
	}

	progress, err := service.checkDeckCriteria(user.ID, models.Criteria{
		Type:   models.CriteriaDeckCriteria,
		Target: 10,
		Filter: &models.CardFilter{Type: models.DeckFilterCreatureTypes},
	})
	if err != nil {
		t.Fatalf("checkDeckCriteria returned error: %v", err)
	}

	// Human, Wizard, Goblin, Shaman. Mountain is not a creature subtype and
	// the sideboard Elf does not count.
	if progress.Current != 4 {
		t.Errorf("expected 4 distinct creature subtypes, got %d", progress.Current)
	}
}

func TestPlaceholderCriteriaNeverComplete(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	createAchievement(t, db, "Outlaw", "mastery", models.Criteria{
		Type:   models.CriteriaBannedCards,
		Target: 1,
	})
	createAchievement(t, db, "Tournament Ready", "deck", models.Criteria{
		Type:   models.CriteriaDeckCriteria,
		Target: 1,
		Filter: &models.CardFilter{Type: models.DeckFilterFormatLegal, Format: "standard"},
	})

	addToCollection(t, db, user.ID, createCard(t, db, models.Card{}), 100)
	if err := db.Create(&models.Deck{UserID: user.ID, Name: "Any", Format: "standard"}).Error; err != nil {
		t.Fatalf("failed to create deck: %v", err)
	}

	completed, err := service.RunRetroactiveCheck(user.ID)
	if err != nil {
		t.Fatalf("RunRetroactiveCheck returned error: %v", err)
	}
	if len(completed) != 0 {
		t.Errorf("placeholder criteria must not complete, got %v", names(completed))
	}
}

func TestInactiveAchievementsAreSkipped(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	service := NewService(db, nil)

	achievement := createAchievement(t, db, "Retired", "collection", models.Criteria{
		Type:   models.CriteriaCollectionCount,
		Target: 1,
	})
	db.Model(&achievement).Update("is_active", false)

	addToCollection(t, db, user.ID, createCard(t, db, models.Card{}), 1)

	completed, err := service.Evaluate(user.ID, TriggerCollectionUpdate)
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(completed) != 0 {
		t.Errorf("inactive achievements must not be evaluated, got %v", names(completed))
	}

	var rows int64
	db.Model(&models.UserAchievement{}).Where("user_id = ?", user.ID).Count(&rows)
	if rows != 0 {
		t.Errorf("expected no progress rows for inactive achievements, got %d", rows)
	}
}

type recordingNotifier struct {
	notified []string
}

func (r *recordingNotifier) NotifyAchievement(user models.User, achievement models.Achievement) error {
	r.notified = append(r.notified, achievement.Name)
	return nil
}

func TestNotifierReceivesCompletions(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db)
	recorder := &recordingNotifier{}
	service := NewService(db, recorder)

	createAchievement(t, db, "First Card", "collection", models.Criteria{
		Type:   models.CriteriaCollectionCount,
		Target: 1,
	})

	addToCollection(t, db, user.ID, createCard(t, db, models.Card{}), 1)

	if _, err := service.Evaluate(user.ID, TriggerCollectionUpdate); err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if len(recorder.notified) != 1 || recorder.notified[0] != "First Card" {
		t.Fatalf("expected one notification for 'First Card', got %v", recorder.notified)
	}

	// No repeat notification on re-evaluation.
	if _, err := service.Evaluate(user.ID, TriggerCollectionUpdate); err != nil {
		t.Fatalf("second Evaluate returned error: %v", err)
	}
	if len(recorder.notified) != 1 {
		t.Fatalf("expected no repeat notifications, got %v", recorder.notified)
	}
}

func names(achievements []models.Achievement) []string {
	result := make([]string, 0, len(achievements))
	for _, a := range achievements {
		result = append(result, a.Name)
	}
	return result
}
