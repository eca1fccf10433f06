package database

import (
	"encoding/json"
	"log"

	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

func rawColors(v interface{}) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func defaultAchievements() []models.Achievement {
	return []models.Achievement{
		{
			Name:        "First Steps",
			Description: "Add your first card to the collection",
			Category:    "collection",
			Icon:        "star",
			Rarity:      "common",
			Criteria:    models.Criteria{Type: models.CriteriaCollectionCount, Target: 1, Unique: true},
			Points:      5,
			IsActive:    true,
		},
		{
			Name:        "Getting Started",
			Description: "Collect 10 unique cards",
			Category:    "collection",
			Icon:        "bookmark",
			Rarity:      "common",
			Criteria:    models.Criteria{Type: models.CriteriaCollectionCount, Target: 10, Unique: true},
			Points:      10,
			IsActive:    true,
		},
		{
			Name:        "Century Club",
			Description: "Collect 100 unique cards",
			Category:    "collection",
			Icon:        "trophy",
			Rarity:      "uncommon",
			Criteria:    models.Criteria{Type: models.CriteriaCollectionCount, Target: 100, Unique: true},
			Points:      25,
			IsActive:    true,
		},
		{
			Name:        "The Hoarder",
			Description: "Collect 500 total cards (including quantities)",
			Category:    "collection",
			Icon:        "archive",
			Rarity:      "rare",
			Criteria:    models.Criteria{Type: models.CriteriaCollectionCount, Target: 500},
			Points:      50,
			IsActive:    true,
		},
		{
			Name:        "Deck Builder",
			Description: "Create your first deck",
			Category:    "deck",
			Icon:        "layers",
			Rarity:      "common",
			Criteria:    models.Criteria{Type: models.CriteriaDeckCount, Target: 1},
			Points:      10,
			IsActive:    true,
		},
		{
			Name:        "Master Builder",
			Description: "Create 5 decks",
			Category:    "deck",
			Icon:        "construction",
			Rarity:      "uncommon",
			Criteria:    models.Criteria{Type: models.CriteriaDeckCount, Target: 5},
			Points:      25,
			IsActive:    true,
		},
		{
			Name:        "Tribal Tactician",
			Description: "Build decks spanning 10 different creature types",
			Category:    "deck",
			Icon:        "users",
			Rarity:      "rare",
			Criteria: models.Criteria{
				Type:   models.CriteriaDeckCriteria,
				Target: 10,
				Filter: &models.CardFilter{Type: models.DeckFilterCreatureTypes},
			},
			Points:   30,
			IsActive: true,
		},
		{
			Name:        "Rare Collector",
			Description: "Collect 10 rare cards",
			Category:    "discovery",
			Icon:        "gem",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 10,
				Filter: &models.CardFilter{Rarity: "rare"},
			},
			Points:   20,
			IsActive: true,
		},
		{
			Name:        "Mythic Hunter",
			Description: "Collect your first mythic rare",
			Category:    "discovery",
			Icon:        "crown",
			Rarity:      "rare",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 1,
				Filter: &models.CardFilter{Rarity: "mythic"},
			},
			Points:   30,
			IsActive: true,
		},
		{
			Name:        "Dragon Tamer",
			Description: "Collect 5 Dragon creatures",
			Category:    "discovery",
			Icon:        "zap",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 5,
				Filter: &models.CardFilter{TypeLine: "Dragon"},
			},
			Points:   15,
			IsActive: true,
		},
		{
			Name:        "Planeswalker",
			Description: "Collect 3 Planeswalker cards",
			Category:    "discovery",
			Icon:        "user",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 3,
				Filter: &models.CardFilter{TypeLine: "Planeswalker"},
			},
			Points:   20,
			IsActive: true,
		},
		{
			Name:        "Artifact Collector",
			Description: "Collect 25 artifact cards",
			Category:    "discovery",
			Icon:        "cpu",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 25,
				Filter: &models.CardFilter{TypeLine: "Artifact"},
			},
			Points:   20,
			IsActive: true,
		},
		{
			Name:        "Creature Feature",
			Description: "Collect 50 creature cards",
			Category:    "discovery",
			Icon:        "heart",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 50,
				Filter: &models.CardFilter{TypeLine: "Creature"},
			},
			Points:   25,
			IsActive: true,
		},
		{
			Name:        "Spell Slinger",
			Description: "Collect 30 instant and sorcery cards",
			Category:    "discovery",
			Icon:        "wand",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 30,
				Filter: &models.CardFilter{TypeLine: "Instant"},
			},
			Points:   20,
			IsActive: true,
		},
		{
			Name:        "Enchantment Enthusiast",
			Description: "Collect 20 enchantment cards",
			Category:    "discovery",
			Icon:        "sparkles",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 20,
				Filter: &models.CardFilter{TypeLine: "Enchantment"},
			},
			Points:   20,
			IsActive: true,
		},
		{
			Name:        "Rainbow Connection",
			Description: "Collect 10 mono-colored cards",
			Category:    "mastery",
			Icon:        "palette",
			Rarity:      "uncommon",
			Criteria: models.Criteria{
				Type:   models.CriteriaCardCriteria,
				Target: 10,
				Filter: &models.CardFilter{Colors: rawColors("mono")},
			},
			Points:   20,
			IsActive: true,
		},
	}
}

// Seed creates the achievement catalog and default users if absent.
// Existing rows are left untouched so admin edits survive restarts.
func Seed(db *gorm.DB) {
	for _, achievement := range defaultAchievements() {
		var existing models.Achievement
		err := db.Where("name = ?", achievement.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			log.Printf("Failed to check achievement %q: %v", achievement.Name, err)
			continue
		}
		if err := db.Create(&achievement).Error; err != nil {
			log.Printf("Failed to seed achievement %q: %v", achievement.Name, err)
		}
	}

	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		log.Printf("Failed to count users: %v", err)
		return
	}
	if userCount == 0 {
		defaults := []models.User{
			{Username: "Player1", Email: "player1@example.com"},
			{Username: "Player2", Email: "player2@example.com"},
		}
		for _, user := range defaults {
			if err := db.Create(&user).Error; err != nil {
				log.Printf("Failed to create default user %q: %v", user.Username, err)
			}
		}
	}
}
