package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Criteria strategy tags.
const (
	CriteriaCollectionCount = "collection_count"
	CriteriaDeckCount       = "deck_count"
	CriteriaCardCriteria    = "card_criteria"
	CriteriaDeckCriteria    = "deck_criteria"
	CriteriaBannedCards     = "banned_cards"
)

// Deck-criteria sub-types.
const (
	DeckFilterCreatureTypes = "creature_types"
	DeckFilterFormatLegal   = "format_legal"
)

// CardFilter narrows card_criteria counting. Colors is either the literal
// "mono" or a JSON list of color codes the card must contain.
type CardFilter struct {
	Rarity   string          `json:"rarity,omitempty"`
	Colors   json.RawMessage `json:"colors,omitempty"`
	TypeLine string          `json:"type_line,omitempty"`
	Type     string          `json:"type,omitempty"`
	Format   string          `json:"format,omitempty"`
}

// MonoColor reports whether the colors filter is the "mono" special case.
func (f *CardFilter) MonoColor() bool {
	if f == nil || len(f.Colors) == 0 {
		return false
	}
	var s string
	return json.Unmarshal(f.Colors, &s) == nil && s == "mono"
}

// ColorList returns the explicit color list form of the colors filter, or nil.
func (f *CardFilter) ColorList() []string {
	if f == nil || len(f.Colors) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(f.Colors, &list); err != nil {
		return nil
	}
	return list
}

// Criteria is the tagged descriptor selecting one evaluation strategy.
// Stored as a JSON column so the admin-curated catalog stays schema-free.
type Criteria struct {
	Type   string      `json:"type"`
	Target int         `json:"target"`
	Unique bool        `json:"unique,omitempty"`
	Filter *CardFilter `json:"filter,omitempty"`
}

func (c Criteria) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *Criteria) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = Criteria{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("cannot scan %T into Criteria", value)
	}
}

// TargetOrDefault guards against catalog rows missing a target.
func (c Criteria) TargetOrDefault() int {
	if c.Target <= 0 {
		return 1
	}
	return c.Target
}

type Achievement struct {
	gorm.Model
	Name        string   `gorm:"uniqueIndex;not null" json:"name"`
	Description string   `gorm:"not null" json:"description"`
	Category    string   `gorm:"size:50;not null" json:"category"`
	Icon        string   `gorm:"size:100" json:"icon"`
	Rarity      string   `gorm:"size:20;default:common" json:"rarity"`
	Criteria    Criteria `gorm:"type:json;not null" json:"criteria"`
	Points      int      `gorm:"default:10" json:"points"`
	IsActive    bool     `gorm:"default:true" json:"is_active"`
}

// ProgressSnapshot is the overwritten-on-every-evaluation progress state.
type ProgressSnapshot struct {
	Current   int  `json:"current"`
	Target    int  `json:"target"`
	Completed bool `json:"completed"`
}

func (p ProgressSnapshot) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ProgressSnapshot) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = ProgressSnapshot{}
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("cannot scan %T into ProgressSnapshot", value)
	}
}

// UserAchievement tracks one user's progress toward one achievement.
// IsCompleted only ever transitions false to true; it is never cleared even if
// the collection later shrinks below the target.
type UserAchievement struct {
	gorm.Model
	UserID        uint             `gorm:"index;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID uint             `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   Achievement      `json:"achievement"`
	Progress      ProgressSnapshot `gorm:"type:json" json:"progress"`
	IsCompleted   bool             `gorm:"default:false" json:"is_completed"`
	CompletedAt   *time.Time       `json:"completed_at"`
}

// AchievementNotification is created exactly once per completion transition.
type AchievementNotification struct {
	gorm.Model
	UserID        uint        `gorm:"index;not null" json:"user_id"`
	AchievementID uint        `gorm:"not null" json:"achievement_id"`
	Achievement   Achievement `json:"achievement"`
	IsViewed      bool        `gorm:"default:false" json:"is_viewed"`
}
