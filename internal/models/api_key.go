package models

import (
	"time"

	"gorm.io/gorm"
)

// APIKey lets scripts (collection importers, deck exporters) authenticate
// without a browser session.
type APIKey struct {
	gorm.Model
	UserID     uint       `gorm:"index;not null" json:"user_id"`
	Key        string     `gorm:"uniqueIndex" json:"key"`
	Name       string     `json:"name"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}
