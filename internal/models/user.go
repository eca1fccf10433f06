package models

import (
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	// DiscordID is nullable so locally seeded users can exist before any
	// OAuth sign-in links them.
	DiscordID *string `gorm:"uniqueIndex" json:"discord_id"`
	Username  string  `gorm:"uniqueIndex" json:"username"`
	Email     string  `json:"email"`
	Avatar    string  `json:"avatar"`
}
