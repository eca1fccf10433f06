package models

import (
	"gorm.io/gorm"
)

type Deck struct {
	gorm.Model
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Format      string `gorm:"size:50" json:"format"`
}

const (
	ZoneMainboard = "mainboard"
	ZoneSideboard = "sideboard"
)

type DeckCard struct {
	gorm.Model
	DeckID     uint   `gorm:"index;not null;uniqueIndex:idx_deck_card_zone" json:"deck_id"`
	ScryfallID string `gorm:"index;size:36;not null;uniqueIndex:idx_deck_card_zone" json:"scryfall_id"`
	Card       Card   `gorm:"foreignKey:ScryfallID;references:ScryfallID" json:"card"`
	Quantity   int    `gorm:"not null;default:1" json:"quantity"`
	CardType   string `gorm:"size:20;default:mainboard;uniqueIndex:idx_deck_card_zone" json:"card_type"`
}
