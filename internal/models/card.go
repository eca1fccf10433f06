package models

import (
	"time"

	"gorm.io/gorm"
)

// Card is the local cache of Scryfall card data, shared across all users.
type Card struct {
	ScryfallID string     `gorm:"primaryKey;size:36" json:"scryfall_id"`
	Name       string     `gorm:"index;not null" json:"name"`
	ManaCost   string     `json:"mana_cost"`
	CMC        *int       `json:"cmc"`
	TypeLine   string     `json:"type_line"`
	OracleText string     `json:"oracle_text"`
	Colors     StringList `gorm:"type:json" json:"colors"`
	Keywords   StringList `gorm:"type:json" json:"keywords"`
	ImageURI   string     `json:"image_uri"`
	Power      *string    `gorm:"size:10" json:"power"`
	Toughness  *string    `gorm:"size:10" json:"toughness"`
	Rarity     string     `gorm:"size:20" json:"rarity"`
	SetCode    string     `gorm:"size:10" json:"set_code"`
	SetName    string     `json:"set_name"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// CollectionCard is one printing bucket of a card owned by one user. The same
// (user, card) pair may appear in several rows, one per foil/condition/printing
// variant; quantity counts copies within the bucket.
type CollectionCard struct {
	gorm.Model
	UserID          uint    `gorm:"index;not null" json:"user_id"`
	ScryfallID      string  `gorm:"index;size:36;not null" json:"scryfall_id"`
	Card            Card    `gorm:"foreignKey:ScryfallID;references:ScryfallID" json:"card"`
	Quantity        int     `gorm:"not null;default:1" json:"quantity"`
	IsFoil          bool    `gorm:"not null;default:false" json:"is_foil"`
	Condition       string  `gorm:"size:20;not null;default:near_mint" json:"condition"`
	PrintingDetails JSONMap `gorm:"type:json" json:"printing_details"`
}
