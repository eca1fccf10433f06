package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/achievements"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

type DeckHandler struct {
	db           *gorm.DB
	achievements *achievements.Service
	authHandler  *auth.AuthHandler
}

func NewDeckHandler(db *gorm.DB, achievementService *achievements.Service, authHandler *auth.AuthHandler) *DeckHandler {
	return &DeckHandler{db: db, achievements: achievementService, authHandler: authHandler}
}

type ListDecksRequest struct {
	auth.AuthInput
}

type ListDecksResponse struct {
	Body struct {
		Decks []models.Deck `json:"decks"`
	}
}

func (h *DeckHandler) HandleList(ctx context.Context, input *ListDecksRequest) (*ListDecksResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var decks []models.Deck
	if err := h.db.Where("user_id = ?", userID).Find(&decks).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to get decks: " + err.Error())
	}

	res := &ListDecksResponse{}
	res.Body.Decks = decks
	return res, nil
}

type CreateDeckRequest struct {
	auth.AuthInput
	Body struct {
		Name        string `json:"name" doc:"Deck name" required:"true"`
		Description string `json:"description,omitempty"`
		Format      string `json:"format,omitempty" doc:"Format tag, e.g. standard, modern, commander (default casual)"`
	}
}

type CreateDeckResponse struct {
	Body struct {
		Message string      `json:"message"`
		Deck    models.Deck `json:"deck"`
	}
}

func (h *DeckHandler) HandleCreate(ctx context.Context, input *CreateDeckRequest) (*CreateDeckResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	format := input.Body.Format
	if format == "" {
		format = "casual"
	}

	deck := models.Deck{
		UserID:      userID,
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Format:      format,
	}
	if err := h.db.Create(&deck).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create deck: " + err.Error())
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerDeckUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	res := &CreateDeckResponse{}
	res.Body.Message = "Deck created successfully"
	res.Body.Deck = deck
	return res, nil
}

type DeckDetailRequest struct {
	auth.AuthInput
	DeckID uint `path:"id"`
}

type DeckStatistics struct {
	TotalCards        int            `json:"total_cards"`
	MainboardCards    int            `json:"mainboard_cards"`
	SideboardCards    int            `json:"sideboard_cards"`
	ManaCurve         map[int]int    `json:"mana_curve"`
	ColorDistribution map[string]int `json:"color_distribution"`
}

type DeckDetailResponse struct {
	Body struct {
		Deck       models.Deck       `json:"deck"`
		Cards      []models.DeckCard `json:"cards"`
		Statistics DeckStatistics    `json:"statistics"`
	}
}

// HandleDetail returns a deck with its cards plus mana curve and color
// counts over the mainboard.
func (h *DeckHandler) HandleDetail(ctx context.Context, input *DeckDetailRequest) (*DeckDetailResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var deck models.Deck
	if err := h.db.Where("id = ? AND user_id = ?", input.DeckID, userID).First(&deck).Error; err != nil {
		return nil, huma.Error404NotFound("Deck not found")
	}

	var cards []models.DeckCard
	if err := h.db.Preload("Card").Where("deck_id = ?", deck.ID).Find(&cards).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to get deck: " + err.Error())
	}

	stats := DeckStatistics{
		ManaCurve:         map[int]int{},
		ColorDistribution: map[string]int{},
	}
	for _, deckCard := range cards {
		stats.TotalCards += deckCard.Quantity
		if deckCard.CardType == models.ZoneSideboard {
			stats.SideboardCards += deckCard.Quantity
			continue
		}
		stats.MainboardCards += deckCard.Quantity

		cmc := 0
		if deckCard.Card.CMC != nil {
			cmc = *deckCard.Card.CMC
		}
		stats.ManaCurve[cmc] += deckCard.Quantity

		for _, color := range deckCard.Card.Colors {
			stats.ColorDistribution[color] += deckCard.Quantity
		}
	}

	res := &DeckDetailResponse{}
	res.Body.Deck = deck
	res.Body.Cards = cards
	res.Body.Statistics = stats
	return res, nil
}

type AddDeckCardRequest struct {
	auth.AuthInput
	DeckID uint `path:"id"`
	Body   struct {
		ScryfallID string `json:"scryfall_id" required:"true"`
		Quantity   int    `json:"quantity,omitempty"`
		CardType   string `json:"card_type,omitempty" enum:"mainboard,sideboard" doc:"Deck zone (default mainboard)"`
	}
}

type DeckCardResponse struct {
	Body struct {
		Message  string           `json:"message"`
		DeckCard *models.DeckCard `json:"deck_card,omitempty"`
	}
}

func (h *DeckHandler) HandleAddCard(ctx context.Context, input *AddDeckCardRequest) (*DeckCardResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var deck models.Deck
	if err := h.db.Where("id = ? AND user_id = ?", input.DeckID, userID).First(&deck).Error; err != nil {
		return nil, huma.Error404NotFound("Deck not found")
	}

	var card models.Card
	if err := h.db.Where("scryfall_id = ?", input.Body.ScryfallID).First(&card).Error; err != nil {
		return nil, huma.Error404NotFound("Card not found")
	}

	quantity := input.Body.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	cardType := input.Body.CardType
	if cardType == "" {
		cardType = models.ZoneMainboard
	}

	res := &DeckCardResponse{}

	var existing models.DeckCard
	err = h.db.Where("deck_id = ? AND scryfall_id = ? AND card_type = ?",
		deck.ID, input.Body.ScryfallID, cardType).First(&existing).Error
	switch {
	case err == nil:
		existing.Quantity += quantity
		if err := h.db.Save(&existing).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to add card to deck: " + err.Error())
		}
		res.Body.Message = "Card quantity updated in deck"
		res.Body.DeckCard = &existing
	case err == gorm.ErrRecordNotFound:
		deckCard := models.DeckCard{
			DeckID:     deck.ID,
			ScryfallID: input.Body.ScryfallID,
			Quantity:   quantity,
			CardType:   cardType,
		}
		if err := h.db.Create(&deckCard).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to add card to deck: " + err.Error())
		}
		res.Body.Message = "Card added to deck"
		res.Body.DeckCard = &deckCard
	default:
		return nil, huma.Error500InternalServerError("Failed to add card to deck: " + err.Error())
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerDeckUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}
	return res, nil
}

type UpdateDeckCardRequest struct {
	auth.AuthInput
	DeckID     uint `path:"id"`
	DeckCardID uint `path:"cardId"`
	Body       struct {
		Quantity int `json:"quantity" required:"true"`
	}
}

// HandleUpdateCard sets a deck card's quantity; zero or less removes it.
func (h *DeckHandler) HandleUpdateCard(ctx context.Context, input *UpdateDeckCardRequest) (*DeckCardResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var deck models.Deck
	if err := h.db.Where("id = ? AND user_id = ?", input.DeckID, userID).First(&deck).Error; err != nil {
		return nil, huma.Error404NotFound("Deck not found")
	}

	var deckCard models.DeckCard
	err = h.db.Where("id = ? AND deck_id = ?", input.DeckCardID, deck.ID).First(&deckCard).Error
	if err != nil {
		return nil, huma.Error404NotFound("Deck card not found")
	}

	res := &DeckCardResponse{}

	if input.Body.Quantity <= 0 {
		// Hard delete so the (deck, card, zone) unique index frees up and the
		// card can be re-added later.
		if err := h.db.Unscoped().Delete(&deckCard).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to update deck card: " + err.Error())
		}
		res.Body.Message = "Card removed from deck"
	} else {
		deckCard.Quantity = input.Body.Quantity
		if err := h.db.Save(&deckCard).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to update deck card: " + err.Error())
		}
		res.Body.Message = "Card quantity updated"
		res.Body.DeckCard = &deckCard
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerDeckUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}
	return res, nil
}

type DeleteDeckRequest struct {
	auth.AuthInput
	DeckID uint `path:"id"`
}

type DeleteDeckResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *DeckHandler) HandleDelete(ctx context.Context, input *DeleteDeckRequest) (*DeleteDeckResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var deck models.Deck
	if err := h.db.Where("id = ? AND user_id = ?", input.DeckID, userID).First(&deck).Error; err != nil {
		return nil, huma.Error404NotFound("Deck not found")
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("deck_id = ?", deck.ID).Delete(&models.DeckCard{}).Error; err != nil {
			return err
		}
		return tx.Delete(&deck).Error
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete deck: " + err.Error())
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerDeckUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	res := &DeleteDeckResponse{}
	res.Body.Message = "Deck deleted successfully"
	return res, nil
}

type BuildAroundRequest struct {
	auth.AuthInput
	ScryfallID string `path:"scryfall_id"`
	Body       struct {
		DeckName string `json:"deck_name,omitempty"`
	}
}

type BuildAroundResponse struct {
	Body struct {
		Message    string      `json:"message"`
		Deck       models.Deck `json:"deck"`
		CardsAdded int         `json:"cards_added"`
	}
}

// HandleBuildAround creates a casual deck seeded with a focus card plus
// color- or utility-synergistic cards from the user's collection.
func (h *DeckHandler) HandleBuildAround(ctx context.Context, input *BuildAroundRequest) (*BuildAroundResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var focusCard models.Card
	if err := h.db.Where("scryfall_id = ?", input.ScryfallID).First(&focusCard).Error; err != nil {
		return nil, huma.Error404NotFound("Card not found")
	}

	var focusEntry models.CollectionCard
	err = h.db.Where("user_id = ? AND scryfall_id = ?", userID, input.ScryfallID).First(&focusEntry).Error
	if err != nil {
		return nil, huma.Error404NotFound("Card not in your collection")
	}

	deckName := input.Body.DeckName
	if deckName == "" {
		deckName = "New Deck"
	}

	deck := models.Deck{
		UserID:      userID,
		Name:        fmt.Sprintf("%s (%s)", deckName, focusCard.Name),
		Description: fmt.Sprintf("Deck built around %s", focusCard.Name),
		Format:      "casual",
	}

	cardsAdded := 0
	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&deck).Error; err != nil {
			return err
		}

		focusCopies := focusEntry.Quantity
		if focusCopies > 4 {
			focusCopies = 4
		}
		if err := tx.Create(&models.DeckCard{
			DeckID:     deck.ID,
			ScryfallID: input.ScryfallID,
			Quantity:   focusCopies,
			CardType:   models.ZoneMainboard,
		}).Error; err != nil {
			return err
		}
		cardsAdded = focusCopies

		var collection []models.CollectionCard
		err := tx.Preload("Card").
			Where("user_id = ? AND scryfall_id != ?", userID, input.ScryfallID).
			Find(&collection).Error
		if err != nil {
			return err
		}

		for _, entry := range collection {
			if cardsAdded >= 60 {
				break
			}
			if !isSynergistic(focusCard, entry.Card) {
				continue
			}
			copies := entry.Quantity
			if copies > 4 {
				copies = 4
			}
			if err := tx.Create(&models.DeckCard{
				DeckID:     deck.ID,
				ScryfallID: entry.ScryfallID,
				Quantity:   copies,
				CardType:   models.ZoneMainboard,
			}).Error; err != nil {
				return err
			}
			cardsAdded += copies
		}
		return nil
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to build deck: " + err.Error())
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerDeckUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	res := &BuildAroundResponse{}
	res.Body.Message = "Deck created successfully"
	res.Body.Deck = deck
	res.Body.CardsAdded = cardsAdded
	return res, nil
}

// isSynergistic is a crude heuristic: shared colors, lands, or colorless
// artifact utility.
func isSynergistic(focus, candidate models.Card) bool {
	candidateTypes := strings.ToLower(candidate.TypeLine)
	if strings.Contains(candidateTypes, "land") || strings.Contains(candidateTypes, "artifact") {
		return true
	}
	for _, color := range candidate.Colors {
		for _, focusColor := range focus.Colors {
			if color == focusColor {
				return true
			}
		}
	}
	return false
}
