package handlers

import (
	"context"
	"sort"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/achievements"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

type CollectionHandler struct {
	db           *gorm.DB
	achievements *achievements.Service
	authHandler  *auth.AuthHandler
}

func NewCollectionHandler(db *gorm.DB, achievementService *achievements.Service, authHandler *auth.AuthHandler) *CollectionHandler {
	return &CollectionHandler{db: db, achievements: achievementService, authHandler: authHandler}
}

type AddToCollectionRequest struct {
	auth.AuthInput
	Body struct {
		ScryfallID string `json:"scryfall_id" doc:"Card to add" required:"true"`
		Quantity   int    `json:"quantity,omitempty" doc:"Copies to add (default 1)"`
		IsFoil     bool   `json:"is_foil,omitempty"`
		Condition  string `json:"condition,omitempty" doc:"Card condition (default near_mint)"`
	}
}

type AddToCollectionResponse struct {
	Body struct {
		Message        string                `json:"message"`
		CollectionCard models.CollectionCard `json:"collection_card"`
		NewlyCompleted int                   `json:"newly_completed_achievements"`
		Achievements   []models.Achievement  `json:"achievements"`
	}
}

// HandleAdd adds copies to the user's collection, merging into an existing
// printing bucket when foil and condition match, then re-evaluates
// collection-triggered achievements.
func (h *CollectionHandler) HandleAdd(ctx context.Context, input *AddToCollectionRequest) (*AddToCollectionResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	quantity := input.Body.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	condition := input.Body.Condition
	if condition == "" {
		condition = "near_mint"
	}

	var card models.Card
	if err := h.db.Where("scryfall_id = ?", input.Body.ScryfallID).First(&card).Error; err != nil {
		return nil, huma.Error404NotFound("Card not found in cache")
	}

	res := &AddToCollectionResponse{}

	var entry models.CollectionCard
	err = h.db.Where("user_id = ? AND scryfall_id = ? AND is_foil = ? AND condition = ?",
		userID, input.Body.ScryfallID, input.Body.IsFoil, condition).First(&entry).Error
	switch {
	case err == nil:
		entry.Quantity += quantity
		if err := h.db.Save(&entry).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to update quantity: " + err.Error())
		}
		res.Body.Message = "Card quantity updated"
	case err == gorm.ErrRecordNotFound:
		entry = models.CollectionCard{
			UserID:     userID,
			ScryfallID: input.Body.ScryfallID,
			Quantity:   quantity,
			IsFoil:     input.Body.IsFoil,
			Condition:  condition,
			PrintingDetails: models.JSONMap{
				"set_code": card.SetCode,
				"set_name": card.SetName,
			},
		}
		if err := h.db.Create(&entry).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to add card: " + err.Error())
		}
		res.Body.Message = "Card added to collection"
	default:
		return nil, huma.Error500InternalServerError("Failed to add card: " + err.Error())
	}

	newlyCompleted, err := h.achievements.Evaluate(userID, achievements.TriggerCollectionUpdate)
	if err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	entry.Card = card
	res.Body.CollectionCard = entry
	res.Body.NewlyCompleted = len(newlyCompleted)
	res.Body.Achievements = newlyCompleted
	return res, nil
}

type SearchCollectionRequest struct {
	auth.AuthInput
	Query     string `query:"q" required:"false" doc:"Substring match on name, type line or oracle text"`
	Colors    string `query:"colors" required:"false" doc:"Comma-separated color codes; Colorless matches cards with no colors"`
	CardType  string `query:"type" required:"false"`
	Rarity    string `query:"rarity" required:"false"`
	CMCMin    *int   `query:"cmc_min" required:"false"`
	CMCMax    *int   `query:"cmc_max" required:"false"`
	SortBy    string `query:"sort_by" required:"false" enum:"name,cmc,quantity" default:"name"`
	SortOrder string `query:"sort_order" required:"false" enum:"asc,desc" default:"asc"`
	Page      int    `query:"page" required:"false" default:"1"`
	PerPage   int    `query:"per_page" required:"false" default:"20"`
}

type SearchCollectionResponse struct {
	Body struct {
		CollectionCards []models.CollectionCard `json:"collection_cards"`
		Total           int                     `json:"total"`
		Page            int                     `json:"page"`
		PerPage         int                     `json:"per_page"`
		Pages           int                     `json:"pages"`
	}
}

func (h *CollectionHandler) HandleSearch(ctx context.Context, input *SearchCollectionRequest) (*SearchCollectionResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var owned []models.CollectionCard
	if err := h.db.Preload("Card").Where("user_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, huma.Error500InternalServerError("Collection search failed: " + err.Error())
	}

	filtered := owned[:0:0]
	for _, entry := range owned {
		if matchesCollectionFilters(entry, input) {
			filtered = append(filtered, entry)
		}
	}

	sortCollection(filtered, input.SortBy, input.SortOrder)

	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := input.PerPage
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	total := len(filtered)
	pages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	res := &SearchCollectionResponse{}
	res.Body.CollectionCards = filtered[start:end]
	res.Body.Total = total
	res.Body.Page = page
	res.Body.PerPage = perPage
	res.Body.Pages = pages
	return res, nil
}

func matchesCollectionFilters(entry models.CollectionCard, input *SearchCollectionRequest) bool {
	card := entry.Card

	if query := strings.TrimSpace(input.Query); query != "" {
		q := strings.ToLower(query)
		if !strings.Contains(strings.ToLower(card.Name), q) &&
			!strings.Contains(strings.ToLower(card.TypeLine), q) &&
			!strings.Contains(strings.ToLower(card.OracleText), q) {
			return false
		}
	}

	if input.Colors != "" {
		matched := false
		for _, color := range strings.Split(input.Colors, ",") {
			color = strings.TrimSpace(color)
			if color == "" {
				continue
			}
			if color == "Colorless" {
				if len(card.Colors) == 0 {
					matched = true
				}
				continue
			}
			for _, c := range card.Colors {
				if c == strings.ToUpper(color) {
					matched = true
				}
			}
		}
		if !matched {
			return false
		}
	}

	if input.CardType != "" &&
		!strings.Contains(strings.ToLower(card.TypeLine), strings.ToLower(input.CardType)) {
		return false
	}
	if input.Rarity != "" && card.Rarity != input.Rarity {
		return false
	}
	if input.CMCMin != nil && (card.CMC == nil || *card.CMC < *input.CMCMin) {
		return false
	}
	// A max of 15 means 15+, i.e. no upper bound.
	if input.CMCMax != nil && *input.CMCMax < 15 && (card.CMC == nil || *card.CMC > *input.CMCMax) {
		return false
	}
	return true
}

func sortCollection(entries []models.CollectionCard, sortBy, sortOrder string) {
	compare := func(a, b models.CollectionCard) int {
		switch sortBy {
		case "cmc":
			ac, bc := 0, 0
			if a.Card.CMC != nil {
				ac = *a.Card.CMC
			}
			if b.Card.CMC != nil {
				bc = *b.Card.CMC
			}
			return ac - bc
		case "quantity":
			return a.Quantity - b.Quantity
		default:
			return strings.Compare(a.Card.Name, b.Card.Name)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		cmp := compare(entries[i], entries[j])
		if sortOrder == "desc" {
			return cmp > 0
		}
		return cmp < 0
	})
}

type CollectionIndexRequest struct {
	auth.AuthInput
}

type CollectionIndexEntry struct {
	ID         uint              `json:"id"`
	ScryfallID string            `json:"scryfall_id"`
	Name       string            `json:"name"`
	TypeLine   string            `json:"type_line"`
	Colors     models.StringList `json:"colors"`
	Rarity     string            `json:"rarity"`
	CMC        *int              `json:"cmc"`
}

type CollectionIndexResponse struct {
	Body struct {
		Index []CollectionIndexEntry `json:"index"`
		Total int                    `json:"total"`
	}
}

// HandleIndex returns a lightweight projection of the collection for
// client-side filtering.
func (h *CollectionHandler) HandleIndex(ctx context.Context, input *CollectionIndexRequest) (*CollectionIndexResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var owned []models.CollectionCard
	if err := h.db.Preload("Card").Where("user_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to get collection index: " + err.Error())
	}

	index := make([]CollectionIndexEntry, 0, len(owned))
	for _, entry := range owned {
		index = append(index, CollectionIndexEntry{
			ID:         entry.ID,
			ScryfallID: entry.ScryfallID,
			Name:       entry.Card.Name,
			TypeLine:   entry.Card.TypeLine,
			Colors:     entry.Card.Colors,
			Rarity:     entry.Card.Rarity,
			CMC:        entry.Card.CMC,
		})
	}

	res := &CollectionIndexResponse{}
	res.Body.Index = index
	res.Body.Total = len(index)
	return res, nil
}

type UpdateCollectionCardRequest struct {
	auth.AuthInput
	Body struct {
		CollectionCardID uint `json:"collection_card_id" required:"true"`
		Quantity         int  `json:"quantity"`
	}
}

type CollectionMutationResponse struct {
	Body struct {
		Message        string                 `json:"message"`
		CollectionCard *models.CollectionCard `json:"collection_card,omitempty"`
	}
}

// HandleUpdate sets a printing bucket's quantity; zero or less removes it.
func (h *CollectionHandler) HandleUpdate(ctx context.Context, input *UpdateCollectionCardRequest) (*CollectionMutationResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var entry models.CollectionCard
	err = h.db.Where("id = ? AND user_id = ?", input.Body.CollectionCardID, userID).First(&entry).Error
	if err != nil {
		return nil, huma.Error404NotFound("Collection card not found")
	}

	return h.applyQuantity(userID, &entry, input.Body.Quantity)
}

type UpdateCardQuantityRequest struct {
	auth.AuthInput
	Body struct {
		CardID   string `json:"card_id" doc:"Scryfall ID of the card" required:"true"`
		Quantity int    `json:"quantity"`
	}
}

// HandleUpdateQuantity adjusts the first printing bucket of a card.
func (h *CollectionHandler) HandleUpdateQuantity(ctx context.Context, input *UpdateCardQuantityRequest) (*CollectionMutationResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var entry models.CollectionCard
	err = h.db.Where("user_id = ? AND scryfall_id = ?", userID, input.Body.CardID).First(&entry).Error
	if err != nil {
		return nil, huma.Error404NotFound("Collection card not found")
	}

	return h.applyQuantity(userID, &entry, input.Body.Quantity)
}

func (h *CollectionHandler) applyQuantity(userID uint, entry *models.CollectionCard, quantity int) (*CollectionMutationResponse, error) {
	res := &CollectionMutationResponse{}

	if quantity <= 0 {
		if err := h.db.Delete(entry).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to update card: " + err.Error())
		}
		res.Body.Message = "Card removed from collection"
	} else {
		entry.Quantity = quantity
		if err := h.db.Save(entry).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to update card: " + err.Error())
		}
		res.Body.Message = "Card quantity updated"
		res.Body.CollectionCard = entry
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerCollectionUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}
	return res, nil
}

type RemoveFromCollectionRequest struct {
	auth.AuthInput
	Body struct {
		CardID string `json:"card_id" doc:"Scryfall ID of the card" required:"true"`
	}
}

func (h *CollectionHandler) HandleRemove(ctx context.Context, input *RemoveFromCollectionRequest) (*CollectionMutationResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var entry models.CollectionCard
	err = h.db.Where("user_id = ? AND scryfall_id = ?", userID, input.Body.CardID).First(&entry).Error
	if err != nil {
		return nil, huma.Error404NotFound("Collection card not found")
	}

	if err := h.db.Delete(&entry).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to remove card: " + err.Error())
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerCollectionUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	res := &CollectionMutationResponse{}
	res.Body.Message = "Card removed from collection"
	return res, nil
}
