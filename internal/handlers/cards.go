package handlers

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"github.com/the-aether-lab/aether-lab-api/internal/scryfall"
	"gorm.io/gorm"
)

const searchResultLimit = 20

type CardHandler struct {
	db       *gorm.DB
	scryfall *scryfall.Client
}

func NewCardHandler(db *gorm.DB, scryfallClient *scryfall.Client) *CardHandler {
	return &CardHandler{db: db, scryfall: scryfallClient}
}

type SearchCardsRequest struct {
	Query string `query:"q" doc:"Card name to search for" required:"true"`
}

type SearchCardsResponse struct {
	Body struct {
		Cards  []models.Card `json:"cards"`
		Source string        `json:"source"`
	}
}

// HandleSearchCards searches the local cache and Scryfall, caching anything
// new. Local exact matches come first, then Scryfall exact matches, then
// cached partial matches, then a broad Scryfall search if still short.
func (h *CardHandler) HandleSearchCards(ctx context.Context, input *SearchCardsRequest) (*SearchCardsResponse, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, huma.Error400BadRequest("Query parameter q is required")
	}

	var ordered []string
	seen := map[string]bool{}
	fetched := map[string]scryfall.CardData{}

	addCached := func(card models.Card) {
		if !seen[card.ScryfallID] {
			seen[card.ScryfallID] = true
			ordered = append(ordered, card.ScryfallID)
		}
	}
	addFetched := func(data scryfall.CardData) {
		if !seen[data.ID] {
			seen[data.ID] = true
			ordered = append(ordered, data.ID)
			fetched[data.ID] = data
		}
	}

	// 1. Exact match in the local cache.
	var exact models.Card
	if err := h.db.Where("LOWER(name) = LOWER(?)", query).First(&exact).Error; err == nil {
		addCached(exact)
	}

	// 2. Exact search on Scryfall.
	if results, err := h.scryfall.SearchExact(ctx, query); err == nil {
		for _, data := range results {
			addFetched(data)
		}
	}

	// 3. Partial matches in the local cache.
	var partial []models.Card
	if err := h.db.Where("name LIKE ?", "%"+query+"%").Limit(searchResultLimit).Find(&partial).Error; err == nil {
		for _, card := range partial {
			addCached(card)
		}
	}

	// 4. Broader Scryfall search if we are still short on results.
	if len(ordered) < searchResultLimit {
		if results, err := h.scryfall.Search(ctx, query); err == nil {
			for _, data := range results {
				addFetched(data)
			}
		}
	}

	cards := make([]models.Card, 0, len(ordered))
	for _, id := range ordered {
		var card models.Card
		err := h.db.Where("scryfall_id = ?", id).First(&card).Error
		if err == nil {
			cards = append(cards, card)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return nil, huma.Error500InternalServerError("Search failed: " + err.Error())
		}

		data, ok := fetched[id]
		if !ok {
			continue
		}
		card = cardFromScryfall(data)
		if err := h.db.Create(&card).Error; err != nil {
			return nil, huma.Error500InternalServerError("Failed to cache card: " + err.Error())
		}
		cards = append(cards, card)
	}

	if len(cards) > searchResultLimit {
		cards = cards[:searchResultLimit]
	}

	res := &SearchCardsResponse{}
	res.Body.Cards = cards
	res.Body.Source = "mixed"
	return res, nil
}

func cardFromScryfall(data scryfall.CardData) models.Card {
	cmc := int(data.CMC)
	return models.Card{
		ScryfallID: data.ID,
		Name:       data.Name,
		ManaCost:   data.ManaCost,
		CMC:        &cmc,
		TypeLine:   data.TypeLine,
		OracleText: data.OracleText,
		Colors:     models.StringList(data.Colors),
		Keywords:   models.StringList(data.Keywords),
		ImageURI:   data.PreferredImage(),
		Power:      data.Power,
		Toughness:  data.Toughness,
		Rarity:     data.Rarity,
		SetCode:    data.Set,
		SetName:    data.SetName,
	}
}
