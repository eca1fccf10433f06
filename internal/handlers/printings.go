package handlers

import (
	"context"
	"reflect"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/achievements"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
)

type AddPrintingRequest struct {
	auth.AuthInput
	Body struct {
		ScryfallID      string         `json:"scryfall_id" required:"true"`
		Quantity        int            `json:"quantity,omitempty"`
		IsFoil          bool           `json:"is_foil,omitempty"`
		Condition       string         `json:"condition,omitempty"`
		PrintingDetails models.JSONMap `json:"printing_details,omitempty" doc:"Set, collector number, alternate art or promo flags"`
	}
}

type PrintingResponse struct {
	Body struct {
		Message        string                `json:"message"`
		CollectionCard models.CollectionCard `json:"collection_card"`
	}
}

// HandleAddPrinting adds a specific printing variant. An identical bucket
// (same foil, condition and printing details) is merged by quantity instead
// of duplicated.
func (h *CollectionHandler) HandleAddPrinting(ctx context.Context, input *AddPrintingRequest) (*PrintingResponse, error) {
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

	res := &PrintingResponse{}

	var existing []models.CollectionCard
	err = h.db.Where("user_id = ? AND scryfall_id = ? AND is_foil = ? AND condition = ?",
		userID, input.Body.ScryfallID, input.Body.IsFoil, condition).Find(&existing).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to add printing variant: " + err.Error())
	}

	for i := range existing {
		if samePrintingDetails(existing[i].PrintingDetails, input.Body.PrintingDetails) {
			existing[i].Quantity += quantity
			if err := h.db.Save(&existing[i]).Error; err != nil {
				return nil, huma.Error500InternalServerError("Failed to update printing variant: " + err.Error())
			}
			res.Body.Message = "Printing variant quantity updated"
			res.Body.CollectionCard = existing[i]
			return res, nil
		}
	}

	entry := models.CollectionCard{
		UserID:          userID,
		ScryfallID:      input.Body.ScryfallID,
		Quantity:        quantity,
		IsFoil:          input.Body.IsFoil,
		Condition:       condition,
		PrintingDetails: input.Body.PrintingDetails,
	}
	if err := h.db.Create(&entry).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to add printing variant: " + err.Error())
	}

	if _, err := h.achievements.Evaluate(userID, achievements.TriggerCollectionUpdate); err != nil {
		return nil, huma.Error500InternalServerError("Achievement check failed: " + err.Error())
	}

	res.Body.Message = "Printing variant added to collection"
	res.Body.CollectionCard = entry
	return res, nil
}

func samePrintingDetails(a, b models.JSONMap) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}

type UpdatePrintingRequest struct {
	auth.AuthInput
	PrintingID uint `path:"id"`
	Body       struct {
		Quantity        *int           `json:"quantity,omitempty"`
		IsFoil          *bool          `json:"is_foil,omitempty"`
		Condition       *string        `json:"condition,omitempty"`
		PrintingDetails models.JSONMap `json:"printing_details,omitempty"`
	}
}

func (h *CollectionHandler) HandleUpdatePrinting(ctx context.Context, input *UpdatePrintingRequest) (*PrintingResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var entry models.CollectionCard
	err = h.db.Where("id = ? AND user_id = ?", input.PrintingID, userID).First(&entry).Error
	if err != nil {
		return nil, huma.Error404NotFound("Printing variant not found")
	}

	if input.Body.Quantity != nil {
		// Setting the quantity to zero removes the bucket, matching the
		// collection quantity endpoint.
		if *input.Body.Quantity <= 0 {
			if err := h.db.Delete(&entry).Error; err != nil {
				return nil, huma.Error500InternalServerError("Failed to update printing variant: " + err.Error())
			}
			res := &PrintingResponse{}
			res.Body.Message = "Printing variant removed"
			return res, nil
		}
		entry.Quantity = *input.Body.Quantity
	}
	if input.Body.IsFoil != nil {
		entry.IsFoil = *input.Body.IsFoil
	}
	if input.Body.Condition != nil {
		entry.Condition = *input.Body.Condition
	}
	if input.Body.PrintingDetails != nil {
		entry.PrintingDetails = input.Body.PrintingDetails
	}

	if err := h.db.Save(&entry).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to update printing variant: " + err.Error())
	}

	res := &PrintingResponse{}
	res.Body.Message = "Printing variant updated"
	res.Body.CollectionCard = entry
	return res, nil
}

type DeletePrintingRequest struct {
	auth.AuthInput
	PrintingID uint `path:"id"`
}

type DeletePrintingResponse struct {
	Body struct {
		Message string `json:"message"`
	}
}

func (h *CollectionHandler) HandleDeletePrinting(ctx context.Context, input *DeletePrintingRequest) (*DeletePrintingResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var entry models.CollectionCard
	err = h.db.Where("id = ? AND user_id = ?", input.PrintingID, userID).First(&entry).Error
	if err != nil {
		return nil, huma.Error404NotFound("Printing variant not found")
	}

	if err := h.db.Delete(&entry).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete printing variant: " + err.Error())
	}

	res := &DeletePrintingResponse{}
	res.Body.Message = "Printing variant deleted"
	return res, nil
}

type ListPrintingsRequest struct {
	auth.AuthInput
	ScryfallID string `path:"scryfall_id"`
}

type ListPrintingsResponse struct {
	Body struct {
		Printings   []models.CollectionCard `json:"printings"`
		TotalCopies int                     `json:"total_copies"`
	}
}

// HandleListPrintings lists every printing bucket of one card the user owns.
func (h *CollectionHandler) HandleListPrintings(ctx context.Context, input *ListPrintingsRequest) (*ListPrintingsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var printings []models.CollectionCard
	err = h.db.Preload("Card").Where("user_id = ? AND scryfall_id = ?", userID, input.ScryfallID).
		Find(&printings).Error
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get card printings: " + err.Error())
	}

	total := 0
	for _, printing := range printings {
		total += printing.Quantity
	}

	res := &ListPrintingsResponse{}
	res.Body.Printings = printings
	res.Body.TotalCopies = total
	return res, nil
}
