package handlers

import (
	"context"
	"testing"

	"github.com/the-aether-lab/aether-lab-api/internal/achievements"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
)

func TestHandleAddPrintingMergesIdenticalVariants(t *testing.T) {
	env := newTestEnv(t)
	service := achievements.NewService(env.db, nil)
	handler := NewCollectionHandler(env.db, service, env.authHandler)

	card := env.createCard(t, models.Card{Name: "Lightning Bolt"})

	req := &AddPrintingRequest{}
	req.Cookie = env.cookie
	req.Body.ScryfallID = card.ScryfallID
	req.Body.Quantity = 1
	req.Body.PrintingDetails = models.JSONMap{"set_code": "m10", "collector_number": "146"}

	if _, err := handler.HandleAddPrinting(context.Background(), req); err != nil {
		t.Fatalf("first HandleAddPrinting returned error: %v", err)
	}

	resp, err := handler.HandleAddPrinting(context.Background(), req)
	if err != nil {
		t.Fatalf("second HandleAddPrinting returned error: %v", err)
	}
	if resp.Body.Message != "Printing variant quantity updated" {
		t.Errorf("unexpected message: %s", resp.Body.Message)
	}
	if resp.Body.CollectionCard.Quantity != 2 {
		t.Errorf("expected merged quantity 2, got %d", resp.Body.CollectionCard.Quantity)
	}

	// Different printing details create a separate bucket.
	req.Body.PrintingDetails = models.JSONMap{"set_code": "lea", "collector_number": "161"}
	resp, err = handler.HandleAddPrinting(context.Background(), req)
	if err != nil {
		t.Fatalf("third HandleAddPrinting returned error: %v", err)
	}
	if resp.Body.Message != "Printing variant added to collection" {
		t.Errorf("unexpected message: %s", resp.Body.Message)
	}

	var buckets int64
	env.db.Model(&models.CollectionCard{}).Where("user_id = ?", env.user.ID).Count(&buckets)
	if buckets != 2 {
		t.Errorf("expected 2 buckets, got %d", buckets)
	}
}

func TestHandleUpdatePrintingPartialFields(t *testing.T) {
	env := newTestEnv(t)
	service := achievements.NewService(env.db, nil)
	handler := NewCollectionHandler(env.db, service, env.authHandler)

	card := env.createCard(t, models.Card{})
	entry := models.CollectionCard{
		UserID:     env.user.ID,
		ScryfallID: card.ScryfallID,
		Quantity:   2,
		Condition:  "near_mint",
	}
	if err := env.db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed collection: %v", err)
	}

	condition := "played"
	req := &UpdatePrintingRequest{PrintingID: entry.ID}
	req.Cookie = env.cookie
	req.Body.Condition = &condition

	resp, err := handler.HandleUpdatePrinting(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleUpdatePrinting returned error: %v", err)
	}
	if resp.Body.CollectionCard.Condition != "played" {
		t.Errorf("expected condition updated, got %s", resp.Body.CollectionCard.Condition)
	}
	// Unset fields stay untouched.
	if resp.Body.CollectionCard.Quantity != 2 {
		t.Errorf("expected quantity unchanged, got %d", resp.Body.CollectionCard.Quantity)
	}
}

func TestHandleUpdatePrintingZeroQuantityRemoves(t *testing.T) {
	env := newTestEnv(t)
	service := achievements.NewService(env.db, nil)
	handler := NewCollectionHandler(env.db, service, env.authHandler)

	card := env.createCard(t, models.Card{})
	entry := models.CollectionCard{
		UserID:     env.user.ID,
		ScryfallID: card.ScryfallID,
		Quantity:   3,
		Condition:  "near_mint",
	}
	if err := env.db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed collection: %v", err)
	}

	quantity := 0
	req := &UpdatePrintingRequest{PrintingID: entry.ID}
	req.Cookie = env.cookie
	req.Body.Quantity = &quantity

	resp, err := handler.HandleUpdatePrinting(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleUpdatePrinting returned error: %v", err)
	}
	if resp.Body.Message != "Printing variant removed" {
		t.Errorf("unexpected message: %s", resp.Body.Message)
	}

	var count int64
	env.db.Model(&models.CollectionCard{}).Where("user_id = ?", env.user.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected bucket removed at zero quantity, got %d rows", count)
	}
}

func TestHandleListPrintings(t *testing.T) {
	env := newTestEnv(t)
	service := achievements.NewService(env.db, nil)
	handler := NewCollectionHandler(env.db, service, env.authHandler)

	card := env.createCard(t, models.Card{})
	seed := []models.CollectionCard{
		{UserID: env.user.ID, ScryfallID: card.ScryfallID, Quantity: 3, Condition: "near_mint"},
		{UserID: env.user.ID, ScryfallID: card.ScryfallID, Quantity: 1, IsFoil: true, Condition: "near_mint"},
	}
	for i := range seed {
		if err := env.db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("failed to seed collection: %v", err)
		}
	}

	req := &ListPrintingsRequest{ScryfallID: card.ScryfallID}
	req.Cookie = env.cookie
	resp, err := handler.HandleListPrintings(context.Background(), req)
	if err != nil {
		t.Fatalf("HandleListPrintings returned error: %v", err)
	}
	if len(resp.Body.Printings) != 2 {
		t.Errorf("expected 2 printing buckets, got %d", len(resp.Body.Printings))
	}
	if resp.Body.TotalCopies != 4 {
		t.Errorf("expected 4 total copies, got %d", resp.Body.TotalCopies)
	}
}

func TestHandleDeletePrinting(t *testing.T) {
	env := newTestEnv(t)
	service := achievements.NewService(env.db, nil)
	handler := NewCollectionHandler(env.db, service, env.authHandler)

	card := env.createCard(t, models.Card{})
	entry := models.CollectionCard{UserID: env.user.ID, ScryfallID: card.ScryfallID, Quantity: 1, Condition: "near_mint"}
	if err := env.db.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed collection: %v", err)
	}

	req := &DeletePrintingRequest{PrintingID: entry.ID}
	req.Cookie = env.cookie
	if _, err := handler.HandleDeletePrinting(context.Background(), req); err != nil {
		t.Fatalf("HandleDeletePrinting returned error: %v", err)
	}

	var count int64
	env.db.Model(&models.CollectionCard{}).Where("user_id = ?", env.user.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected variant removed, got %d rows", count)
	}
}
