package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
	"gorm.io/gorm"
)

type APIKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
}

func NewAPIKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler) *APIKeyHandler {
	return &APIKeyHandler{db: db, authHandler: authHandler}
}

type APIKeyInfo struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

type CreateAPIKeyRequest struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" required:"true"`
		ExpiresAt *time.Time `json:"expires_at,omitempty"`
	}
}

type CreateAPIKeyResponse struct {
	Body APIKeyInfo
}

// HandleCreate issues a new key. The full key value is only returned here;
// listings mask it.
func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyRequest) (*CreateAPIKeyResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}

	apiKey := models.APIKey{
		UserID:    userID,
		Key:       hex.EncodeToString(raw),
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.Create(&apiKey).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create API key")
	}

	return &CreateAPIKeyResponse{Body: APIKeyInfo{
		ID:        apiKey.ID,
		Name:      apiKey.Name,
		Key:       apiKey.Key,
		CreatedAt: apiKey.CreatedAt,
		ExpiresAt: apiKey.ExpiresAt,
	}}, nil
}

type ListAPIKeysRequest struct {
	auth.AuthInput
}

type ListAPIKeysResponse struct {
	Body []APIKeyInfo
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *ListAPIKeysRequest) (*ListAPIKeysResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	var keys []models.APIKey
	if err := h.db.Where("user_id = ?", userID).Find(&keys).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list API keys")
	}

	infos := make([]APIKeyInfo, 0, len(keys))
	for _, key := range keys {
		masked := key.Key
		if len(masked) > 4 {
			masked = "..." + masked[len(masked)-4:]
		}
		infos = append(infos, APIKeyInfo{
			ID:         key.ID,
			Name:       key.Name,
			Key:        masked,
			CreatedAt:  key.CreatedAt,
			ExpiresAt:  key.ExpiresAt,
			LastUsedAt: key.LastUsedAt,
		})
	}

	return &ListAPIKeysResponse{Body: infos}, nil
}

type DeleteAPIKeyRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyRequest) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}

	if err := h.db.Where("id = ? AND user_id = ?", input.ID, userID).Delete(&models.APIKey{}).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to delete API key")
	}

	return nil, nil
}
