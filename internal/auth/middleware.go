package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/the-aether-lab/aether-lab-api/internal/models"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// AuthMiddleware resolves credentials into the request context without
// rejecting anything itself; operations decide whether auth is required.
// An X-API-KEY header wins over the session cookie.
func (h *AuthHandler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. API Key header
		apiKey := r.Header.Get("X-API-KEY")
		if apiKey != "" {
			var keyModel models.APIKey
			if err := h.db.Where("key = ?", apiKey).First(&keyModel).Error; err == nil {
				if keyModel.ExpiresAt != nil && time.Now().After(*keyModel.ExpiresAt) {
					http.Error(w, "Unauthorized: API Key expired", http.StatusUnauthorized)
					return
				}

				h.db.Model(&keyModel).Update("last_used_at", time.Now())

				ctx := context.WithValue(r.Context(), UserIDKey, keyModel.UserID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}
		}

		// 2. JWT cookie
		cookie, err := r.Cookie("auth_token")
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		userID, claims, err := h.parseToken(cookie.Value)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		// Sliding session: refresh the token once it is past half its duration
		if exp, ok := claims["exp"].(float64); ok {
			remaining := time.Until(time.Unix(int64(exp), 0))
			if remaining < TokenDuration/2 {
				newToken, err := h.GenerateToken(userID)
				if err == nil {
					http.SetCookie(w, &http.Cookie{
						Name:     "auth_token",
						Value:    newToken,
						Expires:  time.Now().Add(TokenDuration),
						HttpOnly: true,
						Path:     "/",
					})
				}
			}
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
