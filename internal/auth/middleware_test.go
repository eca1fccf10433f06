package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/the-aether-lab/aether-lab-api/internal/models"
)

// contextProbe records the user ID the middleware resolved, if any.
func contextProbe(got *uint, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := r.Context().Value(UserIDKey).(uint); ok {
			*got = userID
			*found = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareCookie(t *testing.T) {
	handler, db := newTestHandler(t)

	user := models.User{Username: "tester", Email: "tester@example.com"}
	db.Create(&user)
	token, _ := handler.GenerateToken(user.ID)

	var got uint
	var found bool
	mw := handler.AuthMiddleware(contextProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: token})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if !found || got != user.ID {
		t.Fatalf("expected user %d in context, found=%v got=%d", user.ID, found, got)
	}
}

func TestAuthMiddlewarePassesThroughAnonymous(t *testing.T) {
	handler, _ := newTestHandler(t)

	var got uint
	var found bool
	mw := handler.AuthMiddleware(contextProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous request must pass through, got status %d", rec.Code)
	}
	if found {
		t.Error("expected no user in context for anonymous request")
	}
}

func TestAuthMiddlewareAPIKey(t *testing.T) {
	handler, db := newTestHandler(t)

	user := models.User{Username: "tester", Email: "tester@example.com"}
	db.Create(&user)
	apiKey := models.APIKey{UserID: user.ID, Key: "deadbeef", Name: "script"}
	db.Create(&apiKey)

	var got uint
	var found bool
	mw := handler.AuthMiddleware(contextProbe(&got, &found))

	t.Run("ValidKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/collection", nil)
		req.Header.Set("X-API-KEY", "deadbeef")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if !found || got != user.ID {
			t.Fatalf("expected user %d via API key, found=%v got=%d", user.ID, found, got)
		}

		var updated models.APIKey
		db.First(&updated, apiKey.ID)
		if updated.LastUsedAt == nil {
			t.Error("expected last_used_at to be stamped")
		}
	})

	t.Run("ExpiredKey", func(t *testing.T) {
		expired := time.Now().Add(-time.Hour)
		db.Model(&apiKey).Update("expires_at", expired)

		req := httptest.NewRequest(http.MethodGet, "/api/collection", nil)
		req.Header.Set("X-API-KEY", "deadbeef")
		rec := httptest.NewRecorder()
		mw.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for expired key, got %d", rec.Code)
		}
	})
}

func TestAuthMiddlewareSlidingRenewal(t *testing.T) {
	handler, db := newTestHandler(t)

	user := models.User{Username: "tester", Email: "tester@example.com"}
	db.Create(&user)

	// Token past half its lifetime triggers a refreshed cookie.
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     time.Now().Add(TokenDuration / 4).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	var got uint
	var found bool
	mw := handler.AuthMiddleware(contextProbe(&got, &found))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth_token", Value: signed})
	rec := httptest.NewRecorder()
	mw.ServeHTTP(rec, req)

	if !found {
		t.Fatal("expected authenticated context")
	}

	renewed := false
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "auth_token" && cookie.Value != signed {
			renewed = true
		}
	}
	if !renewed {
		t.Error("expected a refreshed auth_token cookie")
	}
}
