package handlers

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/config"
)

func RegisterRoutes(
	r *chi.Mux,
	cfg *config.Config,
	authHandler *auth.AuthHandler,
	userHandler *UserHandler,
	cardHandler *CardHandler,
	collectionHandler *CollectionHandler,
	deckHandler *DeckHandler,
	achievementHandler *AchievementHandler,
	statsHandler *StatsHandler,
	apiKeyHandler *APIKeyHandler,
) {
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if cfg.EnableCORS {
		r.Use(corsMiddleware(cfg.CORSOrigins))
	}
	r.Use(authHandler.AuthMiddleware)

	// Initialize Huma API
	config := huma.DefaultConfig("Aether Lab API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: "auth_token",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Auth routes
	r.Get("/auth/discord/login", authHandler.HandleLogin)
	r.Get("/auth/discord/callback", authHandler.HandleCallback)

	protected := func(o *huma.Operation) {
		o.Security = []map[string][]string{{"cookieAuth": {}}}
	}

	// Users
	huma.Get(api, "/api/users", userHandler.HandleList)
	huma.Post(api, "/api/users", userHandler.HandleCreate)

	// Card search
	huma.Get(api, "/api/cards/search", cardHandler.HandleSearchCards)

	huma.Get(api, "/me", authHandler.HandleMe, protected)

	// Collection
	huma.Post(api, "/api/collection/add", collectionHandler.HandleAdd, protected)
	huma.Get(api, "/api/collection", collectionHandler.HandleIndex, protected)
	huma.Get(api, "/api/collection/search", collectionHandler.HandleSearch, protected)
	huma.Put(api, "/api/collection/update", collectionHandler.HandleUpdate, protected)
	huma.Put(api, "/api/collection/quantity", collectionHandler.HandleUpdateQuantity, protected)
	huma.Post(api, "/api/collection/remove", collectionHandler.HandleRemove, protected)

	// Printings
	huma.Post(api, "/api/collection/printings", collectionHandler.HandleAddPrinting, protected)
	huma.Get(api, "/api/collection/cards/{scryfall_id}/printings", collectionHandler.HandleListPrintings, protected)
	huma.Put(api, "/api/collection/printings/{id}", collectionHandler.HandleUpdatePrinting, protected)
	huma.Delete(api, "/api/collection/printings/{id}", collectionHandler.HandleDeletePrinting, protected)

	// Decks
	huma.Get(api, "/api/decks", deckHandler.HandleList, protected)
	huma.Post(api, "/api/decks", deckHandler.HandleCreate, protected)
	huma.Get(api, "/api/decks/{id}", deckHandler.HandleDetail, protected)
	huma.Delete(api, "/api/decks/{id}", deckHandler.HandleDelete, protected)
	huma.Post(api, "/api/decks/{id}/cards", deckHandler.HandleAddCard, protected)
	huma.Put(api, "/api/decks/{id}/cards/{cardId}", deckHandler.HandleUpdateCard, protected)
	huma.Post(api, "/api/decks/build-around/{scryfall_id}", deckHandler.HandleBuildAround, protected)

	// Achievements
	huma.Get(api, "/api/achievements", achievementHandler.HandleList, protected)
	huma.Post(api, "/api/achievements/check", achievementHandler.HandleCheck, protected)
	huma.Get(api, "/api/achievements/notifications", achievementHandler.HandleListNotifications, protected)
	huma.Post(api, "/api/achievements/notifications/{id}/viewed", achievementHandler.HandleMarkNotificationViewed, protected)

	// Stats
	huma.Get(api, "/api/collection/stats", statsHandler.HandleCollectionStats, protected)

	// API keys
	huma.Post(api, "/api/keys", apiKeyHandler.HandleCreate, protected)
	huma.Get(api, "/api/keys", apiKeyHandler.HandleList, protected)
	huma.Delete(api, "/api/keys/{id}", apiKeyHandler.HandleDelete, protected)
}

// corsMiddleware answers preflight requests and echoes the origin when it is
// on the allow list. Credentials are required for the auth cookie.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[strings.TrimRight(origin, "/")] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && allowed[strings.TrimRight(origin, "/")] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-KEY")
				w.Header().Set("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
