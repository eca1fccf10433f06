package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"github.com/the-aether-lab/aether-lab-api/internal/achievements"
	"github.com/the-aether-lab/aether-lab-api/internal/auth"
	"github.com/the-aether-lab/aether-lab-api/internal/config"
	"github.com/the-aether-lab/aether-lab-api/internal/database"
	"github.com/the-aether-lab/aether-lab-api/internal/handlers"
	"github.com/the-aether-lab/aether-lab-api/internal/notifier"
	"github.com/the-aether-lab/aether-lab-api/internal/scryfall"
	"github.com/the-aether-lab/aether-lab-api/internal/stats"
)

func main() {
	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)
	database.Seed(db)

	// Discord notifications are optional; the server runs without them.
	var achievementNotifier notifier.Notifier
	if cfg.DiscordBotToken != "" && cfg.DiscordNotificationsChannelID != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			log.Printf("Discord notifier not initialized: %v", err)
		} else {
			achievementNotifier = notifier.NewDiscordNotifier(session, cfg.DiscordNotificationsChannelID)
		}
	}

	// Initialize Services
	achievementService := achievements.NewService(db, achievementNotifier)
	statsService := stats.NewService(db)
	scryfallClient := scryfall.NewClient(cfg.ScryfallAPIBase)

	// Initialize Handlers
	authHandler := auth.NewAuthHandler(cfg, db)
	userHandler := handlers.NewUserHandler(db)
	cardHandler := handlers.NewCardHandler(db, scryfallClient)
	collectionHandler := handlers.NewCollectionHandler(db, achievementService, authHandler)
	deckHandler := handlers.NewDeckHandler(db, achievementService, authHandler)
	achievementHandler := handlers.NewAchievementHandler(db, achievementService, authHandler)
	statsHandler := handlers.NewStatsHandler(statsService, authHandler)
	apiKeyHandler := handlers.NewAPIKeyHandler(db, authHandler)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, cfg, authHandler, userHandler, cardHandler, collectionHandler, deckHandler, achievementHandler, statsHandler, apiKeyHandler)

	// Start Server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
