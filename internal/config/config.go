package config

import (
	"log"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string   `mapstructure:"PORT"`
	DatabasePath                  string   `mapstructure:"DATABASE_PATH"`
	ScryfallAPIBase               string   `mapstructure:"SCRYFALL_API_BASE"`
	DiscordClientID               string   `mapstructure:"DISCORD_CLIENT_ID"`
	DiscordClientSecret           string   `mapstructure:"DISCORD_CLIENT_SECRET"`
	DiscordRedirectURL            string   `mapstructure:"DISCORD_REDIRECT_URL"`
	DiscordBotToken               string   `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string   `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	JWTSecret                     string   `mapstructure:"JWT_SECRET"`
	FrontendURL                   string   `mapstructure:"FRONTEND_URL"`
	EnableCORS                    bool     `mapstructure:"ENABLE_CORS"`
	CORSOrigins                   []string `mapstructure:"CORS_ORIGINS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "aetherlab.db")
	viper.SetDefault("SCRYFALL_API_BASE", "https://api.scryfall.com")
	viper.SetDefault("DISCORD_REDIRECT_URL", "http://127.0.0.1:8080/auth/discord/callback")
	viper.SetDefault("FRONTEND_URL", "http://127.0.0.1:5173")
	viper.SetDefault("CORS_ORIGINS", []string{"http://localhost:5173"})

	viper.BindEnv("PORT")
	viper.BindEnv("DATABASE_PATH")
	viper.BindEnv("SCRYFALL_API_BASE")
	viper.BindEnv("DISCORD_CLIENT_ID")
	viper.BindEnv("DISCORD_CLIENT_SECRET")
	viper.BindEnv("DISCORD_REDIRECT_URL")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("FRONTEND_URL")
	viper.BindEnv("ENABLE_CORS")
	viper.BindEnv("CORS_ORIGINS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
