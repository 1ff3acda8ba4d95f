package config

import (
	"log"
	"os"
	"time"
)

// Config carries everything the server needs from the environment.
// It is loaded once in main and handed to the services that need it,
// so tests can construct their own instances with distinct secrets.
type Config struct {
	Port        string
	DatabaseURL string
	SiteURL     string // public URL of this API, used for OAuth redirect URIs
	ClientURL   string // SPA origin, used for CORS and post-login redirects

	SessionSecret string // cookie store secret (OAuth state only)
	TokenSecret   string // signing secret for session credentials
	TokenTTL      time.Duration

	GoogleClientID     string
	GoogleClientSecret string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
}

// DefaultTokenTTL matches the 90-day cookie window of the frontend.
const DefaultTokenTTL = 90 * 24 * time.Hour

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"),
		SiteURL:     getEnv("SITE_URL", "http://localhost:8080"),
		ClientURL:   getEnv("CLIENT_URL", "http://localhost:5173"),

		SessionSecret: getEnv("SESSION_SECRET", "secret_key_change_me"),
		TokenSecret:   os.Getenv("TOKEN_SECRET"),
		TokenTTL:      DefaultTokenTTL,

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),

		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
	}

	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("Invalid TOKEN_TTL %q: %v", ttl, err)
		}
		cfg.TokenTTL = d
	}

	if cfg.TokenSecret == "" {
		log.Fatal("TOKEN_SECRET is required (at least 32 bytes)")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
