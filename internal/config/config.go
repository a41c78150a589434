package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Config holds all runtime configuration for the storefront service.
// Values come from the environment; main loads a .env file first when
// present.
type Config struct {
	Env        string
	ListenAddr string

	// Upstream commerce API
	ShopAPIBaseURL string
	ShopAPIKey     string

	// Address autocomplete provider
	PlacesBaseURL string
	PlacesAPIKey  string

	// Local durable state (carts, checkout drafts)
	DataFile string

	// Presentation
	Currency string

	// Autocomplete debounce window
	DebounceInterval time.Duration

	// Allowed CORS origins for the browser storefront
	AllowedOrigins []string
}

// Load reads configuration from the environment, applying defaults for
// anything unset. It never fails; callers that require a value (API keys)
// validate at the point of use.
func Load() *Config {
	return &Config{
		Env:              getEnv("APP_ENV", "development"),
		ListenAddr:       getEnv("LISTEN_ADDR", ":8000"),
		ShopAPIBaseURL:   getEnv("SHOP_API_BASE_URL", "http://localhost:4000"),
		ShopAPIKey:       os.Getenv("SHOP_API_KEY"),
		PlacesBaseURL:    getEnv("PLACES_BASE_URL", "https://places.googleapis.com"),
		PlacesAPIKey:     os.Getenv("PLACES_API_KEY"),
		DataFile:         getEnv("DATA_FILE", "storefront.db"),
		Currency:         getEnv("CURRENCY", "USD"),
		DebounceInterval: getDuration("AUTOCOMPLETE_DEBOUNCE_MS", 500) * time.Millisecond,
		AllowedOrigins:   splitOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getDuration(key string, fallbackMillis int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms := cast.ToInt64(v); ms > 0 {
			return time.Duration(ms)
		}
	}
	return time.Duration(fallbackMillis)
}
