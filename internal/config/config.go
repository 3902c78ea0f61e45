package config

import (
	"fmt"
	"os"
)

// Backend identifiers accepted in STORE_BACKEND.
const (
	BackendLocal = "local"
	BackendREST  = "rest"
)

// Config holds the application configuration
type Config struct {
	Port string

	// StoreBackend selects the persistence variant: "local" keeps the
	// collection in a single JSON file, "rest" talks to the remote /books/
	// collection endpoint. The two are alternates, never used together.
	StoreBackend string
	DataFile     string
	APIBaseURL   string

	// AdminPassword is the shared static secret gating the admin panel.
	AdminPassword string

	// GeminiAPIKey enables external certificate generation when set.
	GeminiAPIKey string

	// PublicURL is the origin embedded in the student share link.
	PublicURL string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	config.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if config.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	config.StoreBackend = os.Getenv("STORE_BACKEND")
	if config.StoreBackend == "" {
		config.StoreBackend = BackendLocal
	}

	switch config.StoreBackend {
	case BackendLocal:
		config.DataFile = os.Getenv("DATA_FILE")
		if config.DataFile == "" {
			config.DataFile = "solicitudes.json"
		}
	case BackendREST:
		config.APIBaseURL = os.Getenv("API_BASE_URL")
		if config.APIBaseURL == "" {
			return nil, fmt.Errorf("API_BASE_URL is required when STORE_BACKEND is %q", BackendREST)
		}
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q (want %q or %q)", config.StoreBackend, BackendLocal, BackendREST)
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	// Optional: without a key certificates use the local template only.
	config.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	config.PublicURL = os.Getenv("PUBLIC_URL")
	if config.PublicURL == "" {
		config.PublicURL = "http://localhost:" + config.Port
	}

	return config, nil
}
