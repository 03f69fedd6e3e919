// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/onohta/tradebook/internal/modules/settings"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the journal database (always absolute)
	CompanyDataFile string // Optional JSON file with symbol -> company name records
	RemoteBaseURL   string // Remote store base URL; empty disables sync
	RemoteAPIKey    string
	AccountID       string // Account scoping remote rows; empty means not authenticated
	SyncInterval    string // cron spec for the background sync job
	LogLevel        string
	Port            int
	DevMode         bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("TRADEBOOK_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		CompanyDataFile: getEnv("TRADEBOOK_COMPANY_DATA", filepath.Join(absDataDir, "companies_tse.json")),
		RemoteBaseURL:   getEnv("TRADEBOOK_REMOTE_URL", ""),
		RemoteAPIKey:    getEnv("TRADEBOOK_REMOTE_API_KEY", ""),
		AccountID:       getEnv("TRADEBOOK_ACCOUNT_ID", ""),
		SyncInterval:    getEnv("TRADEBOOK_SYNC_INTERVAL", "@every 5m"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// UpdateFromSettings overlays configuration from the settings database.
// Called after the database is initialized; non-empty settings values
// take precedence over environment variables.
func (c *Config) UpdateFromSettings(settingsRepo *settings.Repository) error {
	accountID, err := settingsRepo.Get("account_id")
	if err != nil {
		return fmt.Errorf("failed to get account_id from settings: %w", err)
	}
	if accountID != nil && *accountID != "" {
		c.AccountID = *accountID
	}

	apiKey, err := settingsRepo.Get("remote_api_key")
	if err != nil {
		return fmt.Errorf("failed to get remote_api_key from settings: %w", err)
	}
	if apiKey != nil && *apiKey != "" {
		c.RemoteAPIKey = *apiKey
	}

	return nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	// Remote credentials are optional: without them the app runs
	// local-only and sync stays disabled.
	return nil
}

// SyncEnabled reports whether remote sync is configured.
func (c *Config) SyncEnabled() bool {
	return c.RemoteBaseURL != "" && c.AccountID != ""
}

// CurrentAccountID implements the authenticator used by the sync engine.
func (c *Config) CurrentAccountID() (string, bool) {
	if c.AccountID == "" {
		return "", false
	}
	return c.AccountID, true
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
