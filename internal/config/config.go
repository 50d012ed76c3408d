package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"cozylogic-backend/internal/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	// OpenAI
	OpenAIAPIKey            string
	OpenAIBaseURL           string
	ImageModel              string
	TextModel               string
	OpenAIMaxRetries        int
	OpenAIRequestsPerSecond float64

	// Supabase
	SupabaseURL            string
	SupabaseServiceRoleKey string
	SupabaseJWTSecret      string
	InputsBucket           string
	OutputsBucket          string
	SignedURLTTL           time.Duration

	// Database
	DatabaseURL string

	// Pipeline
	ExternalCallTimeout time.Duration
	PruneHardDelete     bool
	DevBypassLimits     bool

	// Server
	Port               string
	Environment        string
	CORSAllowedOrigins []string
	LogHashSalt        string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	return load((*Config).Validate)
}

// LoadOperator is Load for tools that only touch the database and storage.
func LoadOperator() (*Config, error) {
	return load((*Config).ValidateStorage)
}

func load(validate func(*Config) error) (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := FromEnv()
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a Config from the environment without validating it.
func FromEnv() *Config {
	cfg := &Config{
		OpenAIAPIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:           strings.TrimRight(getEnv("OPENAI_BASE_URL", "https://api.openai.com"), "/"),
		ImageModel:              getEnv("COZYLOGIC_IMAGE_MODEL", "gpt-image-1-mini"),
		TextModel:               getEnv("COZYLOGIC_TEXT_MODEL", "gpt-4o-mini"),
		OpenAIMaxRetries:        getEnvInt("OPENAI_MAX_RETRIES", 2),
		OpenAIRequestsPerSecond: getEnvFloat("OPENAI_REQUESTS_PER_SECOND", 5),

		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
		SupabaseJWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
		InputsBucket:           getEnv("STORAGE_BUCKET_INPUTS", "cozylogic-inputs"),
		OutputsBucket:          getEnv("STORAGE_BUCKET_OUTPUTS", "cozylogic-outputs"),
		SignedURLTTL:           time.Duration(getEnvInt("SIGNED_URL_TTL_SECONDS", 300)) * time.Second,

		DatabaseURL: getEnv("DATABASE_URL", ""),

		ExternalCallTimeout: time.Duration(getEnvInt("EXTERNAL_CALL_TIMEOUT_SECONDS", 120)) * time.Second,
		PruneHardDelete:     getEnvBool("PRUNE_HARD_DELETE", false),
		DevBypassLimits:     getEnvBool("DEV_BYPASS_LIMITS", false),

		Port:               getEnv("PORT", "8080"),
		Environment:        getEnv("ENVIRONMENT", "development"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		LogHashSalt:        getEnv("LOG_HASH_SALT", ""),
	}

	// The quota bypass is never honored in production.
	if cfg.IsProduction() {
		cfg.DevBypassLimits = false
	}
	return cfg
}

// IsProduction uses the same rule as the logger, so "prod" and
// "production" both count.
func (c *Config) IsProduction() bool {
	return logger.IsProduction(c.Environment)
}

// ValidateStorage checks the settings needed to reach Postgres and storage.
func (c *Config) ValidateStorage() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceRoleKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_ROLE_KEY is required")
	}
	return nil
}

func (c *Config) Validate() error {
	if err := c.ValidateStorage(); err != nil {
		return err
	}
	if c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required")
	}
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required")
	}
	if c.ExternalCallTimeout <= 0 {
		return fmt.Errorf("EXTERNAL_CALL_TIMEOUT_SECONDS must be positive")
	}
	if c.OpenAIMaxRetries < 0 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must not be negative")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if v, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if v, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return v
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
