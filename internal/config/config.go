// Package config provides application configuration with multi-source priority.
//
// Sources, highest to lowest:
//  1. Environment variables (GEMINI_API_KEY, DATABASE_URL, MITRA_*)
//  2. Config file (~/.mitra/config.yaml, or ./config.yaml)
//  3. Defaults
//
// Sensitive values (API key, database password) are masked in MarshalJSON
// so a Config can be logged safely.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates GEMINI_API_KEY is not set.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the model name is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidSheetURL indicates a record feed URL is malformed.
	ErrInvalidSheetURL = errors.New("invalid sheet URL")

	// ErrInvalidMatchOption indicates a threshold or result limit is out of range.
	ErrInvalidMatchOption = errors.New("invalid match option")

	// ErrInvalidTimeout indicates a timeout value is out of range.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidHTTPAddr indicates the serve address is malformed.
	ErrInvalidHTTPAddr = errors.New("invalid HTTP address")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// DefaultModelName is the Gemini model used for fallback generation.
const DefaultModelName = "gemini-2.5-flash"

// Config stores application configuration.
// SECURITY: sensitive fields are masked in MarshalJSON; update it when
// adding new secrets.
type Config struct {
	// Generation
	ModelName       string `mapstructure:"model_name" json:"model_name"`
	GeminiAPIKey    string `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON
	GenerateTimeout int    `mapstructure:"generate_timeout_seconds" json:"generate_timeout_seconds"`

	// Record feeds (published-sheet CSV endpoints)
	FAQSheetURL   string `mapstructure:"faq_sheet_url" json:"faq_sheet_url"`
	VideoSheetURL string `mapstructure:"video_sheet_url" json:"video_sheet_url"`
	FeedTimeout   int    `mapstructure:"feed_timeout_seconds" json:"feed_timeout_seconds"`

	// Matching thresholds. Call sites vary these; they are configuration,
	// not constants.
	FAQMinScore     float64 `mapstructure:"faq_min_score" json:"faq_min_score"`
	FAQMaxResults   int     `mapstructure:"faq_max_results" json:"faq_max_results"`
	VideoMinScore   float64 `mapstructure:"video_min_score" json:"video_min_score"`
	VideoMaxResults int     `mapstructure:"video_max_results" json:"video_max_results"`

	// Serve mode
	HTTPAddr string `mapstructure:"http_addr" json:"http_addr"`

	// Storage. When disabled, chat history and turn logging degrade to
	// in-process logging only.
	StorageEnabled   bool   `mapstructure:"storage_enabled" json:"storage_enabled"`
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".mitra")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env carry it.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides the individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("model_name", DefaultModelName)
	viper.SetDefault("generate_timeout_seconds", 60)

	viper.SetDefault("faq_sheet_url", "")
	viper.SetDefault("video_sheet_url", "")
	viper.SetDefault("feed_timeout_seconds", 20)

	// Matching defaults mirror the chat turn: top 2 FAQs above score 1,
	// top 3 videos above score 1.
	viper.SetDefault("faq_min_score", 1.0)
	viper.SetDefault("faq_max_results", 2)
	viper.SetDefault("video_min_score", 1.0)
	viper.SetDefault("video_max_results", 3)

	viper.SetDefault("http_addr", "127.0.0.1:8311")

	viper.SetDefault("storage_enabled", false)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "mitra")
	viper.SetDefault("postgres_password", "mitra_dev_password")
	viper.SetDefault("postgres_db_name", "mitra")
	viper.SetDefault("postgres_ssl_mode", "disable")
}

// bindEnvVariables binds environment overrides explicitly.
func bindEnvVariables() {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("model_name", "MITRA_MODEL_NAME")
	mustBind("faq_sheet_url", "MITRA_FAQ_SHEET_URL")
	mustBind("video_sheet_url", "MITRA_VIDEO_SHEET_URL")
	mustBind("http_addr", "MITRA_HTTP_ADDR")
	mustBind("storage_enabled", "MITRA_STORAGE_ENABLED")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "********"

// maskSecret masks a secret for safe logging. Short secrets are fully
// masked; longer ones keep the first and last two characters for debug
// utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
func (c *Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := alias(*c)
	masked.GeminiAPIKey = maskSecret(c.GeminiAPIKey)
	masked.PostgresPassword = maskSecret(c.PostgresPassword)
	return json.Marshal(masked)
}
