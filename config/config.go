package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Source kinds accepted by SOURCE_KIND.
const (
	SourceHTTP     = "http"
	SourcePostgres = "postgres"
)

// DefaultSourceURL is the CoinDesk historical close endpoint.
const DefaultSourceURL = "https://api.coindesk.com/v1/bpi/historical/close.json"

// Config holds the full application configuration loaded from environment variables or .env file.
//
// Example ENV equivalent:
//
//	SERVER_PORT=8080
//	POSTGRES_HOST=localhost
//	POSTGRES_PORT=5432
//	POSTGRES_USER=admin
//	POSTGRES_PASSWORD=secret
//	POSTGRES_DB=bpipulse
//	POSTGRES_SSLMODE=disable
//	SOURCE_KIND=http
//	SOURCE_URL=https://api.coindesk.com/v1/bpi/historical/close.json
//	SOURCE_TIMEOUT=10s
//	SOURCE_RETRIES=3
type Config struct {
	Server   ServerConfig   // HTTP server configuration
	Postgres PostgresConfig // PostgreSQL connection settings
	Source   SourceConfig   // Where price history is read from in api mode
}

// ServerConfig holds HTTP server settings such as the port to listen on.
type ServerConfig struct {
	Port string // The TCP port the HTTP server will listen on (e.g., "8080")
}

// PostgresConfig defines connection details for PostgreSQL.
//
// URL is the computed DSN used by database/sql to connect.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	URL      string
}

// SourceConfig selects and tunes the price history source.
//
// Fields:
//   - Kind: "http" (remote API) or "postgres" (points stored by ingest mode).
//   - URL: base URL of the remote API; start/end are appended as query params.
//   - Timeout: per-attempt HTTP timeout.
//   - Retries: max HTTP attempts (transport errors and 5xx are retried).
type SourceConfig struct {
	Kind    string
	URL     string
	Timeout time.Duration
	Retries int
}

// AppConfig is the globally accessible configuration instance.
//
// It is populated once via LoadConfig() and used throughout the application.
var AppConfig Config

// LoadConfig initializes the global AppConfig by reading from .env file
// or directly from environment variables.
//
// Precedence (from lowest to highest):
//  1. Defaults set in this function.
//  2. Values from .env file (if present).
//  3. Environment variables.
//
// If required variables are missing, validateConfig() terminates the app.
func LoadConfig() {
	viper.SetDefault("SERVER_PORT", "8080")

	viper.SetDefault("POSTGRES_HOST", "localhost")
	viper.SetDefault("POSTGRES_PORT", 5432)
	viper.SetDefault("POSTGRES_USER", "postgres")
	viper.SetDefault("POSTGRES_PASSWORD", "postgres")
	viper.SetDefault("POSTGRES_DB", "bpipulse")
	viper.SetDefault("POSTGRES_SSLMODE", "disable")

	viper.SetDefault("SOURCE_KIND", SourceHTTP)
	viper.SetDefault("SOURCE_URL", DefaultSourceURL)
	viper.SetDefault("SOURCE_TIMEOUT", "10s")
	viper.SetDefault("SOURCE_RETRIES", 3)

	// Optionally read from .env if present (common in local dev)
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig() // ignore error if no .env

	viper.AutomaticEnv()

	AppConfig = Config{
		Server: ServerConfig{
			Port: viper.GetString("SERVER_PORT"),
		},
		Postgres: PostgresConfig{
			Host:     viper.GetString("POSTGRES_HOST"),
			Port:     viper.GetInt("POSTGRES_PORT"),
			User:     viper.GetString("POSTGRES_USER"),
			Password: viper.GetString("POSTGRES_PASSWORD"),
			DBName:   viper.GetString("POSTGRES_DB"),
			SSLMode:  viper.GetString("POSTGRES_SSLMODE"),
		},
		Source: SourceConfig{
			Kind:    strings.ToLower(strings.TrimSpace(viper.GetString("SOURCE_KIND"))),
			URL:     viper.GetString("SOURCE_URL"),
			Timeout: viper.GetDuration("SOURCE_TIMEOUT"),
			Retries: viper.GetInt("SOURCE_RETRIES"),
		},
	}

	AppConfig.Postgres.URL = DSN(AppConfig.Postgres)

	validateConfig()
}

// DSN builds the postgres:// connection string for cfg.
func DSN(cfg PostgresConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.SSLMode,
	)
}

// validateConfig ensures required variables are present and terminates
// the application with log.Fatalf if any is missing or invalid.
func validateConfig() {
	if missing := missingFields(AppConfig); len(missing) > 0 {
		log.Fatalf("missing or invalid environment variables: %v\n", missing)
	}
}

func missingFields(cfg Config) []string {
	var missing []string

	if cfg.Server.Port == "" {
		missing = append(missing, "SERVER_PORT")
	}
	if cfg.Postgres.Host == "" {
		missing = append(missing, "POSTGRES_HOST")
	}
	if cfg.Postgres.Port == 0 {
		missing = append(missing, "POSTGRES_PORT")
	}
	if cfg.Postgres.User == "" {
		missing = append(missing, "POSTGRES_USER")
	}
	if cfg.Postgres.Password == "" {
		missing = append(missing, "POSTGRES_PASSWORD")
	}
	if cfg.Postgres.DBName == "" {
		missing = append(missing, "POSTGRES_DB")
	}
	switch cfg.Source.Kind {
	case SourceHTTP:
		if cfg.Source.URL == "" {
			missing = append(missing, "SOURCE_URL")
		}
	case SourcePostgres:
	default:
		missing = append(missing, "SOURCE_KIND")
	}
	if cfg.Source.Timeout <= 0 {
		missing = append(missing, "SOURCE_TIMEOUT")
	}

	return missing
}
