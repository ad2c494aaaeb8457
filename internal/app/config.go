package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	SheetIdentifier string
	CredentialsFile string
	CredentialsJSON string
	UserEmail       string
	BigQueryProject string
	BigQueryDataset string
}

// HasBigQuery reports whether a BigQuery export target is configured.
func (c *Config) HasBigQuery() bool {
	return c.BigQueryProject != "" && c.BigQueryDataset != ""
}

// SetupEnvironment loads .env file and configures zerolog output and log level.
func SetupEnvironment() {
	// Load .env file if it exists
	err := godotenv.Load()

	// Configure logging
	if os.Getenv("ENV") == "production" {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = log.Output(os.Stderr)
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	levelStr := strings.ToLower(os.Getenv("LOGLEVEL"))
	switch levelStr {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "":
		// Default based on environment
		if os.Getenv("ENV") == "production" {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Warn().Msgf("Unknown LOGLEVEL '%s', defaulting to info.", levelStr)
	}

	// wait until now to report on the .env file so we have the chance to set up logging first
	if err == nil {
		log.Debug().Msg("Loaded environment variables from .env file.")
	} else {
		log.Debug().Msg("No .env file found or error loading .env file; proceeding with existing environment variables.")
	}
}

// LoadConfig loads configuration from environment variables. Exactly one
// credential source is required: a service-account key file path or an
// in-memory JSON payload.
func LoadConfig() (*Config, error) {
	identifier := os.Getenv("SHEET_IDENTIFIER")
	if identifier == "" {
		return nil, fmt.Errorf("SHEET_IDENTIFIER environment variable is required")
	}

	credentialsFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
	credentialsJSON := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	if credentialsFile == "" && credentialsJSON == "" {
		return nil, fmt.Errorf("either GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON environment variable is required")
	}

	return &Config{
		SheetIdentifier: identifier,
		CredentialsFile: credentialsFile,
		CredentialsJSON: credentialsJSON,
		UserEmail:       os.Getenv("USER_EMAIL"),
		BigQueryProject: os.Getenv("BQ_PROJECT"),
		BigQueryDataset: os.Getenv("BQ_DATASET"),
	}, nil
}
