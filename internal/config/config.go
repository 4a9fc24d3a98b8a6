package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendCSV    = "csv"
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

// Inventory table layouts.
const (
	LayoutPerSize = "per-size"
	LayoutJoined  = "joined"
)

// Config represents the full application configuration surface.
type Config struct {
	Storage   StorageConfig
	Sheets    SheetsConfig
	Report    ReportConfig
	Server    ServerConfig
	Reporting ReportingConfig
	WhatsApp  WhatsAppConfig
	MongoDB   MongoDBConfig
	Log       LogConfig
}

// StorageConfig selects where the catalog, availability and sales tables live.
type StorageConfig struct {
	Backend string
	DataDir string
	Layout  string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// ReportConfig holds the static HTML output options.
type ReportConfig struct {
	OutputPath       string
	SearchOutputPath string
	Title            string
	ImagesDir        string
	EUSizes          bool
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// WhatsAppConfig contains credentials for the weekly summary message. Empty token disables it.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	BaseURL       string
	APIVersion    string
	RecipientID   string
	// VerifyToken enables the inbound webhook for stock queries when set.
	VerifyToken string
}

// MongoDBConfig holds settings for the profit snapshot archive. Empty URI disables it.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string
	File   string
	Format string
}

// Log formats.
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine; the environment may carry everything.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Storage: StorageConfig{
			Backend: strings.ToLower(getenvWithDefault("STORAGE_BACKEND", BackendCSV)),
			DataDir: getenvWithDefault("DATA_DIR", "."),
			Layout:  strings.ToLower(getenvWithDefault("INVENTORY_LAYOUT", LayoutPerSize)),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
		},
		Report: ReportConfig{
			OutputPath:       getenvWithDefault("REPORT_OUTPUT", "index.html"),
			SearchOutputPath: getenvWithDefault("SEARCH_OUTPUT", "search_results.html"),
			Title:            getenvWithDefault("REPORT_TITLE", "fily"),
			ImagesDir:        getenvWithDefault("IMAGES_DIR", "images"),
			EUSizes:          getenvBool("REPORT_EU_SIZES", false),
		},
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			RecipientID:   os.Getenv("WHATSAPP_REPORT_RECIPIENT"),
			VerifyToken:   os.Getenv("WHATSAPP_VERIFY_TOKEN"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "importados"),
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			File:   os.Getenv("LOG_FILE"),
			Format: getenvWithDefault("LOG_FORMAT", LogFormatJSON),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that the fields required by the enabled features are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch c.Storage.Backend {
	case BackendCSV, BackendMemory:
	case BackendSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND %q is not supported", c.Storage.Backend)
	}

	switch c.Storage.Layout {
	case LayoutPerSize, LayoutJoined:
	default:
		return fmt.Errorf("INVENTORY_LAYOUT %q is not supported", c.Storage.Layout)
	}

	if c.Report.OutputPath == "" {
		return errors.New("REPORT_OUTPUT must not be empty")
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.RecipientID == "":
			return errors.New("WHATSAPP_REPORT_RECIPIENT must be provided")
		}
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	switch c.Log.Format {
	case "", LogFormatJSON, LogFormatConsole:
	default:
		return fmt.Errorf("LOG_FORMAT %q is not supported", c.Log.Format)
	}

	return nil
}

// Enabled reports whether weekly summaries should be sent.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != ""
}

// WebhookEnabled reports whether inbound stock queries should be answered.
func (w WhatsAppConfig) WebhookEnabled() bool {
	return w.Enabled() && w.VerifyToken != ""
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
