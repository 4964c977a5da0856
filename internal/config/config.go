package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"peka/internal/core"
	"peka/internal/log"
)

// DefaultIngestLagDays is how many days behind today the daily ingestion runs.
// The provider needs time to settle transactions before they show up as confirmed.
const DefaultIngestLagDays = 2

type Config struct {
	// Provider account
	PekaEmail    string
	PekaPassword string
	PekaBaseURL  string

	// Database
	SQLiteDBPath string

	// AMQP (summary notifications, optional)
	AMQPURL         string
	AMQPExchange    string
	AMQPQueue       string
	NotifyEmailTo   string
	NotifyEmailFrom string

	// Google Sheets (summary export, optional)
	GoogleSpreadsheetID      string
	GoogleSummarySheetName   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Jobs
	IngestLagDays   int
	MigrationMonths int
	SummaryLocale   string
	Timezone        string

	LogLevel string
}

func Load() *Config {
	cfg := &Config{
		PekaEmail:    getEnv("PEKA_EMAIL", ""),
		PekaPassword: getEnv("PEKA_PASSWORD", ""),
		PekaBaseURL:  getEnv("PEKA_BASE_URL", "https://www.peka.poznan.pl"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/peka.db"),

		AMQPURL:         getEnv("AMQP_URL", ""),
		AMQPExchange:    getEnv("AMQP_EXCHANGE", "peka"),
		AMQPQueue:       getEnv("AMQP_QUEUE", "summary_notifications"),
		NotifyEmailTo:   getEnv("NOTIFY_EMAIL_TO", ""),
		NotifyEmailFrom: getEnv("NOTIFY_EMAIL_FROM", ""),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSummarySheetName:   getEnv("GOOGLE_SUMMARY_SHEET_NAME", "Summaries"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")),

		IngestLagDays:   getEnvInt("INGEST_LAG_DAYS", DefaultIngestLagDays),
		MigrationMonths: getEnvInt("MIGRATION_MONTHS", 12),
		SummaryLocale:   getEnv("SUMMARY_LOCALE", string(core.LocalePL)),
		Timezone:        getEnv("TIMEZONE", "Europe/Warsaw"),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Provider credentials
	if strings.TrimSpace(c.PekaEmail) == "" {
		errors = append(errors, "PEKA_EMAIL is required")
	} else if _, err := mail.ParseAddress(c.PekaEmail); err != nil {
		errors = append(errors, fmt.Sprintf("invalid PEKA_EMAIL '%s': %v", c.PekaEmail, err))
	}
	if c.PekaPassword == "" {
		errors = append(errors, "PEKA_PASSWORD is required")
	}
	if parsedURL, err := url.Parse(c.PekaBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid provider URL '%s': %v", c.PekaBaseURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid provider URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	// SQLite
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		// Check if directory exists or can be created
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// AMQP is optional; when set it must be usable
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.NotifyEmailTo == "" {
			errors = append(errors, "NOTIFY_EMAIL_TO is required when AMQP URL is provided")
		}
	}
	for key, addr := range map[string]string{"NOTIFY_EMAIL_TO": c.NotifyEmailTo, "NOTIFY_EMAIL_FROM": c.NotifyEmailFrom} {
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': %v", key, addr, err))
		}
	}

	// Google Sheets export is optional
	if c.GoogleSpreadsheetID != "" {
		if c.GoogleSummarySheetName == "" {
			errors = append(errors, "Google summary sheet name is required when GOOGLE_SPREADSHEET_ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets export")
		}
		if c.GoogleServiceAccountFile != "" && c.GoogleServiceAccountJSON == "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	// Jobs
	if c.IngestLagDays < 0 {
		errors = append(errors, fmt.Sprintf("invalid ingest lag %d: must not be negative", c.IngestLagDays))
	} else if c.IngestLagDays > 31 {
		errors = append(errors, fmt.Sprintf("invalid ingest lag %d: must be at most 31 days", c.IngestLagDays))
	}
	if c.MigrationMonths < 1 {
		errors = append(errors, fmt.Sprintf("invalid migration months %d: must be at least 1", c.MigrationMonths))
	} else if c.MigrationMonths > 24 {
		errors = append(errors, fmt.Sprintf("invalid migration months %d: must be at most 24", c.MigrationMonths))
	}
	if _, err := core.ParseLocale(c.SummaryLocale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid summary locale: %v (supported: %v)", err, core.SupportedLocales()))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("invalid timezone '%s': %v", c.Timezone, err))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level: %v", err))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Location returns the configured timezone; Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Locale returns the configured summary locale, defaulting to Polish.
func (c *Config) Locale() core.Locale {
	l, err := core.ParseLocale(c.SummaryLocale)
	if err != nil {
		return core.LocalePL
	}
	return l
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
