package backend

import (
	"fmt"

	"peka/internal/config"
)

// Config holds configuration for runtime creation
type Config struct {
	// SQLite
	SQLiteDBPath string

	// Provider account
	PekaBaseURL  string
	PekaEmail    string
	PekaPassword string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets (optional)
	GoogleSpreadsheetID      string
	GoogleSummarySheetName   string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	return Config{
		SQLiteDBPath: appConfig.SQLiteDBPath,

		PekaBaseURL:  appConfig.PekaBaseURL,
		PekaEmail:    appConfig.PekaEmail,
		PekaPassword: appConfig.PekaPassword,

		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		GoogleSpreadsheetID:      appConfig.GoogleSpreadsheetID,
		GoogleSummarySheetName:   appConfig.GoogleSummarySheetName,
		GoogleServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: appConfig.GoogleServiceAccountFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == "") {
		return fmt.Errorf("AMQP exchange and queue are required when AMQP URL is set")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		return fmt.Errorf("Google service account credentials are required when a spreadsheet is set")
	}
	return nil
}

// NotificationsEnabled reports whether a notification broker is configured.
func (c Config) NotificationsEnabled() bool { return c.AMQPURL != "" }

// ExportEnabled reports whether summaries are mirrored to Google Sheets.
func (c Config) ExportEnabled() bool { return c.GoogleSpreadsheetID != "" }

// WithoutNotifications returns a copy that does not connect to the broker.
func (c Config) WithoutNotifications() Config {
	c.AMQPURL = ""
	return c
}

// WithoutExport returns a copy that does not create a Sheets client.
func (c Config) WithoutExport() Config {
	c.GoogleSpreadsheetID = ""
	return c
}
