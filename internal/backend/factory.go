package backend

import (
	"context"
	"fmt"

	"peka/internal/amqp"
	"peka/internal/log"
	"peka/internal/peka"
	gsheet "peka/internal/sheets/google"
	"peka/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new runtime factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// Open implements Factory.Open. Storage is required; the broker and the Sheets
// client are optional and a failure to create either only disables it.
func (f *DefaultFactory) Open(ctx context.Context, config Config) (*Runtime, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid backend config: %w", err)
	}

	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	version, dirty, err := storage.SchemaVersion(config.SQLiteDBPath)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to read schema version: %w", err)
	}

	rt := &Runtime{
		Store:    repo,
		Provider: peka.NewClient(config.PekaBaseURL, config.PekaEmail, config.PekaPassword, nil),
	}
	rt.AddCleanup(repo.Close)

	if config.NotificationsEnabled() {
		amqpClient, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without notifications", log.FieldError, err)
		} else {
			rt.Publisher = amqpClient
			rt.AddCleanup(amqpClient.Close)
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	if config.ExportEnabled() {
		sheetsClient, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   config.GoogleSpreadsheetID,
			SheetName:       config.GoogleSummarySheetName,
			CredentialsJSON: config.GoogleServiceAccountJSON,
			CredentialsFile: config.GoogleServiceAccountFile,
		})
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize Google Sheets client, continuing without export", log.FieldError, err)
		} else {
			rt.Exporter = sheetsClient
		}
	}

	f.logger.InfoContext(ctx, "Initialized runtime",
		"db_path", config.SQLiteDBPath,
		"schema_version", version,
		"schema_dirty", dirty,
		"amqp_enabled", rt.Publisher != nil,
		"sheets_enabled", rt.Exporter != nil)

	return rt, nil
}
