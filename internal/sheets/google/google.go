package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"peka/internal/core"
	"peka/internal/log"
	ports "peka/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the target sheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	summarySheet  string
}

// Ensure interface conformance
var _ ports.SummaryWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account. Extra options
// are appended after the credentials.
func New(ctx context.Context, cfg Config, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	credentialsJSON, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	options := append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)

	svc, err := gsheet.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	log.FromContext(ctx).DebugContext(ctx, "Google Sheets service created",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Client {
	if sheetName == "" {
		sheetName = "Summaries"
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		summarySheet:  sheetName,
	}
}

// loadCredentials prefers inline JSON over a file path.
func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return data, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendSummary appends one row: label, from, to, sum, created at.
func (c *Client) AppendSummary(ctx context.Context, s core.MonthlySummary) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := &gsheet.ValueRange{
		Values: [][]any{{
			s.ID,
			s.From.String(),
			s.To.String(),
			s.Sum,
			createdAt.UTC().Format(time.RFC3339),
		}},
	}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, summaryRange(c.summarySheet), row).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append summary %q: %w", s.ID, err)
	}

	var updatedRange string
	if resp.Updates != nil {
		updatedRange = resp.Updates.UpdatedRange
	}
	log.FromContext(ctx).InfoContext(ctx, "Summary exported to Google Sheets",
		log.FieldOperation, log.OpExport,
		log.FieldMonth, s.ID,
		"range", updatedRange)
	return nil
}

// summaryRange quotes the sheet name so names with spaces stay valid A1 notation.
func summaryRange(sheet string) string {
	return fmt.Sprintf("'%s'!A:E", strings.ReplaceAll(sheet, "'", "''"))
}
