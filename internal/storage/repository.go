package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"peka/internal/core"
	"peka/internal/log"

	_ "modernc.org/sqlite"
)

// insertBatchSize keeps every multi-row INSERT well below SQLite's bound-parameter limit.
const insertBatchSize = 200

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

// NewSQLiteRepository opens (creating if needed) the database file at dbPath and
// brings its schema up to date.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection: concurrent summary writers queue instead of hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewSQLiteRepositoryFromDB(db), nil
}

// NewSQLiteRepositoryFromDB wraps an already opened, migrated database.
func NewSQLiteRepositoryFromDB(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().UTC().Format(time.RFC3339Nano)
}

// InsertJourneys bulk-inserts journeys in batches. Batches are not wrapped in a
// transaction, so a duplicate id fails its batch while earlier batches stay written.
// An empty slice is a no-op.
func (r *SQLiteRepository) InsertJourneys(ctx context.Context, journeys []core.Journey) error {
	if len(journeys) == 0 {
		return nil
	}

	createdAt := r.timestamp()
	for batch := range slices.Chunk(journeys, insertBatchSize) {
		rows := make([]JourneyRow, len(batch))
		for i, j := range batch {
			rows[i] = JourneyRow{
				ID:              j.ID,
				TransactionDate: j.TransactionDate.String(),
				Price:           j.Price,
				CreatedAt:       createdAt,
			}
		}
		if err := r.queries.InsertJourneys(ctx, rows); err != nil {
			return fmt.Errorf("insert journeys: %w", err)
		}
	}

	log.FromContext(ctx).DebugContext(ctx, "Journeys saved to SQLite",
		log.FieldOperation, log.OpInsert,
		log.FieldCount, len(journeys))
	return nil
}

// SumPrices returns the total price of journeys dated within [from, to], rounded to
// two decimals; 0 when nothing matches.
func (r *SQLiteRepository) SumPrices(ctx context.Context, from, to core.Day) (float64, error) {
	total, err := r.queries.SumPrices(ctx, from.String(), to.String())
	if err != nil {
		return 0, fmt.Errorf("sum journey prices from %s to %s: %w", from, to, err)
	}
	return core.RoundPrice(total), nil
}

// CountJourneys returns how many journeys are dated within [from, to].
func (r *SQLiteRepository) CountJourneys(ctx context.Context, from, to core.Day) (int64, error) {
	n, err := r.queries.CountJourneys(ctx, from.String(), to.String())
	if err != nil {
		return 0, fmt.Errorf("count journeys from %s to %s: %w", from, to, err)
	}
	return n, nil
}

// InsertMonthlySummary stores s keyed by its month label. A second summary for the
// same label fails on the primary key.
func (r *SQLiteRepository) InsertMonthlySummary(ctx context.Context, s core.MonthlySummary) error {
	err := r.queries.InsertMonthlySummary(ctx, SummaryRow{
		ID:        s.ID,
		FromDay:   s.From.String(),
		ToDay:     s.To.String(),
		Sum:       s.Sum,
		CreatedAt: r.timestamp(),
	})
	if err != nil {
		return fmt.Errorf("insert monthly summary %q: %w", s.ID, err)
	}
	return nil
}

// ListMonthlySummaries returns every stored monthly summary, newest month first.
func (r *SQLiteRepository) ListMonthlySummaries(ctx context.Context) ([]core.MonthlySummary, error) {
	rows, err := r.queries.ListMonthlySummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list monthly summaries: %w", err)
	}

	summaries := make([]core.MonthlySummary, len(rows))
	for i, row := range rows {
		summaries[i] = row.toMonthlySummary()
	}
	return summaries, nil
}

// ClearOngoingMonthSummaries deletes every ongoing-month snapshot and reports how many
// were removed.
func (r *SQLiteRepository) ClearOngoingMonthSummaries(ctx context.Context) (int64, error) {
	n, err := r.queries.DeleteOngoingMonthSummaries(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear ongoing month summaries: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) InsertOngoingMonthSummary(ctx context.Context, s core.OngoingMonthSummary) error {
	row := SummaryRow{
		ID:        s.ID,
		FromDay:   s.From.String(),
		ToDay:     s.To.String(),
		Sum:       s.Sum,
		CreatedAt: r.timestamp(),
	}
	if s.Balance != nil {
		row.Balance = sql.NullFloat64{Float64: *s.Balance, Valid: true}
	}
	if err := r.queries.InsertOngoingMonthSummary(ctx, row); err != nil {
		return fmt.Errorf("insert ongoing month summary %q: %w", s.ID, err)
	}
	return nil
}

// GetOngoingMonthSummary returns the current snapshot, or ErrNotFound.
func (r *SQLiteRepository) GetOngoingMonthSummary(ctx context.Context) (*core.OngoingMonthSummary, error) {
	row, err := r.queries.GetOngoingMonthSummary(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ongoing month summary: %w", err)
	}

	s := &core.OngoingMonthSummary{MonthlySummary: row.toMonthlySummary()}
	if row.Balance.Valid {
		balance := row.Balance.Float64
		s.Balance = &balance
	}
	return s, nil
}

func (row SummaryRow) toMonthlySummary() core.MonthlySummary {
	createdAt, _ := time.Parse(time.RFC3339Nano, row.CreatedAt)
	return core.MonthlySummary{
		ID:        row.ID,
		From:      core.Day(row.FromDay),
		To:        core.Day(row.ToDay),
		Sum:       row.Sum,
		CreatedAt: createdAt,
	}
}
