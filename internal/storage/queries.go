package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is the subset of *sql.DB and *sql.Tx the queries need.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

type JourneyRow struct {
	ID              string
	TransactionDate string
	Price           float64
	CreatedAt       string
}

const insertJourneysPrefix = `INSERT INTO peka_journeys (id, transaction_date, price, created_at) VALUES `

// InsertJourneys writes all rows in one multi-row statement.
func (q *Queries) InsertJourneys(ctx context.Context, rows []JourneyRow) error {
	if len(rows) == 0 {
		return nil
	}
	placeholders := make([]string, len(rows))
	args := make([]any, 0, len(rows)*4)
	for i, r := range rows {
		placeholders[i] = "(?, ?, ?, ?)"
		args = append(args, r.ID, r.TransactionDate, r.Price, r.CreatedAt)
	}
	_, err := q.db.ExecContext(ctx, insertJourneysPrefix+strings.Join(placeholders, ", "), args...)
	return err
}

const sumPrices = `SELECT COALESCE(SUM(price), 0) FROM peka_journeys WHERE transaction_date BETWEEN ? AND ?`

func (q *Queries) SumPrices(ctx context.Context, from, to string) (float64, error) {
	var total float64
	err := q.db.QueryRowContext(ctx, sumPrices, from, to).Scan(&total)
	return total, err
}

const countJourneys = `SELECT COUNT(*) FROM peka_journeys WHERE transaction_date BETWEEN ? AND ?`

func (q *Queries) CountJourneys(ctx context.Context, from, to string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countJourneys, from, to).Scan(&n)
	return n, err
}

type SummaryRow struct {
	ID        string
	FromDay   string
	ToDay     string
	Sum       float64
	Balance   sql.NullFloat64
	CreatedAt string
}

const insertMonthlySummary = `INSERT INTO monthly_summaries (id, from_day, to_day, sum, created_at) VALUES (?, ?, ?, ?, ?)`

func (q *Queries) InsertMonthlySummary(ctx context.Context, r SummaryRow) error {
	_, err := q.db.ExecContext(ctx, insertMonthlySummary, r.ID, r.FromDay, r.ToDay, r.Sum, r.CreatedAt)
	return err
}

const listMonthlySummaries = `SELECT id, from_day, to_day, sum, created_at FROM monthly_summaries ORDER BY from_day DESC`

func (q *Queries) ListMonthlySummaries(ctx context.Context) ([]SummaryRow, error) {
	rows, err := q.db.QueryContext(ctx, listMonthlySummaries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SummaryRow
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(&r.ID, &r.FromDay, &r.ToDay, &r.Sum, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteOngoingMonthSummaries = `DELETE FROM ongoing_month_summaries`

func (q *Queries) DeleteOngoingMonthSummaries(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteOngoingMonthSummaries)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const insertOngoingMonthSummary = `INSERT INTO ongoing_month_summaries (id, from_day, to_day, sum, balance, created_at) VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertOngoingMonthSummary(ctx context.Context, r SummaryRow) error {
	_, err := q.db.ExecContext(ctx, insertOngoingMonthSummary, r.ID, r.FromDay, r.ToDay, r.Sum, r.Balance, r.CreatedAt)
	return err
}

const getOngoingMonthSummary = `SELECT id, from_day, to_day, sum, balance, created_at FROM ongoing_month_summaries ORDER BY created_at DESC LIMIT 1`

func (q *Queries) GetOngoingMonthSummary(ctx context.Context) (SummaryRow, error) {
	var r SummaryRow
	err := q.db.QueryRowContext(ctx, getOngoingMonthSummary).
		Scan(&r.ID, &r.FromDay, &r.ToDay, &r.Sum, &r.Balance, &r.CreatedAt)
	return r, err
}
