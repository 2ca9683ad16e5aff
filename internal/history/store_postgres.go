package history

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"trainkpi/internal/report"
)

const schema = `
CREATE TABLE IF NOT EXISTS kpi_history (
	id                UUID PRIMARY KEY,
	department        TEXT NOT NULL,
	target_hours      DOUBLE PRECISION NOT NULL,
	ytd_hours         DOUBLE PRECISION NOT NULL,
	mtd_hours         DOUBLE PRECISION NOT NULL,
	achievement_ratio DOUBLE PRECISION,
	report_month      TEXT NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_kpi_history_month ON kpi_history (report_month);
`

// PostgresStore persists KPI history in PostgreSQL. Non-finite achievement
// ratios (zero-target departments) are stored as NULL and read back as NaN.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects via the pgx stdlib driver, verifies the
// connection, and ensures the schema exists.
func OpenPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store := &PostgresStore{db: db}
	if err := store.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgres wraps an existing connection pool and ensures the schema
// exists. Used by tests that manage their own database lifecycle.
func NewPostgres(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	store := &PostgresStore{db: db}
	if err := store.migrate(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate kpi_history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }

func (s *PostgresStore) Append(ctx context.Context, rows []report.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	return nil
}

func (s *PostgresStore) ReplaceMonth(ctx context.Context, month string, rows []report.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM kpi_history WHERE report_month = $1`, month); err != nil {
		return fmt.Errorf("delete month %s: %w", month, err)
	}
	if err := insertRows(ctx, tx, rows); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, rows []report.Row) error {
	const insert = `
		INSERT INTO kpi_history
			(id, department, target_hours, ytd_hours, mtd_hours, achievement_ratio, report_month)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, insert,
			uuid.New(),
			row.Department,
			row.TargetHours,
			row.YTDHours,
			row.MTDHours,
			nullRatio(row.AchievementRatio),
			row.ReportMonth,
		); err != nil {
			return fmt.Errorf("insert history row for %s: %w", row.Department, err)
		}
	}
	return nil
}

func (s *PostgresStore) ListMonths(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT report_month FROM kpi_history ORDER BY report_month`)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var month string
		if err := rows.Scan(&month); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		months = append(months, month)
	}
	return months, rows.Err()
}

func (s *PostgresStore) ListByMonth(ctx context.Context, month string) ([]report.Row, error) {
	return s.query(ctx,
		`SELECT department, target_hours, ytd_hours, mtd_hours, achievement_ratio, report_month
		 FROM kpi_history WHERE report_month = $1 ORDER BY created_at, department`, month)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]report.Row, error) {
	return s.query(ctx,
		`SELECT department, target_hours, ytd_hours, mtd_hours, achievement_ratio, report_month
		 FROM kpi_history ORDER BY report_month, created_at, department`)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]report.Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var result []report.Row
	for rows.Next() {
		var row report.Row
		var ratio sql.NullFloat64
		if err := rows.Scan(&row.Department, &row.TargetHours, &row.YTDHours,
			&row.MTDHours, &ratio, &row.ReportMonth); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if ratio.Valid {
			row.AchievementRatio = ratio.Float64
		} else {
			row.AchievementRatio = math.NaN()
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, ErrNoHistory
	}
	return result, nil
}

func nullRatio(ratio float64) sql.NullFloat64 {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: ratio, Valid: true}
}
