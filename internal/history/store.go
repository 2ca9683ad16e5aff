// Package history persists KPI report rows across runs. The table is
// append-only by default: re-running a month adds rows rather than
// replacing them, unless the caller explicitly opts into ReplaceMonth.
package history

import (
	"context"

	"trainkpi/internal/report"
	"trainkpi/pkg/kpierrors"
)

// ErrNoHistory is returned when a query matches no persisted rows.
var ErrNoHistory = kpierrors.New(kpierrors.CodeNotFound, "no history rows")

// Store is the persistence interface for KPI report history.
type Store interface {
	// Append adds the rows as a new batch; prior months are never touched.
	Append(ctx context.Context, rows []report.Row) error
	// ReplaceMonth atomically deletes the month's rows and appends the
	// new batch. Backs the report CLI's -replace flag.
	ReplaceMonth(ctx context.Context, month string, rows []report.Row) error
	// ListMonths returns the distinct report months, oldest first.
	ListMonths(ctx context.Context) ([]string, error)
	// ListByMonth returns the rows for one report month.
	ListByMonth(ctx context.Context, month string) ([]report.Row, error)
	// ListAll returns every persisted row, oldest month first.
	ListAll(ctx context.Context) ([]report.Row, error)
}
