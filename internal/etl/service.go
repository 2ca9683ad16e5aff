// Package etl orchestrates one pipeline run: extract the three input
// workbooks, run the report transformation, export the monthly workbook,
// and append the rows to the history store.
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"trainkpi/internal/etl/metrics"
	"trainkpi/internal/extract"
	"trainkpi/internal/history"
	"trainkpi/internal/report"
	"trainkpi/pkg/requestcontext"
)

// Exporter writes the formatted monthly workbook.
type Exporter interface {
	Export(rows []report.Row, month string) (string, error)
}

// Service runs the batch pipeline. The history store and exporter are
// optional: the dashboard's live mode computes without persisting.
type Service struct {
	logger    *slog.Logger
	inputsDir string
	exporter  Exporter
	store     history.Store
	metrics   *metrics.Metrics
}

// Result summarizes a completed run.
type Result struct {
	Rows         []report.Row
	Month        string
	WorkbookPath string
}

func New(logger *slog.Logger, inputsDir string, exporter Exporter, store history.Store, m *metrics.Metrics) *Service {
	return &Service{
		logger:    logger,
		inputsDir: inputsDir,
		exporter:  exporter,
		store:     store,
		metrics:   m,
	}
}

// Compute extracts the inputs and builds the report rows without side
// effects. The reference date comes from the context (requestcontext.Now),
// truncated to a calendar date.
func (s *Service) Compute(ctx context.Context) ([]report.Row, error) {
	return s.compute(ctx, dateOnly(requestcontext.Now(ctx)))
}

func (s *Service) compute(ctx context.Context, asOf time.Time) ([]report.Row, error) {
	inputs, err := extract.ReadInputs(s.inputsDir)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "inputs extracted",
		"roster_rows", len(inputs.Roster),
		"log_rows", len(inputs.Log),
		"goal_rows", len(inputs.Goals),
	)

	rows, err := report.Build(inputs, asOf)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Run executes the full pipeline. With replace set, the report month's
// prior history rows are replaced instead of appended to.
func (s *Service) Run(ctx context.Context, replace bool) (Result, error) {
	start := time.Now()
	result, err := s.run(ctx, replace)
	if err != nil {
		s.metrics.RecordRun("error", time.Since(start))
		return Result{}, err
	}
	s.metrics.RecordRun("ok", time.Since(start))
	return result, nil
}

func (s *Service) run(ctx context.Context, replace bool) (Result, error) {
	// One clock read per run: the month stamp must agree with the
	// aggregation date even when the run straddles midnight.
	asOf := dateOnly(requestcontext.Now(ctx))
	rows, err := s.compute(ctx, asOf)
	if err != nil {
		return Result{}, err
	}
	month := report.MonthLabel(asOf)

	result := Result{Rows: rows, Month: month}

	if s.exporter != nil {
		path, err := s.exporter.Export(rows, month)
		if err != nil {
			return Result{}, fmt.Errorf("export workbook: %w", err)
		}
		result.WorkbookPath = path
		s.logger.InfoContext(ctx, "workbook exported", "path", path)
	}

	if s.store != nil {
		if replace {
			err = s.store.ReplaceMonth(ctx, month, rows)
		} else {
			err = s.store.Append(ctx, rows)
		}
		if err != nil {
			return Result{}, fmt.Errorf("persist history: %w", err)
		}
		s.metrics.AddRowsAppended(len(rows))
		s.logger.InfoContext(ctx, "history persisted",
			"report_month", month,
			"rows", len(rows),
			"replace", replace,
		)
	}

	return result, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
