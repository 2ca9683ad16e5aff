package etl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trainkpi/internal/export"
	"trainkpi/internal/history"
	"trainkpi/pkg/kpierrors"
	"trainkpi/pkg/requestcontext"
)

var asOf = time.Date(2025, time.October, 28, 0, 0, 0, 0, time.UTC)

func writeWorkbook(t *testing.T, path string, rows [][]any) {
	t.Helper()
	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)
	for r, row := range rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			require.NoError(t, err)
			require.NoError(t, file.SetCellValue(sheet, cell, value))
		}
	}
	require.NoError(t, file.SaveAs(path))
}

func writeInputs(t *testing.T, dir string) {
	t.Helper()
	writeWorkbook(t, filepath.Join(dir, "Employee_Roster.xlsx"), [][]any{
		{"Employee_ID", "Department"},
		{"E1", "Dept A"},
		{"E2", "Dept B"},
	})
	writeWorkbook(t, filepath.Join(dir, "Training_Log_2025.xlsx"), [][]any{
		{"Employee_ID", "Course_Date", "Duration_Hours"},
		{"E1", "2025-10-10", 5.0},
		// date-typed cell, as Excel itself authors them
		{"E1", time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), 3.0},
		{"E2", "2024-11-11", 8.0},
	})
	writeWorkbook(t, filepath.Join(dir, "Department_Goals.xlsx"), [][]any{
		{"Department", "Target_Man_Hours_YTD"},
		{"Dept A", 100.0},
		{"Dept B", 40.0},
	})
}

func testService(t *testing.T, inputsDir string, store history.Store) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	exporter := export.New(filepath.Join(t.TempDir(), "outputs"))
	return New(logger, inputsDir, exporter, store, nil)
}

func TestServiceRun(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	store := history.NewMemoryStore()
	svc := testService(t, dir, store)
	ctx := requestcontext.WithTime(context.Background(), asOf)

	result, err := svc.Run(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, "2025-10", result.Month)
	require.Len(t, result.Rows, 2)

	deptA := result.Rows[0]
	assert.Equal(t, "Dept A", deptA.Department)
	assert.Equal(t, 8.0, deptA.YTDHours)
	assert.Equal(t, 5.0, deptA.MTDHours)
	assert.Equal(t, 0.08, deptA.AchievementRatio)

	deptB := result.Rows[1]
	assert.Zero(t, deptB.YTDHours, "prior-year hours must not count")

	_, err = os.Stat(result.WorkbookPath)
	require.NoError(t, err)
	assert.Equal(t, "Monthly_KPI_Summary_2025-10.xlsx", filepath.Base(result.WorkbookPath))

	persisted, err := store.ListByMonth(ctx, "2025-10")
	require.NoError(t, err)
	assert.Len(t, persisted, 2)
}

func TestServiceRun_RerunAppendsByDefault(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	store := history.NewMemoryStore()
	svc := testService(t, dir, store)
	ctx := requestcontext.WithTime(context.Background(), asOf)

	_, err := svc.Run(ctx, false)
	require.NoError(t, err)
	second, err := svc.Run(ctx, false)
	require.NoError(t, err)

	persisted, err := store.ListByMonth(ctx, "2025-10")
	require.NoError(t, err)
	assert.Len(t, persisted, 4, "default rerun appends duplicate rows")

	// Computed rows themselves are identical across reruns.
	first, err := svc.Run(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, second.Rows, first.Rows)
}

func TestServiceRun_ReplaceUpsertsMonth(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	store := history.NewMemoryStore()
	svc := testService(t, dir, store)
	ctx := requestcontext.WithTime(context.Background(), asOf)

	_, err := svc.Run(ctx, false)
	require.NoError(t, err)
	_, err = svc.Run(ctx, true)
	require.NoError(t, err)

	persisted, err := store.ListByMonth(ctx, "2025-10")
	require.NoError(t, err)
	assert.Len(t, persisted, 2, "-replace keeps one row set for the month")
}

func TestServiceRun_MonthMatchesRowStamps(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	store := history.NewMemoryStore()
	svc := testService(t, dir, store)
	// Year boundary: the run's month stamp and the rows' report month
	// must come from the same reference date.
	newYearsEve := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), newYearsEve)

	result, err := svc.Run(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, "2025-12", result.Month)
	for _, row := range result.Rows {
		assert.Equal(t, result.Month, row.ReportMonth)
	}
}

func TestServiceRun_MissingInputFailsFast(t *testing.T) {
	dir := t.TempDir() // no workbooks at all
	svc := testService(t, dir, history.NewMemoryStore())
	ctx := requestcontext.WithTime(context.Background(), asOf)

	_, err := svc.Run(ctx, false)
	require.Error(t, err)
	assert.True(t, kpierrors.Is(err, kpierrors.CodeNotFound))
}

func TestServiceCompute_NoSideEffects(t *testing.T) {
	dir := t.TempDir()
	writeInputs(t, dir)
	store := history.NewMemoryStore()
	svc := testService(t, dir, store)
	ctx := requestcontext.WithTime(context.Background(), asOf)

	rows, err := svc.Compute(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, err = store.ListAll(ctx)
	assert.ErrorIs(t, err, history.ErrNoHistory)
}
