package extract

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trainkpi/internal/report"
	"trainkpi/pkg/kpierrors"
)

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

func TestReadRoster(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, RosterFileName)
	writeWorkbook(t, path, [][]any{
		{"Employee_ID", "Department"},
		{"E1", "Dept A"},
		{"", "ignored blank id"},
		{"E2", "Dept B"},
	})

	roster, err := ReadRoster(path)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "E1", roster[0].ID)
	assert.Equal(t, "Dept A", roster[0].Department)
}

func TestReadRoster_MissingFile(t *testing.T) {
	_, err := ReadRoster(filepath.Join(t.TempDir(), RosterFileName))
	require.Error(t, err)
	assert.True(t, kpierrors.Is(err, kpierrors.CodeNotFound))
}

func TestReadTrainingLog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Training_Log_2025.xlsx")

	t.Run("reads rows with raw dates", func(t *testing.T) {
		writeWorkbook(t, path, [][]any{
			{"Employee_ID", "Course_Date", "Duration_Hours"},
			{"E1", "2025-10-10", 5.0},
			{"E2", "2025-09-01", 2.5},
		})

		records, err := ReadTrainingLog(path)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "2025-10-10", records[0].CourseDate)
		assert.Equal(t, 5.0, records[0].DurationHours)
	})

	t.Run("date-typed cells survive as parseable serials", func(t *testing.T) {
		// Workbooks authored in Excel or by spreadsheet libraries store
		// dates as typed cells, not strings.
		writeWorkbook(t, path, [][]any{
			{"Employee_ID", "Course_Date", "Duration_Hours"},
			{"E1", time.Date(2025, time.October, 10, 0, 0, 0, 0, time.UTC), 5.0},
		})

		records, err := ReadTrainingLog(path)
		require.NoError(t, err)
		require.Len(t, records, 1)

		date, err := report.ParseCourseDate(records[0].CourseDate)
		require.NoError(t, err)
		assert.Equal(t, 2025, date.Year())
		assert.Equal(t, time.October, date.Month())
		assert.Equal(t, 10, date.Day())
	})

	t.Run("rejects non-numeric hours", func(t *testing.T) {
		writeWorkbook(t, path, [][]any{
			{"Employee_ID", "Course_Date", "Duration_Hours"},
			{"E1", "2025-10-10", "lots"},
		})

		_, err := ReadTrainingLog(path)
		require.Error(t, err)
		assert.True(t, kpierrors.Is(err, kpierrors.CodeBadInput))
	})

	t.Run("missing column fails", func(t *testing.T) {
		writeWorkbook(t, path, [][]any{
			{"Employee_ID", "Duration_Hours"},
			{"E1", 5.0},
		})

		_, err := ReadTrainingLog(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "course_date")
	})
}

func TestReadGoals_HeaderAliases(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, GoalsFileName)
	writeWorkbook(t, path, [][]any{
		{"Dept", "Target Hours"},
		{"Dept A", 100.0},
	})

	goals, err := ReadGoals(path)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Dept A", goals[0].Department)
	assert.Equal(t, 100.0, goals[0].TargetHours)
}

func TestReadInputs(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, RosterFileName), [][]any{
		{"Employee_ID", "Department"},
		{"E1", "Dept A"},
	})
	writeWorkbook(t, filepath.Join(dir, "Training_Log_2024.xlsx"), [][]any{
		{"Employee_ID", "Course_Date", "Duration_Hours"},
		{"E1", "2024-12-01", 2.0},
	})
	writeWorkbook(t, filepath.Join(dir, "Training_Log_2025.xlsx"), [][]any{
		{"Employee_ID", "Course_Date", "Duration_Hours"},
		{"E1", "2025-10-10", 5.0},
	})
	writeWorkbook(t, filepath.Join(dir, GoalsFileName), [][]any{
		{"Department", "Target_Man_Hours_YTD"},
		{"Dept A", 100.0},
	})

	inputs, err := ReadInputs(dir)
	require.NoError(t, err)
	assert.Len(t, inputs.Roster, 1)
	assert.Len(t, inputs.Log, 2, "yearly log workbooks are concatenated")
	assert.Len(t, inputs.Goals, 1)
}

func TestReadInputs_NoTrainingLog(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, RosterFileName), [][]any{
		{"Employee_ID", "Department"},
		{"E1", "Dept A"},
	})

	_, err := ReadInputs(dir)
	require.Error(t, err)
	assert.True(t, kpierrors.Is(err, kpierrors.CodeNotFound))
}
