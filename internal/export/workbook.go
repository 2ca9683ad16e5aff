// Package export writes the monthly KPI summary workbook. The achievement
// ratio is written as a percentage string for the managers who read the
// file; the numeric version lives only in the history store.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"trainkpi/internal/report"
)

var columns = []string{
	"Department",
	"Target_Man_Hours_YTD",
	"YTD_Hours",
	"MTD_Hours",
	"YTD_Achievement_Percent",
	"Report_Month",
}

// Exporter writes report workbooks into a fixed output directory.
type Exporter struct {
	dir string
}

// New returns an Exporter writing into dir. The directory is created on
// first export.
func New(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Export writes the rows as Monthly_KPI_Summary_<month>.xlsx and returns
// the written path.
func (e *Exporter) Export(rows []report.Row, month string) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()
	sheet := file.GetSheetName(0)

	for col, name := range columns {
		cellRef, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return "", fmt.Errorf("header cell: %w", err)
		}
		if err := file.SetCellValue(sheet, cellRef, name); err != nil {
			return "", fmt.Errorf("write header: %w", err)
		}
	}

	boldStyle, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := file.SetCellStyle(sheet, "A1", lastHeader, boldStyle); err != nil {
		return "", fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range rows {
		values := []any{
			row.Department,
			row.TargetHours,
			row.YTDHours,
			row.MTDHours,
			report.FormatRatio(row.AchievementRatio),
			row.ReportMonth,
		}
		for col, value := range values {
			cellRef, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return "", fmt.Errorf("data cell: %w", err)
			}
			if err := file.SetCellValue(sheet, cellRef, value); err != nil {
				return "", fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}

	path := filepath.Join(e.dir, fmt.Sprintf("Monthly_KPI_Summary_%s.xlsx", month))
	if err := file.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}
