// Package extract reads the three input workbooks (roster, training log,
// department goals) into the report domain model. It fails fast: a missing
// file or a missing required column aborts the run.
package extract

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"trainkpi/internal/report"
	"trainkpi/pkg/kpierrors"
)

const (
	RosterFileName = "Employee_Roster.xlsx"
	GoalsFileName  = "Department_Goals.xlsx"
	// Training logs are published per year, e.g. Training_Log_2025.xlsx.
	TrainingLogPattern = "Training_Log_*.xlsx"
)

// header aliases, keyed by normalized header name. Real workbooks drift
// between exports, so each logical column accepts a small alias set.
var (
	employeeIDAliases = []string{"employee_id", "employeeid", "emp_id"}
	departmentAliases = []string{"department", "dept"}
	courseDateAliases = []string{"course_date", "coursedate", "date"}
	durationAliases   = []string{"duration_hours", "durationhours", "hours", "duration"}
	targetAliases     = []string{"target_man_hours_ytd", "target_hours", "target"}
)

// ReadInputs loads all three tables from dir. Multiple training-log
// workbooks (one per year) are concatenated in filename order.
func ReadInputs(dir string) (report.Inputs, error) {
	roster, err := ReadRoster(filepath.Join(dir, RosterFileName))
	if err != nil {
		return report.Inputs{}, err
	}

	logPaths, err := filepath.Glob(filepath.Join(dir, TrainingLogPattern))
	if err != nil {
		return report.Inputs{}, fmt.Errorf("glob training logs: %w", err)
	}
	if len(logPaths) == 0 {
		return report.Inputs{}, kpierrors.New(kpierrors.CodeNotFound,
			fmt.Sprintf("no training log matching %s in %s", TrainingLogPattern, dir))
	}
	sort.Strings(logPaths)

	var log []report.RawTrainingRecord
	for _, path := range logPaths {
		records, err := ReadTrainingLog(path)
		if err != nil {
			return report.Inputs{}, err
		}
		log = append(log, records...)
	}

	goals, err := ReadGoals(filepath.Join(dir, GoalsFileName))
	if err != nil {
		return report.Inputs{}, err
	}

	return report.Inputs{Roster: roster, Log: log, Goals: goals}, nil
}

// ReadRoster reads the employee roster workbook.
func ReadRoster(path string) ([]report.Employee, error) {
	rows, header, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	idCol, err := header.require(path, employeeIDAliases)
	if err != nil {
		return nil, err
	}
	deptCol, err := header.require(path, departmentAliases)
	if err != nil {
		return nil, err
	}

	roster := make([]report.Employee, 0, len(rows))
	for _, row := range rows {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		roster = append(roster, report.Employee{
			ID:         id,
			Department: cell(row, deptCol),
		})
	}
	return roster, nil
}

// ReadTrainingLog reads one training-log workbook. Dates stay raw strings;
// parsing is the cleaner's job.
func ReadTrainingLog(path string) ([]report.RawTrainingRecord, error) {
	rows, header, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	idCol, err := header.require(path, employeeIDAliases)
	if err != nil {
		return nil, err
	}
	dateCol, err := header.require(path, courseDateAliases)
	if err != nil {
		return nil, err
	}
	hoursCol, err := header.require(path, durationAliases)
	if err != nil {
		return nil, err
	}

	records := make([]report.RawTrainingRecord, 0, len(rows))
	for i, row := range rows {
		id := cell(row, idCol)
		if id == "" {
			continue
		}
		hours, err := parseHours(cell(row, hoursCol))
		if err != nil {
			return nil, kpierrors.Wrap(kpierrors.CodeBadInput,
				fmt.Sprintf("%s row %d", filepath.Base(path), i+2), err)
		}
		records = append(records, report.RawTrainingRecord{
			EmployeeID:    id,
			CourseDate:    cell(row, dateCol),
			DurationHours: hours,
		})
	}
	return records, nil
}

// ReadGoals reads the department goals workbook.
func ReadGoals(path string) ([]report.DepartmentGoal, error) {
	rows, header, err := readSheet(path)
	if err != nil {
		return nil, err
	}
	deptCol, err := header.require(path, departmentAliases)
	if err != nil {
		return nil, err
	}
	targetCol, err := header.require(path, targetAliases)
	if err != nil {
		return nil, err
	}

	goals := make([]report.DepartmentGoal, 0, len(rows))
	for i, row := range rows {
		dept := cell(row, deptCol)
		if dept == "" {
			continue
		}
		target, err := parseHours(cell(row, targetCol))
		if err != nil {
			return nil, kpierrors.Wrap(kpierrors.CodeBadInput,
				fmt.Sprintf("%s row %d", filepath.Base(path), i+2), err)
		}
		goals = append(goals, report.DepartmentGoal{
			Department:  dept,
			TargetHours: target,
		})
	}
	return goals, nil
}

type headerIndex map[string]int

// readSheet opens a workbook and returns the data rows of its first sheet
// plus a header lookup.
func readSheet(path string) ([][]string, headerIndex, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, kpierrors.Wrap(kpierrors.CodeNotFound,
			fmt.Sprintf("open workbook %s", filepath.Base(path)), err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	// Raw cell values: date-typed cells come through as Excel serial
	// numbers instead of locale-styled text, which the cleaner parses.
	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s of %s: %w", sheet, filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, nil, kpierrors.New(kpierrors.CodeBadInput,
			fmt.Sprintf("workbook %s is empty", filepath.Base(path)))
	}

	header := headerIndex{}
	for i, name := range rows[0] {
		header[normalizeHeader(name)] = i
	}
	return rows[1:], header, nil
}

func (h headerIndex) require(path string, aliases []string) (int, error) {
	for _, alias := range aliases {
		if idx, ok := h[alias]; ok {
			return idx, nil
		}
	}
	return 0, kpierrors.New(kpierrors.CodeBadInput,
		fmt.Sprintf("%s: missing column %s", filepath.Base(path), aliases[0]))
}

func normalizeHeader(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	return name
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseHours(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	hours, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hours value %q", value)
	}
	return hours, nil
}
