package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// joinedRecord is a training record enriched with the employee's
// department. Department is empty when the employee is missing from the
// roster; such rows survive aggregation but are dropped by the final
// goals-driven merge.
type joinedRecord struct {
	Department    string
	CourseDate    time.Time
	DurationHours float64
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// excelEpoch is day zero of the 1900 date system. Workbook cells that
// reach us as bare serial numbers are offsets in days from here.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseCourseDate accepts the date spellings that show up in real
// training logs: ISO dates, US dates, and raw Excel serials.
func ParseCourseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty course date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 0 {
		days := int(serial)
		return excelEpoch.AddDate(0, 0, days), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized course date %q", value)
}

// Clean parses every course date in the log. A single unparseable date
// fails the run; there is no row-skipping in this pipeline.
func Clean(raw []RawTrainingRecord) ([]TrainingRecord, error) {
	records := make([]TrainingRecord, 0, len(raw))
	for i, row := range raw {
		date, err := ParseCourseDate(row.CourseDate)
		if err != nil {
			return nil, fmt.Errorf("clean training log row %d: %w", i+1, err)
		}
		records = append(records, TrainingRecord{
			EmployeeID:    row.EmployeeID,
			CourseDate:    date,
			DurationHours: row.DurationHours,
		})
	}
	return records, nil
}

// Join left-joins training records to roster departments by employee ID.
// Records whose employee is not on the roster keep an empty department.
func Join(records []TrainingRecord, roster []Employee) []joinedRecord {
	departments := make(map[string]string, len(roster))
	for _, emp := range roster {
		departments[emp.ID] = emp.Department
	}
	joined := make([]joinedRecord, 0, len(records))
	for _, rec := range records {
		joined = append(joined, joinedRecord{
			Department:    departments[rec.EmployeeID],
			CourseDate:    rec.CourseDate,
			DurationHours: rec.DurationHours,
		})
	}
	return joined
}

// Aggregate partitions joined records against the reference date and sums
// duration hours per department: YTD covers the reference calendar year,
// MTD additionally requires the reference month. Every MTD row is by
// construction also a YTD row.
func Aggregate(joined []joinedRecord, asOf time.Time) (ytd, mtd map[string]float64) {
	ytd = make(map[string]float64)
	mtd = make(map[string]float64)
	for _, rec := range joined {
		if rec.CourseDate.Year() != asOf.Year() {
			continue
		}
		ytd[rec.Department] += rec.DurationHours
		if rec.CourseDate.Month() == asOf.Month() {
			mtd[rec.Department] += rec.DurationHours
		}
	}
	return ytd, mtd
}

// Compose merges the aggregated hours onto the goals table and derives the
// achievement ratio. Goals drive the merge: every goal department appears
// exactly once with zero-filled hours, and departments without a goal row
// are dropped. Output order follows the goals table, so reruns are
// deterministic.
func Compose(ytd, mtd map[string]float64, goals []DepartmentGoal, asOf time.Time) []Row {
	month := MonthLabel(asOf)
	rows := make([]Row, 0, len(goals))
	for _, goal := range goals {
		ytdHours := ytd[goal.Department]
		mtdHours := mtd[goal.Department]
		rows = append(rows, Row{
			Department:       goal.Department,
			TargetHours:      goal.TargetHours,
			YTDHours:         ytdHours,
			MTDHours:         mtdHours,
			AchievementRatio: ytdHours / goal.TargetHours,
			ReportMonth:      month,
		})
	}
	return rows
}

// Build runs the full transformation: clean, join, aggregate, compose.
func Build(inputs Inputs, asOf time.Time) ([]Row, error) {
	records, err := Clean(inputs.Log)
	if err != nil {
		return nil, err
	}
	joined := Join(records, inputs.Roster)
	ytd, mtd := Aggregate(joined, asOf)
	return Compose(ytd, mtd, inputs.Goals, asOf), nil
}
