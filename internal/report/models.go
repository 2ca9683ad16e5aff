// Package report holds the KPI domain model and the pure transformation
// from raw input tables to the monthly per-department report.
package report

import (
	"fmt"
	"math"
	"time"
)

// Employee is one roster row.
type Employee struct {
	ID         string
	Department string
}

// RawTrainingRecord is one training-log row as read from the workbook,
// before date cleaning.
type RawTrainingRecord struct {
	EmployeeID    string
	CourseDate    string
	DurationHours float64
}

// TrainingRecord is a training-log row with a parsed course date.
type TrainingRecord struct {
	EmployeeID    string
	CourseDate    time.Time
	DurationHours float64
}

// DepartmentGoal is one goals row: the annual man-hour target for a
// department.
type DepartmentGoal struct {
	Department  string
	TargetHours float64
}

// Inputs bundles the three extracted tables for one pipeline run.
type Inputs struct {
	Roster []Employee
	Log    []RawTrainingRecord
	Goals  []DepartmentGoal
}

// Row is one department's line in the monthly KPI report.
// AchievementRatio is YTDHours / TargetHours and is non-finite when the
// target is zero; consumers render that as "n/a" and the history store
// persists it as NULL.
type Row struct {
	Department       string
	TargetHours      float64
	YTDHours         float64
	MTDHours         float64
	AchievementRatio float64
	ReportMonth      string
}

// MonthLabel formats a reference date as the report month, e.g. "2025-10".
func MonthLabel(asOf time.Time) string {
	return asOf.Format("2006-01")
}

// FormatRatio renders an achievement ratio the way the exported workbook
// and the dashboard table show it: one decimal percent, "n/a" when the
// ratio is not finite.
func FormatRatio(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", ratio*100)
}
