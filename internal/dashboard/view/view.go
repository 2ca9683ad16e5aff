// Package view renders the dashboard HTML: the main page via
// html/template and the achievement bar chart via go-echarts.
package view

import (
	"fmt"
	"html/template"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"trainkpi/internal/dashboard"
	"trainkpi/internal/report"
)

// TableRow is one pre-formatted detail table line.
type TableRow struct {
	Department  string
	TargetHours string
	YTDHours    string
	MTDHours    string
	Achievement string
	ReportMonth string
}

// Page is the template model for the dashboard index.
type Page struct {
	Months   []string
	Selected string
	TotalYTD string
	TotalMTD string
	Rows     []TableRow
	Error    string
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>L&amp;D KPI Dashboard</title>
<style>
body { font-family: sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
.error { color: #b00020; font-weight: bold; }
.metrics { display: flex; gap: 3rem; margin: 1rem 0; }
.metric .value { font-size: 1.6rem; font-weight: bold; }
.metric .label { color: #666; }
table { border-collapse: collapse; margin-top: 1rem; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.8rem; text-align: left; }
th { background: #f4f4f4; }
iframe { border: none; width: 920px; height: 460px; }
</style>
</head>
<body>
<h1>L&amp;D Key Performance Indicator (KPI) Dashboard</h1>
<p>Tracks YTD &amp; MTD training hours against department goals.</p>
{{if .Error}}
<p class="error">{{.Error}}</p>
{{else}}
<form method="get" action="/">
<label for="month">Report Month</label>
<select id="month" name="month" onchange="this.form.submit()">
{{range .Months}}<option value="{{.}}"{{if eq . $.Selected}} selected{{end}}>{{.}}</option>
{{end}}</select>
</form>
<h2>Summary for: {{.Selected}}</h2>
<div class="metrics">
<div class="metric"><div class="value">{{.TotalYTD}}</div><div class="label">Total YTD Training Hours</div></div>
<div class="metric"><div class="value">{{.TotalMTD}}</div><div class="label">Total MTD Training Hours</div></div>
</div>
<h2>YTD Achievement vs. Goal</h2>
<iframe src="/chart?month={{.Selected}}"></iframe>
<h2>Detailed Report Data</h2>
<table>
<tr><th>Department</th><th>Target_Man_Hours_YTD</th><th>YTD_Hours</th><th>MTD_Hours</th><th>YTD_Achievement_Percent</th><th>Report_Month</th></tr>
{{range .Rows}}<tr><td>{{.Department}}</td><td>{{.TargetHours}}</td><td>{{.YTDHours}}</td><td>{{.MTDHours}}</td><td>{{.Achievement}}</td><td>{{.ReportMonth}}</td></tr>
{{end}}</table>
{{end}}
</body>
</html>
`

var page = template.Must(template.New("dashboard").Parse(pageTemplate))

// RenderPage writes the dashboard index for the given month view.
func RenderPage(w io.Writer, v dashboard.MonthView) error {
	model := Page{
		Months:   v.Months,
		Selected: v.Selected,
		TotalYTD: formatHours(v.TotalYTD),
		TotalMTD: formatHours(v.TotalMTD),
	}
	for _, row := range v.Rows {
		model.Rows = append(model.Rows, TableRow{
			Department:  row.Department,
			TargetHours: formatNumber(row.TargetHours),
			YTDHours:    formatNumber(row.YTDHours),
			MTDHours:    formatNumber(row.MTDHours),
			Achievement: report.FormatRatio(row.AchievementRatio),
			ReportMonth: row.ReportMonth,
		})
	}
	return page.Execute(w, model)
}

// RenderError writes the page with a user-visible failure message instead
// of a blank dashboard.
func RenderError(w io.Writer, message string) error {
	return page.Execute(w, Page{Error: message})
}

// RenderChart writes a standalone bar-chart page of achievement ratio by
// department; the index embeds it in an iframe. Non-finite ratios chart
// as zero.
func RenderChart(w io.Writer, v dashboard.MonthView) error {
	departments := make([]string, 0, len(v.Rows))
	values := make([]opts.BarData, 0, len(v.Rows))
	for _, row := range v.Rows {
		ratio := row.AchievementRatio
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			ratio = 0
		}
		departments = append(departments, row.Department)
		values = append(values, opts.BarData{Value: ratio})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "YTD Achievement vs. Goal",
			Subtitle: v.Selected,
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "900px",
			Height: "420px",
		}),
	)
	bar.SetXAxis(departments).AddSeries("YTD_Achievement_Percent", values)
	return bar.Render(w)
}

func formatHours(v float64) string {
	return fmt.Sprintf("%.0f hrs", v)
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
