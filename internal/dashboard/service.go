// Package dashboard loads KPI report rows for presentation, either from
// the persisted history or by recomputing the pipeline over the input
// workbooks ("live" mode).
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"trainkpi/internal/history"
	"trainkpi/internal/report"
	"trainkpi/pkg/kpierrors"
)

// Source yields the full row set the dashboard can display.
type Source interface {
	Rows(ctx context.Context) ([]report.Row, error)
}

// HistorySource reads persisted rows on every request, so a batch run is
// visible on the next page load without restarting the dashboard.
type HistorySource struct {
	store history.Store
}

func NewHistorySource(store history.Store) *HistorySource {
	return &HistorySource{store: store}
}

func (s *HistorySource) Rows(ctx context.Context) ([]report.Row, error) {
	return s.store.ListAll(ctx)
}

// Computer computes report rows on demand; *etl.Service satisfies it.
type Computer interface {
	Compute(ctx context.Context) ([]report.Row, error)
}

// LiveSource recomputes the pipeline from the input workbooks and caches
// the result until Refresh is called. The cache policy is deliberate:
// recompute happens on demand, never implicitly.
type LiveSource struct {
	pipeline Computer

	mu     sync.Mutex
	cached []report.Row
	loaded bool
}

func NewLiveSource(pipeline Computer) *LiveSource {
	return &LiveSource{pipeline: pipeline}
}

func (s *LiveSource) Rows(ctx context.Context) ([]report.Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cached, nil
	}
	rows, err := s.pipeline.Compute(ctx)
	if err != nil {
		return nil, err
	}
	s.cached = rows
	s.loaded = true
	return rows, nil
}

// Refresh drops the cached computation; the next Rows call recomputes.
func (s *LiveSource) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = false
	s.cached = nil
}

// MonthView is everything the page needs for one selected month.
type MonthView struct {
	Months   []string // all months present, oldest first
	Selected string
	Rows     []report.Row
	TotalYTD float64
	TotalMTD float64
}

// Service assembles month views over a Source.
type Service struct {
	source Source
}

func NewService(source Source) *Service {
	return &Service{source: source}
}

// View builds the month view. An empty month selects the most recent month
// present. An unknown month is a not-found error. No displayable rows at
// all is also an error: the dashboard shows a failure message rather than
// a blank page.
func (s *Service) View(ctx context.Context, month string) (MonthView, error) {
	rows, err := s.source.Rows(ctx)
	if err != nil {
		return MonthView{}, err
	}
	if len(rows) == 0 {
		return MonthView{}, history.ErrNoHistory
	}

	months := distinctMonths(rows)
	if month == "" {
		month = months[len(months)-1]
	} else if !contains(months, month) {
		return MonthView{}, kpierrors.New(kpierrors.CodeNotFound,
			fmt.Sprintf("no report for month %s", month))
	}

	view := MonthView{Months: months, Selected: month}
	for _, row := range rows {
		if row.ReportMonth != month {
			continue
		}
		view.Rows = append(view.Rows, row)
		view.TotalYTD += row.YTDHours
		view.TotalMTD += row.MTDHours
	}
	return view, nil
}

// Refresh invalidates the source's cache if it has one. Returns false for
// sources without a cache (history mode).
func (s *Service) Refresh() bool {
	refresher, ok := s.source.(interface{ Refresh() })
	if !ok {
		return false
	}
	refresher.Refresh()
	return true
}

func distinctMonths(rows []report.Row) []string {
	seen := make(map[string]struct{})
	var months []string
	for _, row := range rows {
		if _, ok := seen[row.ReportMonth]; !ok {
			seen[row.ReportMonth] = struct{}{}
			months = append(months, row.ReportMonth)
		}
	}
	sort.Strings(months)
	return months
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
