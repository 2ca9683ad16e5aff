package history

import (
	"context"
	"sort"
	"sync"

	"trainkpi/internal/report"
)

// MemoryStore keeps history in process memory. Used by tests and as the
// backing store for the dashboard's live mode.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []report.Row
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(_ context.Context, rows []report.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

func (s *MemoryStore) ReplaceMonth(_ context.Context, month string, rows []report.Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	for _, row := range s.rows {
		if row.ReportMonth != month {
			kept = append(kept, row)
		}
	}
	s.rows = append(kept, rows...)
	return nil
}

func (s *MemoryStore) ListMonths(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var months []string
	for _, row := range s.rows {
		if _, ok := seen[row.ReportMonth]; !ok {
			seen[row.ReportMonth] = struct{}{}
			months = append(months, row.ReportMonth)
		}
	}
	sort.Strings(months)
	return months, nil
}

func (s *MemoryStore) ListByMonth(_ context.Context, month string) ([]report.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []report.Row
	for _, row := range s.rows {
		if row.ReportMonth == month {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNoHistory
	}
	return rows, nil
}

func (s *MemoryStore) ListAll(_ context.Context) ([]report.Row, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.rows) == 0 {
		return nil, ErrNoHistory
	}
	rows := append([]report.Row{}, s.rows...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].ReportMonth < rows[j].ReportMonth
	})
	return rows, nil
}
