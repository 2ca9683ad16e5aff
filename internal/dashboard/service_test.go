package dashboard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trainkpi/internal/history"
	"trainkpi/internal/report"
	"trainkpi/pkg/kpierrors"
)

func seedStore(t *testing.T) *history.MemoryStore {
	t.Helper()
	store := history.NewMemoryStore()
	require.NoError(t, store.Append(context.Background(), []report.Row{
		{Department: "Dept A", TargetHours: 100, YTDHours: 50, MTDHours: 10, AchievementRatio: 0.5, ReportMonth: "2025-09"},
		{Department: "Dept B", TargetHours: 40, YTDHours: 20, MTDHours: 0, AchievementRatio: 0.5, ReportMonth: "2025-09"},
	}))
	require.NoError(t, store.Append(context.Background(), []report.Row{
		{Department: "Dept A", TargetHours: 100, YTDHours: 55, MTDHours: 5, AchievementRatio: 0.55, ReportMonth: "2025-10"},
		{Department: "Dept B", TargetHours: 40, YTDHours: 22, MTDHours: 2, AchievementRatio: 0.55, ReportMonth: "2025-10"},
	}))
	return store
}

func TestServiceView(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewHistorySource(seedStore(t)))

	t.Run("defaults to latest month", func(t *testing.T) {
		view, err := svc.View(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "2025-10", view.Selected)
		assert.Equal(t, []string{"2025-09", "2025-10"}, view.Months)
		assert.Len(t, view.Rows, 2)
		assert.Equal(t, 77.0, view.TotalYTD)
		assert.Equal(t, 7.0, view.TotalMTD)
	})

	t.Run("explicit month filters", func(t *testing.T) {
		view, err := svc.View(ctx, "2025-09")
		require.NoError(t, err)
		assert.Equal(t, "2025-09", view.Selected)
		assert.Equal(t, 70.0, view.TotalYTD)
		assert.Equal(t, 10.0, view.TotalMTD)
	})

	t.Run("unknown month is not found", func(t *testing.T) {
		_, err := svc.View(ctx, "1999-01")
		require.Error(t, err)
		assert.True(t, kpierrors.Is(err, kpierrors.CodeNotFound))
	})

	t.Run("empty store surfaces no-history", func(t *testing.T) {
		empty := NewService(NewHistorySource(history.NewMemoryStore()))
		_, err := empty.View(ctx, "")
		assert.ErrorIs(t, err, history.ErrNoHistory)
	})
}

func TestServiceRefresh(t *testing.T) {
	t.Run("history source has no cache", func(t *testing.T) {
		svc := NewService(NewHistorySource(seedStore(t)))
		assert.False(t, svc.Refresh())
	})

	t.Run("live source refreshes", func(t *testing.T) {
		svc := NewService(&fakeRefreshSource{})
		assert.True(t, svc.Refresh())
	})
}

type fakeRefreshSource struct{ refreshed bool }

func (s *fakeRefreshSource) Rows(context.Context) ([]report.Row, error) { return nil, nil }
func (s *fakeRefreshSource) Refresh()                                   { s.refreshed = true }

type countingComputer struct {
	calls int
	rows  []report.Row
}

func (c *countingComputer) Compute(context.Context) ([]report.Row, error) {
	c.calls++
	return c.rows, nil
}

func TestLiveSource_CachesUntilRefresh(t *testing.T) {
	ctx := context.Background()
	computer := &countingComputer{rows: []report.Row{
		{Department: "Dept A", TargetHours: 100, YTDHours: 5, MTDHours: 5, AchievementRatio: 0.05, ReportMonth: "2025-10"},
	}}
	source := NewLiveSource(computer)

	for i := 0; i < 3; i++ {
		rows, err := source.Rows(ctx)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	}
	assert.Equal(t, 1, computer.calls, "repeated reads serve the cached computation")

	source.Refresh()
	_, err := source.Rows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, computer.calls, "refresh forces exactly one recompute")
}
