package library

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backlogr/pkg/models"
)

func fixedLoader(games []models.Game) LoaderFunc {
	return func(ctx context.Context) ([]models.Game, error) {
		return games, nil
	}
}

func testGames() []models.Game {
	return []models.Game{
		{ID: 0, Title: "Hades", Platform: "Steam", Price: 24.99, Status: "Completed"},
		{ID: 1, Title: "Celeste", Platform: "GOG", Price: 19.99, Status: "Backlog"},
		{ID: 2, Title: "Outer Wilds", Platform: "Steam", Price: 0, Status: "Playing"},
		{ID: 3, Title: "Hades II", Platform: "Steam", Price: 29.99, Status: "Playing"},
	}
}

func loadedService(t *testing.T) *Service {
	t.Helper()
	s := NewService(fixedLoader(testGames()))
	require.NoError(t, s.Reload(context.Background()))
	return s
}

func TestReloadAssignsFreshRunID(t *testing.T) {
	s := loadedService(t)
	first := s.RunID()
	require.NotEmpty(t, first)

	require.NoError(t, s.Reload(context.Background()))
	assert.NotEqual(t, first, s.RunID())
	assert.Len(t, s.Games(), 4)
}

func TestReloadErrorKeepsOldList(t *testing.T) {
	s := loadedService(t)
	runID := s.RunID()

	s.load = func(ctx context.Context) ([]models.Game, error) {
		return nil, errors.New("boom")
	}
	require.Error(t, s.Reload(context.Background()))

	// No partial results: the previous snapshot stays published.
	assert.Len(t, s.Games(), 4)
	assert.Equal(t, runID, s.RunID())
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	s := loadedService(t)

	res := s.List(ListQuery{Q: "hades"})
	require.Equal(t, 2, res.Total)
	assert.Equal(t, "Hades", res.Items[0].Title)
	assert.Equal(t, "Hades II", res.Items[1].Title)
}

func TestListFilters(t *testing.T) {
	s := loadedService(t)

	res := s.List(ListQuery{Platform: "Steam", Status: "Playing"})
	require.Equal(t, 2, res.Total)
	for _, g := range res.Items {
		assert.Equal(t, "Steam", g.Platform)
		assert.Equal(t, "Playing", g.Status)
	}
}

func TestListSorts(t *testing.T) {
	s := loadedService(t)

	res := s.List(ListQuery{Sort: "price_high"})
	require.Equal(t, 4, res.Total)
	assert.Equal(t, "Hades II", res.Items[0].Title)
	assert.Equal(t, "Outer Wilds", res.Items[3].Title)

	res = s.List(ListQuery{Sort: "price_low"})
	assert.Equal(t, "Outer Wilds", res.Items[0].Title)

	res = s.List(ListQuery{})
	assert.Equal(t, "Celeste", res.Items[0].Title)
}

func TestListPagination(t *testing.T) {
	s := loadedService(t)

	res := s.List(ListQuery{Limit: 2, Offset: 2})
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Items, 2)

	// Offset past the end yields an empty page, not an error.
	res = s.List(ListQuery{Limit: 2, Offset: 10})
	assert.Empty(t, res.Items)
}

func TestListFacets(t *testing.T) {
	s := loadedService(t)

	res := s.List(ListQuery{Platform: "GOG"})
	// Facets come from the full list so filter dropdowns stay complete.
	assert.Equal(t, []string{"GOG", "Steam"}, res.Platforms)
	assert.Equal(t, []string{"Backlog", "Completed", "Playing"}, res.Statuses)
}

func TestStats(t *testing.T) {
	s := loadedService(t)

	stats := s.Stats()
	assert.Equal(t, 4, stats.TotalGames)
	assert.InDelta(t, 74.97, stats.TotalValue, 0.0001)
	assert.InDelta(t, 74.97/4, stats.AvgCost, 0.0001)
	assert.Equal(t, "Steam", stats.TopPlatform)
	assert.Equal(t, 3, stats.TopPlatformCount)
}

func TestStatsEmptyLibrary(t *testing.T) {
	s := NewService(fixedLoader(nil))
	require.NoError(t, s.Reload(context.Background()))

	stats := s.Stats()
	assert.Zero(t, stats.TotalGames)
	assert.Zero(t, stats.AvgCost)
	assert.Equal(t, "None", stats.TopPlatform)
}
