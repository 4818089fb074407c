package library

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"backlogr/internal/events"
	"backlogr/pkg/models"
)

// LoaderFunc produces a fresh normalized game list, typically by
// fetching and normalizing the sheet export.
type LoaderFunc func(ctx context.Context) ([]models.Game, error)

// Service owns the in-memory game list for the session. Reload swaps the
// whole list atomically under a fresh run id; readers always see a
// complete snapshot, never a partially ingested one.
type Service struct {
	load LoaderFunc
	Hub  *events.Hub // optional; broadcasts library.reloaded

	mu       sync.RWMutex
	games    []models.Game
	runID    string
	loadedAt time.Time
}

func NewService(load LoaderFunc) *Service {
	return &Service{load: load}
}

// Reload discards the current list and ingests a fresh one. On any
// ingestion error the old list stays untouched and no partial data is
// published.
func (s *Service) Reload(ctx context.Context) error {
	games, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("load library: %w", err)
	}

	s.mu.Lock()
	s.games = games
	s.runID = uuid.NewString()
	s.loadedAt = time.Now().UTC()
	runID := s.runID
	at := s.loadedAt
	s.mu.Unlock()

	if s.Hub != nil {
		go s.Hub.BroadcastJSON(events.LibraryEvent{
			Type:  events.TypeLibraryReloaded,
			RunID: runID,
			Count: len(games),
			At:    at,
		})
	}
	return nil
}

// Games returns a copy of the current snapshot in ingestion order.
func (s *Service) Games() []models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Game, len(s.games))
	copy(out, s.games)
	return out
}

func (s *Service) RunID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runID
}

func (s *Service) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

type ListQuery struct {
	Q        string // case-insensitive substring match on title
	Platform string // exact match, empty = all
	Status   string // exact match, empty = all
	Sort     string // "name" (default), "price_high", "price_low"
	Limit    int
	Offset   int
}

type ListResult struct {
	Total     int           `json:"total"`
	Limit     int           `json:"limit"`
	Offset    int           `json:"offset"`
	RunID     string        `json:"run_id"`
	Items     []models.Game `json:"items"`
	Platforms []string      `json:"platforms"`
	Statuses  []string      `json:"statuses"`
}

// List filters, sorts and paginates the snapshot. Platforms and Statuses
// carry the distinct vocabularies of the full (unfiltered) list so the
// client can build its filter dropdowns.
func (s *Service) List(q ListQuery) ListResult {
	games := s.Games()
	runID := s.RunID()

	result := make([]models.Game, 0, len(games))
	needle := strings.ToLower(strings.TrimSpace(q.Q))
	for _, g := range games {
		if needle != "" && !strings.Contains(strings.ToLower(g.Title), needle) {
			continue
		}
		if q.Platform != "" && g.Platform != q.Platform {
			continue
		}
		if q.Status != "" && g.Status != q.Status {
			continue
		}
		result = append(result, g)
	}

	switch q.Sort {
	case "price_high":
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price > result[j].Price })
	case "price_low":
		sort.SliceStable(result, func(i, j int) bool { return result[i].Price < result[j].Price })
	default: // "name"
		sort.SliceStable(result, func(i, j int) bool {
			return strings.ToLower(result[i].Title) < strings.ToLower(result[j].Title)
		})
	}

	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	total := len(result)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return ListResult{
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		RunID:     runID,
		Items:     result[offset:end],
		Platforms: distinct(games, func(g models.Game) string { return g.Platform }),
		Statuses:  distinct(games, func(g models.Game) string { return g.Status }),
	}
}

type LibraryStats struct {
	TotalGames       int     `json:"total_games"`
	TotalValue       float64 `json:"total_value"`
	AvgCost          float64 `json:"avg_cost"`
	TopPlatform      string  `json:"top_platform"`
	TopPlatformCount int     `json:"top_platform_count"`
}

// Stats summarizes the snapshot for the dashboard header cards.
func (s *Service) Stats() LibraryStats {
	games := s.Games()

	stats := LibraryStats{TotalGames: len(games)}
	counts := make(map[string]int)
	for _, g := range games {
		stats.TotalValue += g.Price
		counts[g.Platform]++
	}
	if stats.TotalGames > 0 {
		stats.AvgCost = stats.TotalValue / float64(stats.TotalGames)
	}

	for platform, n := range counts {
		if n > stats.TopPlatformCount ||
			(n == stats.TopPlatformCount && platform < stats.TopPlatform) {
			stats.TopPlatform = platform
			stats.TopPlatformCount = n
		}
	}
	if stats.TopPlatform == "" {
		stats.TopPlatform = "None"
	}
	return stats
}

func distinct(games []models.Game, field func(models.Game) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, 8)
	for _, g := range games {
		v := field(g)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
