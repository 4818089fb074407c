package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"backlogr/pkg/models"
)

// Normalize turns raw rows into the ordered game list using the default
// layout set. Pure: same rows in, same games out, no hidden state.
func Normalize(rows [][]string) ([]models.Game, error) {
	return NormalizeWith(rows, DefaultLayouts())
}

// NormalizeWith locates the header row by probing each layout's matcher,
// builds the price lookup from the auxiliary purchase sections, and maps
// every data row with a non-empty title to a Game. IDs are dense
// positions among retained rows, in sheet order.
func NormalizeWith(rows [][]string, layouts []Layout) ([]models.Game, error) {
	layout, headerIdx, err := DetectLayout(rows, layouts)
	if err != nil {
		return nil, err
	}

	data := rows[headerIdx+1:]
	prices := buildPriceMap(data, layout)

	games := make([]models.Game, 0, len(data))
	for _, row := range data {
		title := strings.TrimSpace(cell(row, layout.TitleCol))
		if title == "" {
			continue
		}

		platform := strings.TrimSpace(cell(row, layout.PlatformCol))
		if platform == "" {
			platform = models.DefaultPlatform
		}

		games = append(games, models.Game{
			ID:       len(games),
			Title:    title,
			Platform: platform,
			Price:    prices[priceKey(title)],
			Status:   layout.statusOf(row),
		})
	}
	return games, nil
}

// DetectLayout finds the first row whose first two cells match a known
// layout's header labels. Returns the layout and the header row index.
func DetectLayout(rows [][]string, layouts []Layout) (Layout, int, error) {
	for i, row := range rows {
		for _, l := range layouts {
			if l.MatchesHeader(row) {
				return l, i, nil
			}
		}
	}
	return Layout{}, 0, fmt.Errorf("%w: no row matched %d known layout(s)", ErrHeaderNotFound, len(layouts))
}

// buildPriceMap scans every data row for the layout's purchase sections
// and records positive prices keyed by lowercase-trimmed name. The first
// occurrence of a key wins: the purchase sections are append-only logs
// and the earliest entry is the actual purchase event.
func buildPriceMap(data [][]string, layout Layout) map[string]float64 {
	m := make(map[string]float64)
	for _, row := range data {
		for _, sec := range layout.PriceSections {
			name := strings.TrimSpace(cell(row, sec.NameCol))
			if name == "" {
				continue
			}
			price := parsePrice(cell(row, sec.PriceCol))
			if price <= 0 {
				continue
			}
			key := strings.ToLower(name)
			if _, ok := m[key]; ok {
				continue
			}
			m[key] = price
		}
	}
	return m
}

// parsePrice extracts a non-negative decimal from a cell that may carry
// currency symbols or thousands separators. Unparsable cells read as 0.
func parsePrice(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func priceKey(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
