package sheet

import (
	"strings"

	"backlogr/pkg/models"
)

// Layout is one supported interpretation of the sheet's column
// positions. Layouts differ in header labels, where the status lives
// (a literal text column vs. boolean flag columns), the fallback status
// for empty cells, and where the auxiliary purchase sections sit.
//
// Detection only looks at the first two cells of a candidate header row,
// so sheets that grow or rename trailing sections keep matching.
type Layout struct {
	Name         string
	HeaderLabels [2]string

	TitleCol    int
	PlatformCol int

	// StatusCol is the literal status column, or -1 when the layout
	// derives status from flag columns instead.
	StatusCol   int
	StatusFlags []StatusFlag

	// DefaultStatus is used when neither a literal status nor a raised
	// flag is present. Varies per sheet generation (Backlog vs Archive).
	DefaultStatus string

	PriceSections []PriceSection
}

// StatusFlag maps a boolean-like column ("TRUE"/anything else) to the
// status it asserts. Flags are checked in order; the first raised one
// wins.
type StatusFlag struct {
	Col    int
	Status string
}

// PriceSection locates one (name, date, price) purchase triple living
// beside the main table. Only the name and price columns matter here.
type PriceSection struct {
	NameCol  int
	PriceCol int
}

// MatchesHeader reports whether row looks like this layout's header:
// its first two cells equal the expected labels, ignoring case and
// surrounding whitespace. Total column count is deliberately not
// checked.
func (l Layout) MatchesHeader(row []string) bool {
	if len(row) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), l.HeaderLabels[0]) &&
		strings.EqualFold(strings.TrimSpace(row[1]), l.HeaderLabels[1])
}

func (l Layout) statusOf(row []string) string {
	if l.StatusCol >= 0 {
		if s := strings.TrimSpace(cell(row, l.StatusCol)); s != "" {
			return s
		}
		return l.DefaultStatus
	}
	for _, f := range l.StatusFlags {
		if strings.EqualFold(strings.TrimSpace(cell(row, f.Col)), "TRUE") {
			return f.Status
		}
	}
	return l.DefaultStatus
}

// PlatformLayout reads sheets whose main table is Name | Platform |
// Status with the status spelled out as text. Purchase and subscription
// sections sit to the right of the main table.
func PlatformLayout() Layout {
	return Layout{
		Name:          "platform-status",
		HeaderLabels:  [2]string{"Name", "Platform"},
		TitleCol:      0,
		PlatformCol:   1,
		StatusCol:     2,
		DefaultStatus: models.StatusBacklog,
		PriceSections: []PriceSection{
			{NameCol: 4, PriceCol: 6},
			{NameCol: 8, PriceCol: 10},
		},
	}
}

// SourcesLayout reads the older Name | Sources generation where the
// status is encoded as TRUE/FALSE flag columns and untouched rows mean
// the game was shelved.
func SourcesLayout() Layout {
	return Layout{
		Name:         "sources-flags",
		HeaderLabels: [2]string{"Name", "Sources"},
		TitleCol:     0,
		PlatformCol:  1,
		StatusCol:    -1,
		StatusFlags: []StatusFlag{
			{Col: 2, Status: models.StatusCompleted},
			{Col: 3, Status: models.StatusPlaying},
		},
		DefaultStatus: models.StatusArchive,
		PriceSections: []PriceSection{
			{NameCol: 5, PriceCol: 7},
			{NameCol: 9, PriceCol: 11},
		},
	}
}

// DefaultLayouts lists every known layout, probed in order.
func DefaultLayouts() []Layout {
	return []Layout{
		PlatformLayout(),
		SourcesLayout(),
	}
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
