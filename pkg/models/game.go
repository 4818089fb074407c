package models

// Game is one normalized entry of the library, derived from a single
// data row of the sheet export.
//
// IDs are dense and zero-based within one ingestion run: the id is the
// position among retained rows (rows with a non-empty title), not the
// original sheet row index. Two games may share a title; the (ID, Title)
// pair is the display key.
type Game struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Platform string  `json:"platform"`
	Price    float64 `json:"price"`
	Status   string  `json:"status"`
	Hours    float64 `json:"hours"` // reserved, always 0 for now
}

// Well-known status values. The vocabulary is open: any literal text in
// the sheet's status column is carried through as-is.
const (
	StatusCompleted = "Completed"
	StatusPlaying   = "Playing"
	StatusPlayed    = "Played"
	StatusBacklog   = "Backlog"
	StatusArchive   = "Archive"
)

// DefaultPlatform is used for rows with an empty platform cell.
const DefaultPlatform = "Other"
