package events

import "time"

const (
	TypeLibraryReloaded = "library.reloaded"
	TypeCoverResolved   = "cover.resolved"
)

// LibraryEvent announces that a fresh ingestion run replaced the game
// list.
type LibraryEvent struct {
	Type  string    `json:"type"` // "library.reloaded"
	RunID string    `json:"run_id"`
	Count int       `json:"count"`
	At    time.Time `json:"at"`
}

// CoverEvent announces that a pending cover lookup finished. URL is nil
// when the search found no artwork.
type CoverEvent struct {
	Type  string    `json:"type"` // "cover.resolved"
	Title string    `json:"title"`
	URL   *string   `json:"url"`
	At    time.Time `json:"at"`
}
