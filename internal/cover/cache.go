package cover

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// coverKeyVersion namespaces cache rows. Bump it whenever the stored
// shape changes; rows written under other versions are swept on open so
// they can never be misread as the current shape.
const coverKeyVersion = "v1"

// DefaultTTL bounds how long both positive and negative results are
// trusted. A title that gains artwork later stays invisible for up to
// this window, the accepted price for not hammering the search API.
const DefaultTTL = 7 * 24 * time.Hour

// Entry is one cached resolution outcome. URL == nil records a confirmed
// "no artwork found".
type Entry struct {
	URL      *string
	CachedAt time.Time
}

// Cache is the persistent title-to-cover store. Keys are canonicalized
// titles; expired and corrupt rows are purged during Get rather than
// merely skipped, so leftover data can never mask a future refetch.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func NewCache(db *sql.DB, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{db: db, ttl: ttl, now: time.Now}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS cover_cache (
			key TEXT PRIMARY KEY,
			url TEXT,
			cached_at INTEGER NOT NULL
		)
	`); err != nil {
		return nil, fmt.Errorf("ensure cover_cache table: %w", err)
	}

	// Rows from older key versions are dead weight; drop them up front.
	if _, err := db.Exec(
		`DELETE FROM cover_cache WHERE key NOT LIKE ?`,
		coverKeyVersion+":%",
	); err != nil {
		return nil, fmt.Errorf("sweep stale cache versions: %w", err)
	}

	return c, nil
}

// Key canonicalizes a title into its cache key: lowercase, every
// non-alphanumeric rune stripped, version prefix attached.
func Key(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return coverKeyVersion + ":" + b.String()
}

// Get returns the cached entry for title, or nil on a miss. Entries past
// the TTL and rows that fail to scan are deleted and reported as misses;
// corruption never surfaces to the caller.
func (c *Cache) Get(ctx context.Context, title string) (*Entry, error) {
	key := Key(title)
	row := c.db.QueryRowContext(ctx,
		`SELECT url, cached_at FROM cover_cache WHERE key = ?`, key)

	var (
		url      sql.NullString
		cachedAt int64
	)
	if err := row.Scan(&url, &cachedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		// Malformed row: purge and treat as a miss.
		if _, delErr := c.db.ExecContext(ctx,
			`DELETE FROM cover_cache WHERE key = ?`, key); delErr != nil {
			return nil, fmt.Errorf("purge corrupt cache row: %w", delErr)
		}
		return nil, nil
	}

	if cachedAt <= 0 {
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM cover_cache WHERE key = ?`, key); err != nil {
			return nil, fmt.Errorf("purge corrupt cache row: %w", err)
		}
		return nil, nil
	}

	stored := time.UnixMilli(cachedAt)
	if c.now().Sub(stored) > c.ttl {
		if _, err := c.db.ExecContext(ctx,
			`DELETE FROM cover_cache WHERE key = ?`, key); err != nil {
			return nil, fmt.Errorf("purge expired cache row: %w", err)
		}
		return nil, nil
	}

	e := &Entry{CachedAt: stored}
	if url.Valid {
		u := url.String
		e.URL = &u
	}
	return e, nil
}

// Put stores a resolution outcome for title; url == nil records a
// negative result with the same expiry as a positive one. Last writer
// wins on the same key, which is fine: near-simultaneous writers store
// equivalent results.
func (c *Cache) Put(ctx context.Context, title string, url *string) error {
	var stored sql.NullString
	if url != nil {
		stored = sql.NullString{String: *url, Valid: true}
	}

	_, err := c.db.ExecContext(ctx, `
		INSERT INTO cover_cache (key, url, cached_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			url = excluded.url,
			cached_at = excluded.cached_at
	`, Key(title), stored, c.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("put cover cache entry: %w", err)
	}
	return nil
}
