package cover

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backlogr/pkg/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "data.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCacheKeySanitization(t *testing.T) {
	assert.Equal(t, "v1:hades", Key("Hades"))
	assert.Equal(t, "v1:nierautomata", Key("NieR: Automata™"))
	assert.Equal(t, Key("  The Witcher 3!  "), Key("the witcher 3"))
}

func TestCacheRoundTrip(t *testing.T) {
	cache, err := NewCache(newTestDB(t), time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	url := "https://media.rawg.io/hades.jpg"
	require.NoError(t, cache.Put(ctx, "Hades", &url))

	e, err := cache.Get(ctx, "Hades")
	require.NoError(t, err)
	require.NotNil(t, e)
	require.NotNil(t, e.URL)
	assert.Equal(t, url, *e.URL)

	// Same canonical key, differently spelled title.
	e, err = cache.Get(ctx, "  HADES ")
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestCacheNegativeEntry(t *testing.T) {
	cache, err := NewCache(newTestDB(t), time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "Obscure Game", nil))

	e, err := cache.Get(ctx, "Obscure Game")
	require.NoError(t, err)
	require.NotNil(t, e, "negative result must be a hit, not a miss")
	assert.Nil(t, e.URL)
}

func TestCacheExpiryPurgesRow(t *testing.T) {
	db := newTestDB(t)
	cache, err := NewCache(db, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	url := "https://media.rawg.io/hades.jpg"
	require.NoError(t, cache.Put(ctx, "Hades", &url))

	// Jump past the expiry window.
	cache.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	e, err := cache.Get(ctx, "Hades")
	require.NoError(t, err)
	assert.Nil(t, e)

	// The row must be gone, not merely ignored: a later read of the same
	// key cannot find leftover data.
	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM cover_cache WHERE key = ?`, Key("Hades"),
	).Scan(&n))
	assert.Zero(t, n)
}

func TestCacheCorruptRowDeletedOnRead(t *testing.T) {
	db := newTestDB(t)
	cache, err := NewCache(db, time.Hour)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = db.Exec(
		`INSERT INTO cover_cache (key, url, cached_at) VALUES (?, ?, ?)`,
		Key("Broken"), "https://example.com/x.jpg", -42,
	)
	require.NoError(t, err)

	e, err := cache.Get(ctx, "Broken")
	require.NoError(t, err)
	assert.Nil(t, e)

	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM cover_cache WHERE key = ?`, Key("Broken"),
	).Scan(&n))
	assert.Zero(t, n)
}

func TestCacheSweepsForeignVersionsOnOpen(t *testing.T) {
	db := newTestDB(t)
	_, err := NewCache(db, time.Hour)
	require.NoError(t, err)

	_, err = db.Exec(
		`INSERT INTO cover_cache (key, url, cached_at) VALUES (?, ?, ?)`,
		"v0:hades", "legacy-shape", time.Now().UnixMilli(),
	)
	require.NoError(t, err)

	_, err = NewCache(db, time.Hour)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM cover_cache WHERE key = 'v0:hades'`,
	).Scan(&n))
	assert.Zero(t, n)
}
