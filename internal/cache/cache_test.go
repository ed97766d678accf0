package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSetAndGet(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Set(OpenLibraryTable, "9780134685991", `{"title":"Effective Java"}`))

	data, hit, err := db.Get(OpenLibraryTable, "9780134685991", time.Hour)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, `{"title":"Effective Java"}`, data)
}

func TestGetMiss(t *testing.T) {
	db := newTestDB(t)

	_, hit, err := db.Get(OpenLibraryTable, "missing", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetExpired(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Set(OpenLibraryTable, "k", "v"))

	// A zero TTL expires everything immediately
	_, hit, err := db.Get(OpenLibraryTable, "k", 0)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSetReplacesExisting(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Set(OpenLibraryTable, "k", "old"))
	require.NoError(t, db.Set(OpenLibraryTable, "k", "new"))

	data, hit, err := db.Get(OpenLibraryTable, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "new", data)
}

func TestInvalidTableName(t *testing.T) {
	db := newTestDB(t)

	err := db.Set("bogus_table", "k", "v")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cache table name")
}

func TestClearExpired(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, db.Set(OpenLibraryTable, "k", "v"))
	require.NoError(t, db.ClearExpired(OpenLibraryTable, 0))

	_, hit, err := db.Get(OpenLibraryTable, "k", time.Hour)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestGetOrFetch(t *testing.T) {
	require.NoError(t, ResetGlobalCache())
	viper.Set("cache.dbfile", filepath.Join(t.TempDir(), "cache.db"))
	viper.Set("cache.ttl", "1h")
	t.Cleanup(func() {
		_ = ResetGlobalCache()
		viper.Set("cache.dbfile", "")
	})

	type payload struct {
		Title string `json:"title"`
	}

	fetches := 0
	fetcher := func() (*payload, error) {
		fetches++
		return &payload{Title: "Effective Java"}, nil
	}

	got, fromCache, err := GetOrFetch(OpenLibraryTable, "9780134685991", fetcher)
	require.NoError(t, err)
	assert.False(t, fromCache)
	assert.Equal(t, "Effective Java", got.Title)

	got, fromCache, err = GetOrFetch(OpenLibraryTable, "9780134685991", fetcher)
	require.NoError(t, err)
	assert.True(t, fromCache)
	assert.Equal(t, "Effective Java", got.Title)
	assert.Equal(t, 1, fetches)
}
