package cache

// SQL schemas for cache tables.
// All cache tables use "cache_key" as the primary key column.

// OpenLibraryTable is the cache table for OpenLibrary responses, keyed by
// normalized ISBN.
const OpenLibraryTable = "openlibrary_cache"

const openLibrarySchema = `
CREATE TABLE IF NOT EXISTS openlibrary_cache (
	cache_key TEXT PRIMARY KEY NOT NULL,
	data TEXT NOT NULL,
	cached_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_openlibrary_cached_at ON openlibrary_cache(cached_at);
`

var allSchemas = []string{
	openLibrarySchema,
}

var validTableNames = map[string]bool{
	OpenLibraryTable: true,
}
