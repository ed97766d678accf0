package datastore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacks/internal/library"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s := NewSQLiteStore(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, s.Connect())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestExportBooks(t *testing.T) {
	s := newTestStore(t)

	books := []library.Book{
		{ISBN: "9780134685991", Title: "Effective Java", Author: "Bloch", DateAdded: "2023-01-01 10:00:00", Read: true},
		{ISBN: "9781491941959", Title: "Another", DateAdded: "2023-02-02 11:00:00"},
	}
	require.NoError(t, s.ExportBooks(books))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExportBooksIsIdempotentPerISBN(t *testing.T) {
	s := newTestStore(t)

	books := []library.Book{
		{ISBN: "9780134685991", Title: "First", DateAdded: "2023-01-01 10:00:00"},
	}
	require.NoError(t, s.ExportBooks(books))

	books[0].Title = "Updated"
	require.NoError(t, s.ExportBooks(books))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestExportBooksEmpty(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.ExportBooks(nil))

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
