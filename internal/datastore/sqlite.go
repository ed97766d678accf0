// Package datastore exports the collection into a local SQLite database for
// ad-hoc querying.
package datastore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"stacks/internal/library"
)

const booksSchema = `
CREATE TABLE IF NOT EXISTS books (
	isbn TEXT PRIMARY KEY NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	publisher TEXT NOT NULL,
	published_date TEXT NOT NULL,
	cover_path TEXT NOT NULL,
	date_added TEXT NOT NULL,
	read INTEGER NOT NULL
);
`

// SQLiteStore writes collection snapshots into a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLiteStore instance
func NewSQLiteStore(dbPath string) *SQLiteStore {
	return &SQLiteStore{
		dbPath: dbPath,
	}
}

// Connect opens a connection to the SQLite database and ensures the books
// table exists.
func (s *SQLiteStore) Connect() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(booksSchema); err != nil {
		closeErr := db.Close()
		if closeErr != nil {
			return fmt.Errorf("failed to create books table: %w (close: %v)", err, closeErr)
		}
		return fmt.Errorf("failed to create books table: %w", err)
	}
	s.db = db
	return nil
}

// ExportBooks writes all records in one transaction, replacing rows that
// share an ISBN so repeated exports stay in sync with the collection.
func (s *SQLiteStore) ExportBooks(books []library.Book) error {
	if len(books) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// Rollback is a no-op after a successful commit
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO books
		(isbn, title, author, publisher, published_date, cover_path, date_added, read)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, b := range books {
		read := 0
		if b.Read {
			read = 1
		}
		if _, err := stmt.Exec(b.ISBN, b.Title, b.Author, b.Publisher,
			b.PublishedDate, b.CoverPath, b.DateAdded, read); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", b.ISBN, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Count returns the number of rows in the books table.
func (s *SQLiteStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM books").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return n, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
