package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Swappable for failure injection in tests
var renameFile = os.Rename

// Store owns the durable ISBN → record mapping. The collection file is the
// single source of truth between runs; the in-memory state is a cache of it
// for the lifetime of one run. All mutations and persists go through one
// mutex, so two persist calls can never interleave their writes on disk.
type Store struct {
	mu    sync.Mutex
	path  string
	books []Book         // insertion order of first-seen ISBN
	index map[string]int // normalized ISBN → position in books

	now func() time.Time
}

// NewStore creates a store backed by the given collection file. Call Load
// before using it.
func NewStore(path string) *Store {
	return &Store{
		path:  path,
		index: make(map[string]int),
		now:   time.Now,
	}
}

// Path returns the collection file backing this store.
func (s *Store) Path() string {
	return s.path
}

// Load reads the collection file into memory, replacing the current
// contents. A missing file is a first run and loads an empty collection.
// An existing but unparseable file surfaces a CorruptError and leaves the
// in-memory state untouched, so data loss is never silently masked.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.books = nil
		s.index = make(map[string]int)
		slog.Debug("No collection file yet, starting empty", "path", s.path)
		return nil
	}
	if err != nil {
		return &CorruptError{Path: s.path, Err: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := readRecords(f)
	if err != nil {
		return &CorruptError{Path: s.path, Err: err}
	}

	books := make([]Book, 0, len(rows))
	index := make(map[string]int, len(rows))
	for _, b := range rows {
		isbn, err := NormalizeISBN(b.ISBN)
		if err != nil {
			return &CorruptError{Path: s.path, Err: err}
		}
		b.ISBN = isbn
		if i, ok := index[isbn]; ok {
			// Duplicate rows collapse on load; the first occurrence
			// keeps its slot and its user-owned fields.
			books[i] = Merge(books[i], b)
			continue
		}
		index[isbn] = len(books)
		books = append(books, b)
	}

	s.books = books
	s.index = index
	slog.Debug("Loaded collection", "path", s.path, "books", len(books))
	return nil
}

// Upsert inserts a record under its normalized ISBN, or merges it into the
// record already stored there. The first occurrence of an ISBN is assigned
// its DateAdded; later upserts never rewrite it, nor the read status.
// Upsert is idempotent: repeating it with the same record changes nothing.
func (s *Store) Upsert(b Book) (Book, error) {
	isbn, err := NormalizeISBN(b.ISBN)
	if err != nil {
		return Book{}, err
	}
	b.ISBN = isbn

	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[isbn]; ok {
		s.books[i] = Merge(s.books[i], b)
		return s.books[i], nil
	}

	if b.DateAdded == "" {
		b.DateAdded = s.now().Format(DateAddedFormat)
	}
	s.index[isbn] = len(s.books)
	s.books = append(s.books, b)
	return b, nil
}

// SetReadStatus updates the read flag of one record and nothing else.
func (s *Store) SetReadStatus(isbn string, read bool) (Book, error) {
	key, err := NormalizeISBN(isbn)
	if err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[key]
	if !ok {
		return Book{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	s.books[i].Read = read
	return s.books[i], nil
}

// Get returns the record stored under the given ISBN.
func (s *Store) Get(isbn string) (Book, error) {
	key, err := NormalizeISBN(isbn)
	if err != nil {
		return Book{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[key]
	if !ok {
		return Book{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return s.books[i], nil
}

// All returns the collection in insertion order of first-seen ISBN.
// Merges do not affect the ordering.
func (s *Store) All() []Book {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Book, len(s.books))
	copy(out, s.books)
	return out
}

// SortedByTitle returns the collection ordered by title, then author,
// case-insensitively. Presentation-only; the stored order is unchanged.
func (s *Store) SortedByTitle() []Book {
	out := s.All()
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := strings.ToLower(out[i].Title), strings.ToLower(out[j].Title)
		if ti != tj {
			return ti < tj
		}
		return strings.ToLower(out[i].Author) < strings.ToLower(out[j].Author)
	})
	return out
}

// Search returns records whose title, author, ISBN or publisher contain the
// term, case-insensitively, in collection order.
func (s *Store) Search(term string) []Book {
	term = strings.TrimSpace(term)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Book
	for _, b := range s.books {
		if b.Matches(term) {
			out = append(out, b)
		}
	}
	return out
}

// Len returns the number of records in the collection.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.books)
}

// Persist atomically rewrites the collection file from the in-memory state.
// Rows are written to a temporary file in the same directory which is
// renamed over the live file only after a successful flush, so a failed or
// interrupted persist leaves the previously persisted file intact. Any
// failure surfaces as a PersistError and the in-memory state stays usable.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &PersistError{Path: s.path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &PersistError{Path: s.path, Err: err}
	}
	tmpName := tmp.Name()

	if err := writeRecords(tmp, s.books); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}

	if err := renameFile(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return &PersistError{Path: s.path, Err: err}
	}

	slog.Debug("Persisted collection", "path", s.path, "books", len(s.books))
	return nil
}
