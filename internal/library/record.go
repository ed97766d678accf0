// Package library implements the book record model and the durable,
// deduplicated collection store backing the rest of the application.
package library

import (
	"fmt"
	"strings"
)

// DateAddedFormat is the timestamp layout used for the DateAdded field.
const DateAddedFormat = "2006-01-02 15:04:05"

// Book represents one entry in the collection, keyed by normalized ISBN.
// Descriptive fields may be empty when the remote source lacked data; an
// empty Title is still a valid, persistable record.
type Book struct {
	ISBN          string `json:"isbn"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	// CoverPath is the relative path to a locally cached cover image,
	// empty until the cover cache produces one. Never required for the
	// record to be valid.
	CoverPath string `json:"cover_path,omitempty"`
	// DateAdded is set once when the record first enters the collection
	// and never rewritten by later merges or updates.
	DateAdded string `json:"date_added"`
	Read      bool   `json:"read"`
}

// NormalizeISBN strips hyphens and spaces from an ISBN and validates that
// only digits remain, so mixed formattings of the same ISBN collapse to one
// collection key.
func NormalizeISBN(raw string) (string, error) {
	isbn := strings.ReplaceAll(raw, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	if isbn == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidISBN, raw)
	}
	for _, r := range isbn {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", ErrInvalidISBN, raw)
		}
	}
	return isbn, nil
}

// Merge combines a stored record with a newly fetched one for the same ISBN.
// Descriptive fields come from incoming, user-owned fields (DateAdded, Read)
// from existing. CoverPath keeps the existing value when incoming has none.
// Pure function, no side effects.
func Merge(existing, incoming Book) Book {
	merged := incoming
	merged.ISBN = existing.ISBN
	merged.DateAdded = existing.DateAdded
	merged.Read = existing.Read
	if merged.CoverPath == "" {
		merged.CoverPath = existing.CoverPath
	}
	return merged
}

// Matches reports whether the record matches a case-insensitive search term
// across its title, author, ISBN and publisher fields.
func (b Book) Matches(term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{b.Title, b.Author, b.ISBN, b.Publisher} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}
