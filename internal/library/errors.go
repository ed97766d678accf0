package library

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidISBN is returned when an identifier is empty or still
	// contains non-digit characters after stripping hyphens and spaces.
	ErrInvalidISBN = errors.New("invalid ISBN")

	// ErrNotFound is returned when an operation references an ISBN that is
	// not in the collection.
	ErrNotFound = errors.New("book not found")
)

// CorruptError reports a collection file that exists but cannot be parsed.
// The caller decides whether to back the file up and reinitialize; the
// store never discards the data on its own.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("collection file %s is unreadable: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// IsCorrupt reports whether err is a CorruptError (even when wrapped).
func IsCorrupt(err error) bool {
	var corruptErr *CorruptError
	return errors.As(err, &corruptErr)
}

// PersistError reports a failed write of the collection file. The in-memory
// collection and the previously persisted file are left untouched, so the
// caller may retry.
type PersistError struct {
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persisting collection to %s: %v", e.Path, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// IsPersistFailure reports whether err is a PersistError (even when wrapped).
func IsPersistFailure(err error) bool {
	var persistErr *PersistError
	return errors.As(err, &persistErr)
}
