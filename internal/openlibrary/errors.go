package openlibrary

import (
	"errors"
	"fmt"
)

// ErrNotFound means the ISBN was well-formed but OpenLibrary has no record
// for it. Not retryable; retrying will not make the book appear.
var ErrNotFound = errors.New("no OpenLibrary record for ISBN")

// TransientError wraps failures worth retrying: network errors, timeouts,
// 5xx responses and undecodable bodies.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient OpenLibrary failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable lookup failure.
func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}
