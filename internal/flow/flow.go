// Package flow sequences the user-facing flows: lookup, confirmation,
// store commit and persistence. All record invariants live in the store;
// the flow only orders the steps and keeps failures away from the store.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"stacks/internal/library"
)

// State tracks where an add flow currently is. Every failure edge returns
// to StateIdle without touching the store.
type State int

const (
	StateIdle State = iota
	StateLookingUp
	StateAwaitingConfirmation
	StatePersisting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLookingUp:
		return "looking up"
	case StateAwaitingConfirmation:
		return "awaiting confirmation"
	case StatePersisting:
		return "persisting"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// ErrDeclined is returned when the user rejects a fetched record at the
// confirmation gate. The store is left untouched.
var ErrDeclined = errors.New("book addition declined")

// LookupFunc fetches a candidate record and a remote cover URL for a
// normalized ISBN.
type LookupFunc func(ctx context.Context, isbn string) (library.Book, string, error)

// EnsureCoverFunc produces a local cover path for an ISBN, "" when no cover
// could be cached. Best-effort only.
type EnsureCoverFunc func(ctx context.Context, isbn, coverURL string) string

// Confirmer decides whether a fetched record may enter the collection.
// A successful lookup never auto-commits without this gate.
type Confirmer interface {
	Confirm(book library.Book) (bool, error)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(book library.Book) (bool, error)

// Confirm implements Confirmer.
func (f ConfirmFunc) Confirm(book library.Book) (bool, error) {
	return f(book)
}

// AutoConfirm approves every record without asking. Used for --yes runs.
var AutoConfirm = ConfirmFunc(func(library.Book) (bool, error) {
	return true, nil
})

// Flow wires the store, the remote lookup, the cover cache and the
// confirmation gate together.
type Flow struct {
	store   *library.Store
	lookup  LookupFunc
	cover   EnsureCoverFunc
	confirm Confirmer

	mu    sync.Mutex
	state State
}

// New creates a flow. All four collaborators are required.
func New(store *library.Store, lookup LookupFunc, cover EnsureCoverFunc, confirm Confirmer) *Flow {
	return &Flow{
		store:   store,
		lookup:  lookup,
		cover:   cover,
		confirm: confirm,
	}
}

// State returns the flow's current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

type lookupResult struct {
	book     library.Book
	coverURL string
	err      error
}

// Add runs the full add flow for a raw ISBN: normalize, background lookup,
// confirmation gate, upsert, best-effort cover fetch, persist. Validation
// and lookup failures surface before the store is touched. Cancelling ctx
// abandons the lookup; its late result is discarded, never committed.
func (f *Flow) Add(ctx context.Context, rawISBN string) (library.Book, error) {
	defer f.setState(StateIdle)

	isbn, err := library.NormalizeISBN(rawISBN)
	if err != nil {
		return library.Book{}, err
	}

	f.setState(StateLookingUp)

	// Buffered so an abandoned lookup goroutine can still exit
	results := make(chan lookupResult, 1)
	go func() {
		book, coverURL, err := f.lookup(ctx, isbn)
		results <- lookupResult{book: book, coverURL: coverURL, err: err}
	}()

	var res lookupResult
	select {
	case <-ctx.Done():
		slog.Debug("Lookup abandoned", "isbn", isbn)
		return library.Book{}, ctx.Err()
	case res = <-results:
	}
	if res.err != nil {
		return library.Book{}, res.err
	}

	f.setState(StateAwaitingConfirmation)
	ok, err := f.confirm.Confirm(res.book)
	if err != nil {
		return library.Book{}, fmt.Errorf("confirmation failed: %w", err)
	}
	if !ok {
		return library.Book{}, ErrDeclined
	}

	f.setState(StatePersisting)
	stored, err := f.store.Upsert(res.book)
	if err != nil {
		return library.Book{}, err
	}

	// Cover caching is best-effort and never blocks or fails the commit;
	// the record stays valid with no cover.
	if path := f.cover(ctx, stored.ISBN, res.coverURL); path != "" {
		withCover := stored
		withCover.CoverPath = path
		stored, err = f.store.Upsert(withCover)
		if err != nil {
			return library.Book{}, err
		}
	}

	if err := f.store.Persist(); err != nil {
		return library.Book{}, err
	}

	slog.Info("Book added to collection", "isbn", stored.ISBN, "title", stored.Title)
	return stored, nil
}

// ToggleRead flips a record's read status and persists immediately.
// Synchronous, no confirmation gate.
func (f *Flow) ToggleRead(isbn string, read bool) (library.Book, error) {
	book, err := f.store.SetReadStatus(isbn, read)
	if err != nil {
		return library.Book{}, err
	}
	if err := f.store.Persist(); err != nil {
		return library.Book{}, err
	}
	return book, nil
}
