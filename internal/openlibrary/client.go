// Package openlibrary implements the remote metadata lookup against the
// OpenLibrary books API.
package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"stacks/internal/cache"
	"stacks/internal/library"
	"stacks/internal/ratelimit"
)

// Global HTTP client and rate limiter for reuse
var (
	httpClient      *http.Client
	clientOnce      sync.Once
	olRateLimiter   *ratelimit.Limiter
	rateLimiterOnce sync.Once
	httpClientNew   = func() *http.Client {
		return &http.Client{
			Timeout: 10 * time.Second,
		}
	}
)

var baseURL = "https://openlibrary.org"

// getHTTPClient returns a singleton HTTP client
func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		httpClient = httpClientNew()
	})
	return httpClient
}

// getRateLimiter returns a singleton rate limiter for OpenLibrary (1 req/sec)
func getRateLimiter() *ratelimit.Limiter {
	rateLimiterOnce.Do(func() {
		olRateLimiter = ratelimit.New("OpenLibrary", 1)
	})
	return olRateLimiter
}

// Lookup fetches the OpenLibrary record for a normalized ISBN and maps it
// onto a collection record. The second return value is the remote cover
// image URL, "" when OpenLibrary has none. Responses are cached, so
// re-adding a recently looked-up ISBN does not hit the network.
//
// Failures are typed: ErrNotFound when the ISBN has no record, a
// TransientError for anything worth retrying.
func Lookup(ctx context.Context, isbn string) (library.Book, string, error) {
	edition, _, err := cache.GetOrFetch(cache.OpenLibraryTable, isbn, func() (*Edition, error) {
		return fetchEdition(ctx, isbn)
	})
	if err != nil {
		return library.Book{}, "", err
	}

	book := library.Book{
		ISBN:          isbn,
		Title:         edition.Title,
		PublishedDate: edition.PublishDate,
	}
	if len(edition.Authors) > 0 {
		book.Author = edition.Authors[0].Name
	}
	if len(edition.Publishers) > 0 {
		book.Publisher = edition.Publishers[0].Name
	}

	return book, edition.CoverURL(), nil
}

// fetchEdition retrieves edition data from the OpenLibrary API using ISBN.
func fetchEdition(ctx context.Context, isbn string) (*Edition, error) {
	client := getHTTPClient()
	limiter := getRateLimiter()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	// jscmd=data resolves author and publisher names in one request
	url := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=data", baseURL, isbn)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return nil, &TransientError{Err: fmt.Errorf("OpenLibrary returned status %s", resp.Status)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenLibrary returned status %s", resp.Status)
	}

	var result map[string]Edition
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &TransientError{Err: fmt.Errorf("failed to decode OpenLibrary response: %w", err)}
	}

	edition, ok := result["ISBN:"+isbn]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, isbn)
	}

	return &edition, nil
}
