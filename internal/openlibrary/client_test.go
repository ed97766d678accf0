package openlibrary

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stacks/internal/cache"
)

func setupClient(t *testing.T, handler http.Handler) {
	t.Helper()

	server := httptest.NewServer(handler)

	t.Cleanup(func() {
		server.Close()
		httpClient = nil
		clientOnce = sync.Once{}
		httpClientNew = func() *http.Client { return &http.Client{Timeout: 10 * time.Second} }
		baseURL = "https://openlibrary.org"
		_ = cache.ResetGlobalCache()
		viper.Set("cache.dbfile", "")
	})

	clientOnce = sync.Once{}
	httpClient = nil
	httpClientNew = func() *http.Client { return server.Client() }
	baseURL = server.URL

	require.NoError(t, cache.ResetGlobalCache())
	viper.Set("cache.dbfile", filepath.Join(t.TempDir(), "cache.db"))
	viper.Set("cache.ttl", "1h")
}

func TestGetHTTPClientSingleton(t *testing.T) {
	t.Cleanup(func() {
		httpClient = nil
		clientOnce = sync.Once{}
	})

	clientOnce = sync.Once{}
	httpClient = nil
	origFactory := httpClientNew
	defer func() { httpClientNew = origFactory }()

	var builds int
	httpClientNew = func() *http.Client {
		builds++
		return &http.Client{}
	}

	first := getHTTPClient()
	second := getHTTPClient()
	require.Equal(t, first, second)
	require.Equal(t, 1, builds)
}

func TestLookupMapsResponseFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.RawQuery, "ISBN:9780134685991")
		_, _ = w.Write([]byte(`{"ISBN:9780134685991":{
			"title":"Effective Java",
			"publish_date":"2018",
			"authors":[{"name":"Joshua Bloch"}],
			"publishers":[{"name":"Addison-Wesley"}],
			"cover":{"medium":"https://covers.openlibrary.org/b/id/123-M.jpg"}
		}}`))
	})
	setupClient(t, mux)

	book, coverURL, err := Lookup(context.Background(), "9780134685991")
	require.NoError(t, err)

	assert.Equal(t, "9780134685991", book.ISBN)
	assert.Equal(t, "Effective Java", book.Title)
	assert.Equal(t, "Joshua Bloch", book.Author)
	assert.Equal(t, "Addison-Wesley", book.Publisher)
	assert.Equal(t, "2018", book.PublishedDate)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/123-M.jpg", coverURL)
}

func TestLookupMissingFieldsDefaultToEmpty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ISBN:9780000000000":{"title":"Bare Record"}}`))
	})
	setupClient(t, mux)

	book, coverURL, err := Lookup(context.Background(), "9780000000000")
	require.NoError(t, err)

	assert.Equal(t, "Bare Record", book.Title)
	assert.Empty(t, book.Author)
	assert.Empty(t, book.Publisher)
	assert.Empty(t, book.PublishedDate)
	assert.Empty(t, coverURL)
}

func TestLookupNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})
	setupClient(t, mux)

	_, _, err := Lookup(context.Background(), "9999999999999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, IsTransient(err))
}

func TestLookupServerErrorIsTransient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	setupClient(t, mux)

	_, _, err := Lookup(context.Background(), "9780134685991")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestLookupGarbageBodyIsTransient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	})
	setupClient(t, mux)

	_, _, err := Lookup(context.Background(), "9780134685991")
	require.Error(t, err)
	assert.True(t, IsTransient(err))
}

func TestLookupUsesCacheOnSecondCall(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"ISBN:9780134685991":{"title":"Effective Java"}}`))
	})
	setupClient(t, mux)

	_, _, err := Lookup(context.Background(), "9780134685991")
	require.NoError(t, err)
	_, _, err = Lookup(context.Background(), "9780134685991")
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
}

func TestEditionCoverURLPreference(t *testing.T) {
	var e Edition
	assert.Empty(t, e.CoverURL())

	e.Cover.Small = "s"
	assert.Equal(t, "s", e.CoverURL())

	e.Cover.Large = "l"
	assert.Equal(t, "l", e.CoverURL())

	e.Cover.Medium = "m"
	assert.Equal(t, "m", e.CoverURL())
}
