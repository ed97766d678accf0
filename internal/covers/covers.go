// Package covers maintains a best-effort local mirror of one cover image
// per ISBN. Cover absence is cosmetic and never fails a caller: every
// failure here degrades to "no cover" with a warning log.
package covers

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"stacks/internal/fileutil"
	"stacks/internal/ratelimit"
)

const (
	placeholderName = "placeholder.png"

	// Placeholder dimensions match the detail-view cover size
	placeholderWidth  = 150
	placeholderHeight = 220
)

// Swappable for tests
var httpClientNew = func() *http.Client {
	return &http.Client{Timeout: 30 * time.Second}
}

var (
	downloadLimiter *ratelimit.Limiter
	limiterOnce     sync.Once
)

func getRateLimiter() *ratelimit.Limiter {
	limiterOnce.Do(func() {
		downloadLimiter = ratelimit.New("covers", 2)
	})
	return downloadLimiter
}

// Cache stores cover files in one directory, named by normalized ISBN.
type Cache struct {
	dir string
}

// New creates a cover cache rooted at dir. The directory is created lazily
// on first download.
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the directory holding the cached covers.
func (c *Cache) Dir() string {
	return c.dir
}

// PathFor returns the deterministic cover path for an ISBN. The file may or
// may not exist.
func (c *Cache) PathFor(isbn string) string {
	return filepath.Join(c.dir, isbn+".jpg")
}

// Ensure returns a local cover path for the ISBN, downloading the remote
// image on a cache miss. Returns "" when no cover can be produced - missing
// URL, network failure, non-image payload - without surfacing an error.
func (c *Cache) Ensure(ctx context.Context, isbn, coverURL string) string {
	localPath := c.PathFor(isbn)
	if fileutil.FileExists(localPath) {
		slog.Debug("Cover already cached", "isbn", isbn, "path", localPath)
		return localPath
	}

	if coverURL == "" {
		return ""
	}

	if err := c.download(ctx, coverURL, localPath); err != nil {
		slog.Warn("Cover download failed, continuing without cover",
			"isbn", isbn, "url", coverURL, "error", err)
		return ""
	}

	slog.Info("Downloaded cover", "isbn", isbn, "path", localPath)
	return localPath
}

func (c *Cache) download(ctx context.Context, url, localPath string) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create covers directory: %w", err)
	}

	if err := getRateLimiter().Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := httpClientNew().Do(req)
	if err != nil {
		return fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, url)
	}

	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create cover file: %w", err)
	}

	_, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("failed to write cover file: copy=%v close=%v", copyErr, closeErr)
	}

	// A 200 response is not necessarily an image; keep only files that
	// decode cleanly.
	if err := validateImage(localPath); err != nil {
		_ = os.Remove(localPath)
		return fmt.Errorf("downloaded cover is not a valid image: %w", err)
	}

	return nil
}

func validateImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = imaging.Decode(f)
	return err
}

// Placeholder returns the path of the shared placeholder image, generating
// a plain grey cover on first use.
func (c *Cache) Placeholder() (string, error) {
	path := filepath.Join(c.dir, placeholderName)
	if fileutil.FileExists(path) {
		return path, nil
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}

	img := imaging.New(placeholderWidth, placeholderHeight, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to create placeholder image: %w", err)
	}

	return path, nil
}
