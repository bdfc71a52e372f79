// Package imagecache keeps downloaded source images on disk so that a URL
// is fetched only once across runs.
package imagecache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	httputil "github.com/jmylchreest/thumbweave/internal/util/http"
)

// Cache stores fetched images under a directory, keyed by URL.
type Cache struct {
	dir   string
	fetch func(ctx context.Context, url string) ([]byte, error)
}

// New creates a Cache rooted at dir. The directory is created on first
// write.
func New(dir string) *Cache {
	return &Cache{
		dir: dir,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return httputil.Fetch(ctx, url, httputil.FetchOptions{})
		},
	}
}

// Path returns where the image for url is cached.
func (c *Cache) Path(url string) string {
	return filepath.Join(c.dir, filename(url))
}

// filename derives a stable name from the URL hash and its extension.
func filename(url string) string {
	hash := sha256.Sum256([]byte(url))

	ext := filepath.Ext(url)
	if idx := strings.IndexAny(ext, "?#"); idx != -1 {
		ext = ext[:idx]
	}
	if ext == "" || len(ext) > 5 || strings.ContainsRune(ext, '/') {
		ext = ".img"
	}
	return fmt.Sprintf("%x%s", hash[:16], strings.ToLower(ext))
}

// Fetch returns the cached bytes for url, downloading and storing them on a
// miss.
func (c *Cache) Fetch(ctx context.Context, url string) ([]byte, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("invalid URL: must start with http:// or https://")
	}

	path := c.Path(url)
	data, err := os.ReadFile(path) // #nosec G304 -- path is derived from a hash inside the cache directory
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read cached image: %w", err)
	}

	data, err = c.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil { // #nosec G301 - cache directory needs standard permissions
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(c.dir, ".download-*")
	if err != nil {
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("failed to store cached image: %w", err)
	}
	return data, nil
}
