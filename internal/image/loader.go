// Package image provides utilities for loading source images.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "golang.org/x/image/bmp"  // Register BMP format
	_ "golang.org/x/image/tiff" // Register TIFF format
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/thumbweave/internal/security"
	httputil "github.com/jmylchreest/thumbweave/internal/util/http"
	"github.com/jmylchreest/thumbweave/internal/util/imagecache"
)

// StdinPath is the source path that reads the image from standard input.
const StdinPath = "-"

// Source is a decoded image together with the raw bytes it came from.
// The raw bytes are kept so the source can be handed to an out-of-process
// palette source unchanged.
type Source struct {
	Image  image.Image
	Format string
	Data   []byte
	Origin string
}

// Loader handles loading images from various sources.
type Loader interface {
	// Load loads an image from the given path.
	Load(ctx context.Context, path string) (*Source, error)
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// Load loads an image from a file path.
func (l *FileLoader) Load(_ context.Context, path string) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to read image file: %w", err)
	}

	return Decode(data, path)
}

// Decode decodes raw image bytes. origin is only used in messages.
func Decode(data []byte, origin string) (*Source, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", origin, err)
	}
	return &Source{Image: img, Format: format, Data: data, Origin: origin}, nil
}

// ValidateImagePath checks that path is a URL, the stdin marker, or a local
// file in a supported format.
func ValidateImagePath(path string) error {
	if path == "" {
		return fmt.Errorf("image path cannot be empty")
	}
	if path == StdinPath || IsURL(path) {
		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("image file not found: %s", path)
		}
		return fmt.Errorf("failed to access image path: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	if _, _, err := image.DecodeConfig(file); err != nil {
		return fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	return nil
}

// SupportedImageExtensions returns a list of supported image file extensions.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tif", ".tiff"}
}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(SupportedImageExtensions(), ext)
}

// IsURL reports whether path is an HTTP(S) URL.
func IsURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// SmartLoader loads images from local files, HTTP(S) URLs and stdin.
type SmartLoader struct {
	fileLoader *FileLoader
	stdin      io.Reader
	fetch      func(ctx context.Context, url string) ([]byte, error)
}

// NewSmartLoader creates a new SmartLoader instance reading "-" from stdin.
func NewSmartLoader(stdin io.Reader) *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		stdin:      stdin,
		fetch: func(ctx context.Context, url string) ([]byte, error) {
			return httputil.Fetch(ctx, url, httputil.FetchOptions{})
		},
	}
}

// WithCache makes URL loads go through cache.
func (l *SmartLoader) WithCache(cache *imagecache.Cache) *SmartLoader {
	l.fetch = cache.Fetch
	return l
}

// Load loads an image from a local path, an HTTP(S) URL, or stdin.
func (l *SmartLoader) Load(ctx context.Context, path string) (*Source, error) {
	switch {
	case path == StdinPath:
		if l.stdin == nil {
			return nil, fmt.Errorf("no stdin available")
		}
		data, err := security.ReadAllLimited(l.stdin, httputil.DefaultMaxBytes)
		if err != nil {
			return nil, fmt.Errorf("failed to read image from stdin: %w", err)
		}
		return Decode(data, "stdin")
	case IsURL(path):
		data, err := l.fetch(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
		}
		return Decode(data, path)
	default:
		return l.fileLoader.Load(ctx, path)
	}
}
