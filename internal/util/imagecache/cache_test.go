package imagecache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFetchCachesDownloads(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	c := New(dir)
	calls := 0
	c.fetch = func(context.Context, string) ([]byte, error) {
		calls++
		return []byte("image bytes"), nil
	}

	url := "https://example.com/wallpaper.PNG?size=large"
	for range 2 {
		data, err := c.Fetch(context.Background(), url)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if string(data) != "image bytes" {
			t.Errorf("Fetch() = %q", data)
		}
	}
	if calls != 1 {
		t.Errorf("downloaded %d times, want 1", calls)
	}
	if !strings.HasSuffix(c.Path(url), ".png") {
		t.Errorf("Path() = %s, want a .png suffix", c.Path(url))
	}
	if _, err := os.Stat(c.Path(url)); err != nil {
		t.Errorf("cached file missing: %v", err)
	}
}

func TestFetchErrors(t *testing.T) {
	c := New(t.TempDir())
	c.fetch = func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection refused")
	}

	if _, err := c.Fetch(context.Background(), "ftp://example.com/a.png"); err == nil {
		t.Error("expected error for non-HTTP URL")
	}
	url := "https://example.com/a.png"
	if _, err := c.Fetch(context.Background(), url); err == nil {
		t.Error("expected download error")
	}
	if _, err := os.Stat(c.Path(url)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("failed download should not be cached, stat error = %v", err)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		url     string
		wantExt string
	}{
		{"https://example.com/a.jpg", ".jpg"},
		{"https://example.com/a.webp#frag", ".webp"},
		{"https://example.com/image", ".img"},
		{"https://example.com/a.verylongext", ".img"},
	}
	for _, tt := range tests {
		got := filename(tt.url)
		if !strings.HasSuffix(got, tt.wantExt) || len(got) != 32+len(tt.wantExt) {
			t.Errorf("filename(%q) = %q, want 32 hex chars + %s", tt.url, got, tt.wantExt)
		}
	}
	if filename("https://a/x.png") == filename("https://b/x.png") {
		t.Error("different URLs should not share a cache file")
	}
}
