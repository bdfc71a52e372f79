// Package security provides path and input-size guards.
package security

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrSizeLimit is returned by LimitedReader once the limit is exhausted.
var ErrSizeLimit = errors.New("input size limit exceeded")

// ValidateFileName checks that name is a plain file name which, joined with
// baseDir, stays inside baseDir.
func ValidateFileName(name, baseDir string) error {
	if name == "" {
		return fmt.Errorf("empty file name")
	}

	if strings.Contains(name, "..") {
		return fmt.Errorf("file name contains directory traversal (..) - not allowed: %q", name)
	}

	if filepath.IsAbs(name) || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("file name must not contain a path: %q", name)
	}

	// Ensure the final path would be within baseDir
	finalPath := filepath.Clean(filepath.Join(baseDir, name))
	cleanBase := filepath.Clean(baseDir)

	if !strings.HasPrefix(finalPath, cleanBase+string(filepath.Separator)) {
		return fmt.Errorf("file name would escape base directory: %q", name)
	}

	return nil
}

// LimitedReader wraps an io.Reader and fails once more than Remaining bytes
// have been requested. Unlike io.LimitReader it reports overflow as an error
// instead of a silent EOF.
type LimitedReader struct {
	R         io.Reader
	Remaining int64
}

// Read implements io.Reader with size limits.
func (l *LimitedReader) Read(p []byte) (int, error) {
	if l.Remaining <= 0 {
		return 0, ErrSizeLimit
	}
	if int64(len(p)) > l.Remaining {
		p = p[:l.Remaining]
	}
	n, err := l.R.Read(p)
	l.Remaining -= int64(n)
	return n, err
}

// NewLimitedReader creates a new LimitedReader with the specified size limit.
// One extra byte is allowed so that input of exactly maxBytes still reaches
// EOF before the limit trips.
func NewLimitedReader(r io.Reader, maxBytes int64) *LimitedReader {
	return &LimitedReader{
		R:         r,
		Remaining: maxBytes + 1,
	}
}

// ReadAllLimited reads r to EOF, failing with ErrSizeLimit when it holds
// more than maxBytes.
func ReadAllLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(NewLimitedReader(r, maxBytes))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrSizeLimit, maxBytes)
	}
	return data, nil
}
