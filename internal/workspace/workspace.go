// Package workspace manages the work directory a run renders into and the
// timestamped directory it is finally moved to.
package workspace

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/thumbweave/internal/security"
)

// TimestampLayout names finished run directories.
const TimestampLayout = "2006-01-02 15-04-05"

// maxSuffix bounds the collision suffixes tried when relocating.
const maxSuffix = 1000

// ErrWorkDirNotEmpty is returned by Prepare when a previous run left files
// behind in the work directory.
var ErrWorkDirNotEmpty = errors.New("work directory is not empty")

// Options configures a Workspace.
type Options struct {
	OutputPath      string
	WorkPath        string
	PaletteFilename string
	Logger          hclog.Logger
}

// Workspace owns the work directory for a single run.
type Workspace struct {
	outputPath      string
	workPath        string
	paletteFilename string
	logger          hclog.Logger
}

// New creates a Workspace. Nothing is touched on disk until Prepare.
func New(opts Options) (*Workspace, error) {
	if opts.OutputPath == "" || opts.WorkPath == "" {
		return nil, errors.New("output and work paths are required")
	}
	if err := security.ValidateFileName(opts.PaletteFilename, opts.WorkPath); err != nil {
		return nil, fmt.Errorf("invalid palette filename: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Workspace{
		outputPath:      opts.OutputPath,
		workPath:        opts.WorkPath,
		paletteFilename: opts.PaletteFilename,
		logger:          logger,
	}, nil
}

// Dir returns the work directory.
func (w *Workspace) Dir() string {
	return w.workPath
}

// Prepare creates the output and work directories. It fails with
// ErrWorkDirNotEmpty when the work directory already holds files, so that
// artifacts from an aborted run are never relocated with a new one.
func (w *Workspace) Prepare() error {
	if err := os.MkdirAll(w.outputPath, 0o755); err != nil { // #nosec G301 - output directory needs standard permissions
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.MkdirAll(w.workPath, 0o755); err != nil { // #nosec G301 - work directory needs standard permissions
		return fmt.Errorf("failed to create work directory: %w", err)
	}

	entries, err := os.ReadDir(w.workPath)
	if err != nil {
		return fmt.Errorf("failed to read work directory: %w", err)
	}
	if len(entries) > 0 {
		return fmt.Errorf("%w: %s holds %d entries from an earlier run", ErrWorkDirNotEmpty, w.workPath, len(entries))
	}

	w.logger.Debug("prepared work directory", "path", w.workPath)
	return nil
}

// StagePaletteImage saves the source image into the work directory under the
// palette filename, encoded by its extension.
func (w *Workspace) StagePaletteImage(img image.Image) (string, error) {
	path := filepath.Join(w.workPath, w.paletteFilename)
	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("failed to stage palette image: %w", err)
	}
	w.logger.Debug("staged palette image", "path", path)
	return path, nil
}

// Finalize moves the work directory to output/<timestamp>. When that name is
// taken, "_2", "_3" and so on are appended. It returns the final directory.
func (w *Workspace) Finalize(now time.Time) (string, error) {
	base := filepath.Join(w.outputPath, now.Format(TimestampLayout))

	for n := 1; n <= maxSuffix; n++ {
		target := base
		if n > 1 {
			target = fmt.Sprintf("%s_%d", base, n)
		}

		if _, err := os.Lstat(target); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to check %s: %w", target, err)
		}

		if err := os.Rename(w.workPath, target); err != nil {
			return "", fmt.Errorf("failed to move work directory to %s: %w", target, err)
		}
		w.logger.Info("run saved", "path", target)
		return target, nil
	}

	return "", fmt.Errorf("failed to find a free directory name for %s", base)
}
