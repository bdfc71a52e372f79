// Package thumbnail drives the composer across palette orderings.
package thumbnail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/thumbweave/internal/colour"
	"github.com/jmylchreest/thumbweave/internal/compose"
	"github.com/jmylchreest/thumbweave/internal/permute"
)

// RunMode selects how many orderings a run renders.
type RunMode string

const (
	// RunModeFirst renders only the first ordering.
	RunModeFirst RunMode = "first"
	// RunModeAll renders every ordering, optionally capped by a limit.
	RunModeAll RunMode = "all"
)

// ValidRunModes returns the supported run modes.
func ValidRunModes() []RunMode {
	return []RunMode{RunModeFirst, RunModeAll}
}

// ParseRunMode parses a run mode name, case-insensitively.
func ParseRunMode(s string) (RunMode, error) {
	mode := RunMode(strings.ToLower(strings.TrimSpace(s)))
	for _, m := range ValidRunModes() {
		if m == mode {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown run mode %q (valid: first, all)", s)
}

// ErrPaletteTooSmall is returned when the palette cannot fill every role.
var ErrPaletteTooSmall = errors.New("palette has fewer colours than roles")

// Composer renders and persists one artifact.
type Composer interface {
	Compose(dir string, index int, comp compose.Composition, caption string) (compose.Artifact, error)
}

// Options configures a Driver.
type Options struct {
	Mode   RunMode
	Limit  int
	Logger hclog.Logger
}

// Driver enumerates orderings of a palette and renders one artifact per
// ordering, strictly in sequence. The artifact index is the only state
// carried between renders.
type Driver struct {
	composer Composer
	mode     RunMode
	limit    int
	logger   hclog.Logger
}

// NewDriver creates a Driver. An empty mode defaults to RunModeFirst.
func NewDriver(composer Composer, opts Options) (*Driver, error) {
	if composer == nil {
		return nil, errors.New("composer is required")
	}
	mode := opts.Mode
	if mode == "" {
		mode = RunModeFirst
	}
	if _, err := ParseRunMode(string(mode)); err != nil {
		return nil, err
	}
	if opts.Limit < 0 {
		return nil, fmt.Errorf("limit must not be negative, got %d", opts.Limit)
	}
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Driver{
		composer: composer,
		mode:     mode,
		limit:    opts.Limit,
		logger:   logger,
	}, nil
}

// Planned returns how many artifacts a run over n colours will produce.
func (d *Driver) Planned(n int) int {
	total := permute.Count(n, compose.RoleCount)
	switch {
	case total == 0:
		return 0
	case d.mode == RunModeFirst:
		return 1
	case d.limit > 0 && d.limit < total:
		return d.limit
	default:
		return total
	}
}

// Run renders artifacts into dir for the orderings of palette. Indices start
// at 1. The first failing render aborts the run and the artifacts written so
// far are returned alongside the error. Cancellation is observed between
// renders.
func (d *Driver) Run(ctx context.Context, palette []colour.RGB, caption, dir string) ([]compose.Artifact, error) {
	if len(palette) < compose.RoleCount {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrPaletteTooSmall, len(palette), compose.RoleCount)
	}

	planned := d.Planned(len(palette))
	d.logger.Debug("starting run", "mode", d.mode, "colours", len(palette), "planned", planned)

	artifacts := make([]compose.Artifact, 0, planned)
	for index, tuple := range permute.Tuples(palette, compose.RoleCount) {
		if index > planned {
			break
		}
		if err := ctx.Err(); err != nil {
			return artifacts, fmt.Errorf("run cancelled after %d artifacts: %w", len(artifacts), err)
		}

		comp, err := compose.FromTuple(tuple)
		if err != nil {
			return artifacts, fmt.Errorf("failed to build composition %d: %w", index, err)
		}

		artifact, err := d.composer.Compose(dir, index, comp, caption)
		if err != nil {
			return artifacts, fmt.Errorf("failed to render artifact %d: %w", index, err)
		}
		d.logger.Debug("rendered artifact", "index", index, "path", artifact.Path)
		artifacts = append(artifacts, artifact)
	}

	d.logger.Info("run complete", "artifacts", len(artifacts))
	return artifacts, nil
}
