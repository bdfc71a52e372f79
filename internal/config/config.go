// Package config builds the immutable runtime configuration from defaults,
// .env files, YAML files, the environment and command-line flags.
package config

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/jmylchreest/thumbweave/internal/colour"
	"github.com/jmylchreest/thumbweave/internal/compose"
	"github.com/jmylchreest/thumbweave/internal/thumbnail"
)

// Config is the effective configuration for one invocation. It is built once
// by Load and passed down by value.
type Config struct {
	OutputPath           string  `yaml:"output_path"`
	TmpPath              string  `yaml:"tmp_path"`
	PaletteFilename      string  `yaml:"palette_filename"`
	ColourCount          int     `yaml:"colour_count"`
	InnerRectangleMargin float64 `yaml:"inner_rectangle_margin"`
	ThumbnailWidth       int     `yaml:"thumbnail_width"`
	ThumbnailHeight      int     `yaml:"thumbnail_height"`
	OutputFilename       string  `yaml:"output_filename"`
	OutputExtension      string  `yaml:"output_extension"`
	FontLocation         string  `yaml:"font_location"`
	FontSize             float64 `yaml:"font_size"`
	TextOffset           float64 `yaml:"text_offset"`
	RunMode              string  `yaml:"run_mode"`
	Limit                int     `yaml:"limit"`
	Algorithm            string  `yaml:"algorithm"`
	PalettePlugin        string  `yaml:"palette_plugin"`
	ImageCache           string  `yaml:"image_cache"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		OutputPath:           "output",
		TmpPath:              filepath.Join("output", "tmp"),
		PaletteFilename:      "palette.png",
		ColourCount:          compose.RoleCount,
		InnerRectangleMargin: 25,
		ThumbnailWidth:       1280,
		ThumbnailHeight:      720,
		OutputFilename:       "thumbnail",
		OutputExtension:      "PNG",
		FontSize:             124,
		TextOffset:           compose.DefaultTextOffset,
		RunMode:              string(thumbnail.RunModeFirst),
		Algorithm:            string(colour.AlgorithmDominant),
	}
}

// ValidationError lists every problem found in a configuration.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Validate checks the configuration and returns a *ValidationError naming
// every invalid key, or nil.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.ColourCount != compose.RoleCount {
		add("colour_count must be %d, got %d", compose.RoleCount, c.ColourCount)
	}
	if c.ThumbnailWidth <= 0 {
		add("thumbnail_width must be positive, got %d", c.ThumbnailWidth)
	}
	if c.ThumbnailHeight <= 0 {
		add("thumbnail_height must be positive, got %d", c.ThumbnailHeight)
	}
	if math.IsNaN(c.InnerRectangleMargin) || math.IsInf(c.InnerRectangleMargin, 0) {
		add("inner_rectangle_margin must be finite")
	}
	if math.IsNaN(c.TextOffset) || math.IsInf(c.TextOffset, 0) {
		add("text_offset must be finite")
	}
	if !(c.FontSize > 0) || math.IsInf(c.FontSize, 0) {
		add("font_size must be positive, got %g", c.FontSize)
	}

	if c.OutputPath == "" {
		add("output_path must not be empty")
	}
	if c.TmpPath == "" {
		add("tmp_path must not be empty")
	}
	if c.OutputFilename == "" {
		add("output_filename must not be empty")
	} else if strings.ContainsAny(c.OutputFilename, `/\`) {
		add("output_filename must not contain a path separator: %q", c.OutputFilename)
	}
	if _, err := imaging.FormatFromExtension(c.OutputExtension); err != nil {
		add("output_extension %q is not a supported image format", c.OutputExtension)
	}
	if c.PaletteFilename == "" || strings.ContainsAny(c.PaletteFilename, `/\`) {
		add("palette_filename must be a plain file name, got %q", c.PaletteFilename)
	} else if _, err := imaging.FormatFromFilename(c.PaletteFilename); err != nil {
		add("palette_filename %q has no supported image extension", c.PaletteFilename)
	}

	if _, err := thumbnail.ParseRunMode(c.RunMode); err != nil {
		add("run_mode: %v", err)
	}
	if c.Limit < 0 {
		add("limit must not be negative, got %d", c.Limit)
	}
	if c.PalettePlugin == "" && !colour.IsValidAlgorithm(colour.Algorithm(c.Algorithm)) {
		add("algorithm %q is not one of %v", c.Algorithm, colour.ValidAlgorithms())
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Layout returns the composer geometry.
func (c Config) Layout() compose.Layout {
	return compose.Layout{
		Width:      c.ThumbnailWidth,
		Height:     c.ThumbnailHeight,
		Margin:     c.InnerRectangleMargin,
		TextOffset: c.TextOffset,
	}
}

// FontSpec returns the caption font parameters.
func (c Config) FontSpec() compose.FontSpec {
	return compose.FontSpec{Path: c.FontLocation, Size: c.FontSize}
}

// ArtifactSpec returns the artifact naming parameters.
func (c Config) ArtifactSpec() compose.ArtifactSpec {
	return compose.ArtifactSpec{BaseName: c.OutputFilename, Extension: c.OutputExtension}
}

// Mode returns the parsed run mode. Call Validate first.
func (c Config) Mode() thumbnail.RunMode {
	mode, err := thumbnail.ParseRunMode(c.RunMode)
	if err != nil {
		return thumbnail.RunModeFirst
	}
	return mode
}

// DriverOptions returns the driver settings without a logger.
func (c Config) DriverOptions() thumbnail.Options {
	return thumbnail.Options{Mode: c.Mode(), Limit: c.Limit}
}
