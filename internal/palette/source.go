// Package palette resolves the ordered colour list a run is built from:
// manual colours, a palette-source plugin or a built-in extractor.
package palette

import (
	"context"
	"errors"
	"fmt"
	"image/color"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/thumbweave/internal/colour"
	imgpkg "github.com/jmylchreest/thumbweave/internal/image"
)

// Plugin is an out-of-process palette source.
type Plugin interface {
	Name() string
	Extract(ctx context.Context, image []byte, count int) ([]color.Color, error)
}

// Request describes one palette resolution.
type Request struct {
	// Image is the decoded source. It is ignored when Colours is set.
	Image *imgpkg.Source
	// Count is the number of colours returned.
	Count int
	// Colours are manual hex colours that bypass extraction.
	Colours []string
}

// Options configures a Source.
type Options struct {
	Algorithm colour.Algorithm
	Plugin    Plugin
	Logger    hclog.Logger
}

// Source resolves palettes.
type Source struct {
	extractor colour.Extractor
	plugin    Plugin
	logger    hclog.Logger
}

// New creates a Source. A plugin, when set, replaces the built-in extractor.
func New(opts Options) (*Source, error) {
	s := &Source{plugin: opts.Plugin, logger: opts.Logger}
	if s.logger == nil {
		s.logger = hclog.NewNullLogger()
	}
	if s.plugin == nil {
		alg := opts.Algorithm
		if alg == "" {
			alg = colour.AlgorithmDominant
		}
		extractor, err := colour.NewExtractor(alg)
		if err != nil {
			return nil, fmt.Errorf("failed to create extractor: %w", err)
		}
		s.extractor = extractor
	}
	return s, nil
}

// Resolve returns exactly req.Count colours in dominance order. Sources that
// yield fewer distinct colours are padded by repeating from the most
// dominant one. Extraction failures are returned as *colour.ExtractionError.
func (s *Source) Resolve(ctx context.Context, req Request) (*colour.Palette, error) {
	if req.Count < 1 {
		return nil, fmt.Errorf("colour count must be at least 1, got %d", req.Count)
	}

	var (
		raw *colour.Palette
		err error
	)
	switch {
	case len(req.Colours) > 0:
		raw, err = colour.ParsePalette(req.Colours)
		if err != nil {
			return nil, fmt.Errorf("invalid manual palette: %w", err)
		}
		s.logger.Debug("using manual palette", "colours", raw.Len())
	case req.Image == nil:
		return nil, errors.New("no source image or manual colours given")
	case s.plugin != nil:
		raw, err = s.fromPlugin(ctx, req)
	default:
		raw, err = s.fromExtractor(req)
	}
	if err != nil {
		return nil, err
	}

	fitted, err := raw.Fit(req.Count)
	if err != nil {
		return nil, &colour.ExtractionError{Source: origin(req), Err: err}
	}
	if raw.Len() < req.Count {
		s.logger.Warn("palette has fewer colours than requested, repeating", "found", raw.Len(), "wanted", req.Count)
	}
	s.logger.Info("palette resolved", "colours", fitted.ToHex())
	return fitted, nil
}

func (s *Source) fromExtractor(req Request) (*colour.Palette, error) {
	s.logger.Debug("extracting palette", "origin", req.Image.Origin, "count", req.Count)
	p, err := s.extractor.Extract(req.Image.Image, req.Count)
	if err != nil {
		return nil, &colour.ExtractionError{Source: req.Image.Origin, Err: err}
	}
	return p, nil
}

func (s *Source) fromPlugin(ctx context.Context, req Request) (*colour.Palette, error) {
	s.logger.Debug("requesting palette from plugin", "plugin", s.plugin.Name(), "count", req.Count)
	colours, err := s.plugin.Extract(ctx, req.Image.Data, req.Count)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &colour.ExtractionError{
			Source: req.Image.Origin,
			Err:    fmt.Errorf("plugin %s: %w", s.plugin.Name(), err),
		}
	}

	rgb := make([]color.Color, len(colours))
	for i, c := range colours {
		rgb[i] = colour.ToRGB(c)
	}
	return colour.NewPalette(rgb), nil
}

func origin(req Request) string {
	if req.Image != nil {
		return req.Image.Origin
	}
	return "manual palette"
}
