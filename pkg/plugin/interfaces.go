package plugin

import (
	"context"
	"image/color"
)

// PaletteSource is the interface palette-source plugins implement.
type PaletteSource interface {
	// Extract returns up to req.Count colours for the image, most dominant
	// first. The host pads short results.
	Extract(ctx context.Context, req ExtractRequest) ([]color.Color, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}
