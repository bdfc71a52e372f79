package colour

import (
	"image"
	"image/color"

	"github.com/cenkalti/dominantcolor"
)

// DominantExtractor ranks colours by how much of the image they cover.
type DominantExtractor struct {
	maxSamples int
}

// NewDominantExtractor creates a DominantExtractor with default settings.
func NewDominantExtractor() *DominantExtractor {
	return &DominantExtractor{maxSamples: 2000}
}

// Extract returns up to count colours, heaviest first.
func (e *DominantExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if err := validateCount(img, count); err != nil {
		return nil, err
	}

	unique := uniqueByFrequency(samplePixels(img, e.maxSamples))
	if len(unique) == 0 {
		return nil, ErrNoColours
	}
	if count >= len(unique) {
		return NewPalette(unique), nil
	}

	found := dominantcolor.FindWeight(img, count)
	if len(found) == 0 {
		return nil, ErrNoColours
	}

	colors := make([]color.Color, 0, len(found))
	for _, c := range found {
		colors = append(colors, RGB{R: c.RGBA.R, G: c.RGBA.G, B: c.RGBA.B})
	}
	return NewPalette(colors), nil
}
