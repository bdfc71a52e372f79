package colour

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// KMeansExtractor implements colour extraction using k-means clustering.
type KMeansExtractor struct {
	maxSamples int
	threshold  float64
}

// NewKMeansExtractor creates a new KMeansExtractor with default settings.
func NewKMeansExtractor() *KMeansExtractor {
	return &KMeansExtractor{
		maxSamples: 2000,
		threshold:  0.01,
	}
}

// Extract extracts colours from an image using k-means clustering.
// Clusters are returned largest first.
func (e *KMeansExtractor) Extract(img image.Image, count int) (*Palette, error) {
	if err := validateCount(img, count); err != nil {
		return nil, err
	}

	pixels := samplePixels(img, e.maxSamples)
	if len(pixels) == 0 {
		return nil, ErrNoColours
	}

	// Few distinct colours: clustering would only split identical points.
	unique := uniqueByFrequency(pixels)
	if count >= len(unique) {
		return NewPalette(unique), nil
	}

	dataset := make(clusters.Observations, 0, len(pixels))
	for _, p := range pixels {
		c, _ := colorful.MakeColor(p)
		dataset = append(dataset, clusters.Coordinates{c.R, c.G, c.B})
	}

	km, err := kmeans.NewWithOptions(e.threshold, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to configure k-means: %w", err)
	}
	cc, err := km.Partition(dataset, count)
	if err != nil {
		return nil, fmt.Errorf("k-means partition failed: %w", err)
	}

	slices.SortStableFunc(cc, func(a, b clusters.Cluster) int {
		return cmp.Compare(len(b.Observations), len(a.Observations))
	})

	colors := make([]color.Color, 0, len(cc))
	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		col := colorful.Color{R: c.Center[0], G: c.Center[1], B: c.Center[2]}.Clamped()
		r, g, b := col.RGB255()
		colors = append(colors, RGB{R: r, G: g, B: b})
	}
	if len(colors) == 0 {
		return nil, ErrNoColours
	}

	return NewPalette(colors), nil
}

// samplePixels samples opaque pixels from the image on a regular grid,
// keeping at most maxSamples of them.
func samplePixels(img image.Image, maxSamples int) []color.Color {
	bounds := img.Bounds()
	totalPixels := bounds.Dx() * bounds.Dy()
	if totalPixels == 0 {
		return nil
	}

	step := 1
	if totalPixels > maxSamples {
		step = max(int(math.Sqrt(float64(totalPixels)/float64(maxSamples))), 1)
	}

	pixels := make([]color.Color, 0, min(totalPixels, maxSamples))
	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			c := img.At(x, y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}
			pixels = append(pixels, c)
			if len(pixels) >= maxSamples {
				return pixels
			}
		}
	}

	return pixels
}

// uniqueByFrequency returns the distinct colours of pixels, most frequent first.
// Ties keep first-seen order.
func uniqueByFrequency(pixels []color.Color) []color.Color {
	counts := make(map[RGB]int)
	var order []RGB
	for _, p := range pixels {
		rgb := ToRGB(p)
		if counts[rgb] == 0 {
			order = append(order, rgb)
		}
		counts[rgb]++
	}

	slices.SortStableFunc(order, func(a, b RGB) int {
		return cmp.Compare(counts[b], counts[a])
	})

	out := make([]color.Color, len(order))
	for i, rgb := range order {
		out[i] = rgb
	}
	return out
}
