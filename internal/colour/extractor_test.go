package colour

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

// stripes builds an image of vertical stripes whose widths follow weights.
func stripes(colors []color.RGBA, weights []int, height int) *image.RGBA {
	width := 0
	for _, w := range weights {
		width += w
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	x0 := 0
	for i, c := range colors {
		for x := x0; x < x0+weights[i]; x++ {
			for y := range height {
				img.SetRGBA(x, y, c)
			}
		}
		x0 += weights[i]
	}
	return img
}

func TestNewExtractor(t *testing.T) {
	for _, alg := range ValidAlgorithms() {
		if _, err := NewExtractor(alg); err != nil {
			t.Errorf("NewExtractor(%s) error = %v", alg, err)
		}
	}
	if _, err := NewExtractor("mediancut"); err == nil {
		t.Error("NewExtractor(mediancut) expected error")
	}
}

func TestIsValidAlgorithm(t *testing.T) {
	if !IsValidAlgorithm(AlgorithmDominant) {
		t.Error("dominant should be valid")
	}
	if IsValidAlgorithm("nope") {
		t.Error("nope should not be valid")
	}
}

func TestExtractorsRejectBadInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for _, alg := range ValidAlgorithms() {
		ex, _ := NewExtractor(alg)
		t.Run(string(alg), func(t *testing.T) {
			if _, err := ex.Extract(nil, 5); err == nil {
				t.Error("expected error for nil image")
			}
			if _, err := ex.Extract(img, 0); err == nil {
				t.Error("expected error for zero count")
			}
			if _, err := ex.Extract(img, 257); err == nil {
				t.Error("expected error for count > 256")
			}
		})
	}
}

func TestExtractorsFewColours(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	img := stripes([]color.RGBA{red, blue}, []int{30, 10}, 20)

	for _, alg := range ValidAlgorithms() {
		ex, _ := NewExtractor(alg)
		t.Run(string(alg), func(t *testing.T) {
			p, err := ex.Extract(img, 5)
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			got := p.ToRGBSlice()
			if len(got) != 2 {
				t.Fatalf("Extract() returned %d colours, want 2", len(got))
			}
			if got[0] != (RGB{R: 255}) {
				t.Errorf("most dominant = %v, want red", got[0])
			}
		})
	}
}

func TestExtractorsTransparentImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for _, alg := range ValidAlgorithms() {
		ex, _ := NewExtractor(alg)
		t.Run(string(alg), func(t *testing.T) {
			if _, err := ex.Extract(img, 5); !errors.Is(err, ErrNoColours) {
				t.Errorf("Extract() error = %v, want ErrNoColours", err)
			}
		})
	}
}

func TestKMeansExtractorManyColours(t *testing.T) {
	var colors []color.RGBA
	var weights []int
	for i := range 8 {
		colors = append(colors, color.RGBA{R: uint8(i * 30), G: uint8(255 - i*30), B: 128, A: 255})
		weights = append(weights, 10+i)
	}
	img := stripes(colors, weights, 10)

	p, err := NewKMeansExtractor().Extract(img, 5)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if p.Len() < 1 || p.Len() > 5 {
		t.Errorf("Extract() returned %d colours, want 1..5", p.Len())
	}
}

func TestExtractionErrorUnwrap(t *testing.T) {
	err := &ExtractionError{Source: "a.png", Err: ErrNoColours}
	if !errors.Is(err, ErrNoColours) {
		t.Error("ExtractionError should unwrap to its cause")
	}
	var target *ExtractionError
	if !errors.As(error(err), &target) || target.Source != "a.png" {
		t.Error("errors.As failed")
	}
}
