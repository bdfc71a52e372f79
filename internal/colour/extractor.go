package colour

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoColours is returned when an image yields no usable colours.
var ErrNoColours = errors.New("no colours found in image")

// ExtractionError reports that a palette could not be obtained from a source
// image. Interactive callers re-prompt on it; everything else treats it as fatal.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("palette extraction failed: %v", e.Err)
	}
	return fmt.Sprintf("palette extraction failed for %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor defines the interface for colour extraction algorithms.
type Extractor interface {
	// Extract extracts a colour palette from an image, most dominant first.
	// The count parameter specifies the number of colours to extract.
	Extract(img image.Image, count int) (*Palette, error)
}

// Algorithm represents the colour extraction algorithm type.
type Algorithm string

const (
	// AlgorithmDominant ranks colours by frequency using dominantcolor.
	AlgorithmDominant Algorithm = "dominant"

	// AlgorithmKMeans uses k-means clustering for colour extraction.
	AlgorithmKMeans Algorithm = "kmeans"
)

// ValidAlgorithms returns a list of valid algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmDominant,
		AlgorithmKMeans,
	}
}

// IsValidAlgorithm checks if the given algorithm name is valid.
func IsValidAlgorithm(alg Algorithm) bool {
	for _, valid := range ValidAlgorithms() {
		if alg == valid {
			return true
		}
	}
	return false
}

// NewExtractor creates a new Extractor based on the specified algorithm.
func NewExtractor(alg Algorithm) (Extractor, error) {
	switch alg {
	case AlgorithmDominant:
		return NewDominantExtractor(), nil
	case AlgorithmKMeans:
		return NewKMeansExtractor(), nil
	default:
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// validateCount is shared by the extractors.
func validateCount(img image.Image, count int) error {
	if img == nil {
		return fmt.Errorf("image cannot be nil")
	}
	if count < 1 {
		return fmt.Errorf("colour count must be at least 1, got %d", count)
	}
	if count > 256 {
		return fmt.Errorf("colour count too large: %d (maximum: 256)", count)
	}
	return nil
}
