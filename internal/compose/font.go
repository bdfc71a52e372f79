package compose

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
)

// FontSpec identifies the caption font. An empty Path selects the embedded
// Go Bold face.
type FontSpec struct {
	Path string
	Size float64
}

// FontLoadError reports a font that could not be read or parsed.
type FontLoadError struct {
	Path string
	Err  error
}

func (e *FontLoadError) Error() string {
	return fmt.Sprintf("failed to load font %q: %v", e.Path, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// LoadFont reads and parses the font named by spec. TrueType/OpenType
// collections yield their first face.
func LoadFont(spec FontSpec) (*opentype.Font, error) {
	if spec.Size <= 0 {
		return nil, &FontLoadError{Path: spec.Path, Err: fmt.Errorf("font size must be positive, got %g", spec.Size)}
	}

	data := gobold.TTF
	if spec.Path != "" {
		b, err := os.ReadFile(spec.Path) // #nosec G304 - User-configured font path, intended to be read
		if err != nil {
			return nil, &FontLoadError{Path: spec.Path, Err: err}
		}
		data = b
	}

	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}
	coll, cerr := opentype.ParseCollection(data)
	if cerr != nil || coll.NumFonts() == 0 {
		return nil, &FontLoadError{Path: spec.Path, Err: err}
	}
	f, err = coll.Font(0)
	if err != nil {
		return nil, &FontLoadError{Path: spec.Path, Err: err}
	}
	return f, nil
}

// newFace opens a face of the given size. The caller must Close it.
func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
