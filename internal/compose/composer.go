// Package compose renders thumbnails: a layered frame of rectangles and
// corner triangles in five palette colours with a centred caption on top.
// Rendering is deterministic; the same inputs always produce the same pixels.
package compose

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/vector"

	"github.com/jmylchreest/thumbweave/internal/colour"
)

// ArtifactSpec names rendered files as {BaseName}-{index}.{Extension}.
type ArtifactSpec struct {
	BaseName  string
	Extension string
}

// Name returns the file name for the artifact with the given index.
func (s ArtifactSpec) Name(index int) string {
	return fmt.Sprintf("%s-%d.%s", s.BaseName, index, s.Extension)
}

// Artifact is one persisted thumbnail.
type Artifact struct {
	Index int
	Path  string
}

// ArtifactError reports a thumbnail that could not be written.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("failed to write thumbnail %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

// Composer renders compositions onto a fixed layout.
type Composer struct {
	layout   Layout
	fontSpec FontSpec
	font     *opentype.Font
	artifact ArtifactSpec
	format   imaging.Format
}

// New creates a Composer. The font is parsed here so an unusable font fails
// before anything is rendered; the returned error is a *FontLoadError in
// that case.
func New(layout Layout, fontSpec FontSpec, artifact ArtifactSpec) (*Composer, error) {
	if layout.Width <= 0 || layout.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", layout.Width, layout.Height)
	}
	if artifact.BaseName == "" {
		return nil, fmt.Errorf("artifact base name cannot be empty")
	}
	format, err := imaging.FormatFromExtension(artifact.Extension)
	if err != nil {
		return nil, fmt.Errorf("unsupported output extension %q: %w", artifact.Extension, err)
	}

	f, err := LoadFont(fontSpec)
	if err != nil {
		return nil, err
	}

	return &Composer{
		layout:   layout,
		fontSpec: fontSpec,
		font:     f,
		artifact: artifact,
		format:   format,
	}, nil
}

// Layout returns the composer's layout.
func (c *Composer) Layout() Layout {
	return c.layout
}

// Render paints one thumbnail. Paint order: background, foreground, bands,
// corner accents, caption.
func (c *Composer) Render(comp Composition, caption string) (*image.NRGBA, error) {
	l := c.layout
	canvas := imaging.New(l.Width, l.Height, comp.Background.NRGBA())

	fillRect(canvas, l.Inner(), comp.Foreground)
	for _, b := range l.Bands() {
		fillRect(canvas, b.Rect, comp.Colour(b.Role))
	}
	for _, t := range l.Corners() {
		fillTriangle(canvas, t, comp.Accent)
	}

	face, err := newFace(c.font, c.fontSpec.Size)
	if err != nil {
		return nil, &FontLoadError{Path: c.fontSpec.Path, Err: err}
	}
	defer face.Close()

	block := MeasureText(face, caption)
	if !block.Blank() {
		block.Draw(canvas, face, l.TextOrigin(block.Width, block.Height), comp.Text.NRGBA())
	}

	return canvas, nil
}

// Encode writes img to w in the configured output format.
func (c *Composer) Encode(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, c.format)
}

// Write persists img into dir under the artifact name for index. A partially
// written file is removed on failure.
func (c *Composer) Write(img image.Image, dir string, index int) (Artifact, error) {
	path := filepath.Join(dir, c.artifact.Name(index))

	f, err := os.Create(path) // #nosec G304 - Output path is built from configuration
	if err != nil {
		return Artifact{}, &ArtifactError{Path: path, Err: err}
	}
	if err := c.Encode(f, img); err != nil {
		f.Close()
		os.Remove(path)
		return Artifact{}, &ArtifactError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return Artifact{}, &ArtifactError{Path: path, Err: err}
	}

	return Artifact{Index: index, Path: path}, nil
}

// Compose renders comp with caption and writes it as artifact index in dir.
func (c *Composer) Compose(dir string, index int, comp Composition, caption string) (Artifact, error) {
	img, err := c.Render(comp, caption)
	if err != nil {
		return Artifact{}, err
	}
	return c.Write(img, dir, index)
}

func fillRect(dst *image.NRGBA, r Rect, c colour.RGB) {
	draw.Draw(dst, r.Image(), image.NewUniform(c.NRGBA()), image.Point{}, draw.Src)
}

func fillTriangle(dst *image.NRGBA, t Triangle, c colour.RGB) {
	b := dst.Bounds()
	tb := t.Bounds().Image()
	if tb.Empty() || !tb.In(b) {
		// Only degenerate margins push a corner off the canvas.
		return
	}
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(float32(t[0].X), float32(t[0].Y))
	z.LineTo(float32(t[1].X), float32(t[1].Y))
	z.LineTo(float32(t[2].X), float32(t[2].Y))
	z.ClosePath()
	z.Draw(dst, b, image.NewUniform(c.NRGBA()), image.Point{})
}
