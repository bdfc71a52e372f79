package compose

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// lineSpacing is the gap in pixels between caption lines.
const lineSpacing = 4

// TextBlock is a measured multi-line caption.
type TextBlock struct {
	Lines      []string
	LineWidths []float64
	Width      float64
	Height     float64
	lineHeight float64
	ascent     float64
}

// MeasureText lays out caption with face, splitting on line breaks. The block
// is as wide as its widest line and as tall as all lines plus the gaps.
func MeasureText(face font.Face, caption string) TextBlock {
	metrics := face.Metrics()
	tb := TextBlock{
		Lines:      strings.Split(caption, "\n"),
		lineHeight: fromFixed(metrics.Height),
		ascent:     fromFixed(metrics.Ascent),
	}

	tb.LineWidths = make([]float64, len(tb.Lines))
	for i, line := range tb.Lines {
		w := fromFixed(font.MeasureString(face, line))
		tb.LineWidths[i] = w
		tb.Width = math.Max(tb.Width, w)
	}

	n := float64(len(tb.Lines))
	tb.Height = n*tb.lineHeight + (n-1)*lineSpacing
	return tb
}

// Blank reports whether the caption has nothing to draw.
func (tb TextBlock) Blank() bool {
	return tb.Width == 0
}

// Draw renders the block with its top-left corner at origin. Each line is
// centred within the block.
func (tb TextBlock) Draw(dst *image.NRGBA, face font.Face, origin Point, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
	}
	for i, line := range tb.Lines {
		if line == "" {
			continue
		}
		x := origin.X + (tb.Width-tb.LineWidths[i])/2
		y := origin.Y + float64(i)*(tb.lineHeight+lineSpacing) + tb.ascent
		d.Dot = fixed.Point26_6{X: toFixed(x), Y: toFixed(y)}
		d.DrawString(line)
	}
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
