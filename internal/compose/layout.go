package compose

import (
	"image"
	"math"
)

// DefaultTextOffset is the upward bias applied to the vertically centred
// caption to compensate for font overhang.
const DefaultTextOffset = 15

// Point is a canvas coordinate; the origin is the top-left corner.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle from Min (inclusive) to Max (exclusive).
type Rect struct {
	Min, Max Point
}

// Image converts r to pixel coordinates. An inverted rectangle becomes empty
// rather than being flipped.
func (r Rect) Image() image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(round(r.Min.X), round(r.Min.Y)),
		Max: image.Pt(round(r.Max.X), round(r.Max.Y)),
	}
}

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool {
	return r.Image().Empty()
}

// Triangle is a filled three-vertex polygon.
type Triangle [3]Point

// Bounds returns the smallest Rect containing t.
func (t Triangle) Bounds() Rect {
	r := Rect{Min: t[0], Max: t[0]}
	for _, p := range t[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Legs returns the lengths of the two sides meeting at the right angle,
// and false if t has no axis-aligned right angle.
func (t Triangle) Legs() (float64, float64, bool) {
	for i := range 3 {
		a, b, c := t[i], t[(i+1)%3], t[(i+2)%3]
		ab := Point{b.X - a.X, b.Y - a.Y}
		ac := Point{c.X - a.X, c.Y - a.Y}
		if ab.X*ac.X+ab.Y*ac.Y != 0 {
			continue
		}
		if (ab.X == 0) == (ac.X == 0) {
			continue
		}
		return math.Hypot(ab.X, ab.Y), math.Hypot(ac.X, ac.Y), true
	}
	return 0, 0, false
}

// Corner names one of the four canvas corners.
type Corner int

const (
	BottomLeft Corner = iota
	TopRight
	TopLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case BottomLeft:
		return "bottom-left"
	case TopRight:
		return "top-right"
	case TopLeft:
		return "top-left"
	case BottomRight:
		return "bottom-right"
	default:
		return "unknown"
	}
}

// Edge names one of the four inner bands.
type Edge int

const (
	EdgeLeft Edge = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

func (e Edge) String() string {
	switch e {
	case EdgeLeft:
		return "left"
	case EdgeRight:
		return "right"
	case EdgeTop:
		return "top"
	case EdgeBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// Band is one of the four thin rectangles forming the inner frame.
type Band struct {
	Edge Edge
	Role Role
	Rect Rect
}

// Layout holds the geometric parameters of a thumbnail. It is fixed for a
// run and never mutated by the composer.
type Layout struct {
	Width  int
	Height int
	// Margin is both the inset of the inner rectangle and the band thickness.
	Margin float64
	// TextOffset shifts the caption block up from the exact vertical centre.
	TextOffset float64
}

// Degenerate reports whether the margin leaves no room for the inner
// rectangle. Such layouts still render.
func (l Layout) Degenerate() bool {
	return l.Margin <= 0 || 2*l.Margin >= float64(min(l.Width, l.Height))
}

// Canvas is the full canvas rectangle.
func (l Layout) Canvas() Rect {
	return Rect{Max: Point{float64(l.Width), float64(l.Height)}}
}

// Inner is the foreground rectangle inset by one margin.
func (l Layout) Inner() Rect {
	w, h, m := float64(l.Width), float64(l.Height), l.Margin
	return Rect{Min: Point{m, m}, Max: Point{w - m, h - m}}
}

// Bands returns the four bands in paint order: left, right, top, bottom.
// Later bands overwrite earlier ones where they cross, so the top band owns
// both top corner squares and the bottom band owns both bottom ones.
func (l Layout) Bands() [4]Band {
	w, h, m := float64(l.Width), float64(l.Height), l.Margin
	return [4]Band{
		{Edge: EdgeLeft, Role: RoleNear, Rect: Rect{Min: Point{m, m}, Max: Point{2 * m, h - m}}},
		{Edge: EdgeRight, Role: RoleFar, Rect: Rect{Min: Point{w - 2*m, m}, Max: Point{w - m, h - m}}},
		{Edge: EdgeTop, Role: RoleNear, Rect: Rect{Min: Point{m, m}, Max: Point{w - m, 2 * m}}},
		{Edge: EdgeBottom, Role: RoleFar, Rect: Rect{Min: Point{m, h - 2*m}, Max: Point{w - m, h - m}}},
	}
}

// Corners returns the four accent triangles in paint order: bottom-left,
// top-right, top-left, bottom-right. Each is a right triangle with legs of
// length Margin whose right angle sits on the inner rectangle's corner.
func (l Layout) Corners() [4]Triangle {
	w, h, m := float64(l.Width), float64(l.Height), l.Margin
	return [4]Triangle{
		BottomLeft:  {{m, h - 2*m}, {m, h - m}, {2 * m, h - m}},
		TopRight:    {{w - 2*m, m}, {w - m, m}, {w - m, 2 * m}},
		TopLeft:     {{m, m}, {2 * m, m}, {m, 2 * m}},
		BottomRight: {{w - 2*m, h - m}, {w - m, h - 2*m}, {w - m, h - m}},
	}
}

// TextOrigin returns the top-left corner of a caption block of the given
// size: centred horizontally, centred vertically less TextOffset.
func (l Layout) TextOrigin(blockWidth, blockHeight float64) Point {
	return Point{
		X: (float64(l.Width) - blockWidth) / 2,
		Y: (float64(l.Height)-blockHeight)/2 - l.TextOffset,
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
