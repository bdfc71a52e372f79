package colour

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ParseHex(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RGB{}, fmt.Errorf("empty colour")
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) == 4 {
		s = "#" + strings.Repeat(s[1:2], 2) + strings.Repeat(s[2:3], 2) + strings.Repeat(s[3:4], 2)
	}

	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return RGB{}, fmt.Errorf("invalid hex colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// ParsePalette parses a list of hex colours into a palette, preserving order.
func ParsePalette(values []string) (*Palette, error) {
	colors := make([]color.Color, 0, len(values))
	for i, v := range values {
		rgb, err := ParseHex(v)
		if err != nil {
			return nil, fmt.Errorf("colour %d: %w", i+1, err)
		}
		colors = append(colors, rgb)
	}
	return NewPalette(colors), nil
}

// Luminance returns the relative luminance of c in [0,1].
func Luminance(c color.Color) float64 {
	col, _ := colorful.MakeColor(c)
	r, g, b := col.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}
