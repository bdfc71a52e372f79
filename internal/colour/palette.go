// Package colour provides colour values, palettes and palette extraction.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// Palette represents an ordered collection of colours extracted from an image.
// Order is dominance order; it seeds permutation generation and carries no
// other meaning.
type Palette struct {
	Colors []color.Color
}

// NewPalette creates a new Palette with the given colours.
func NewPalette(colors []color.Color) *Palette {
	return &Palette{
		Colors: colors,
	}
}

// Len returns the number of colours in the palette.
func (p *Palette) Len() int {
	return len(p.Colors)
}

// RGB is an immutable 8-bit-per-channel colour.
type RGB struct {
	R uint8 `json:"r" yaml:"r"`
	G uint8 `json:"g" yaml:"g"`
	B uint8 `json:"b" yaml:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// RGBA implements color.Color, always fully opaque.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}.RGBA()
}

// NRGBA returns the colour as an opaque color.NRGBA.
func (rgb RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 0xff}
}

// ToRGB converts a color.Color to RGB, dropping alpha.
func ToRGB(c color.Color) RGB {
	if rgb, ok := c.(RGB); ok {
		return rgb
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// ToHex converts the palette colours to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hexColors[i] = ToRGB(c).Hex()
	}
	return hexColors
}

// ToRGBSlice converts the palette colours to RGB values.
func (p *Palette) ToRGBSlice() []RGB {
	rgbColors := make([]RGB, len(p.Colors))
	for i, c := range p.Colors {
		rgbColors[i] = ToRGB(c)
	}
	return rgbColors
}

// ColorJSON represents a colour in JSON output format.
type ColorJSON struct {
	Hex string `json:"hex"`
	RGB RGB    `json:"rgb"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	Colors []ColorJSON `json:"colors"`
}

// ToJSON converts the palette to JSON format.
func (p *Palette) ToJSON() ([]byte, error) {
	colors := make([]ColorJSON, len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		colors[i] = ColorJSON{
			Hex: rgb.Hex(),
			RGB: rgb,
		}
	}

	return json.MarshalIndent(PaletteJSON{
		Count:  len(p.Colors),
		Colors: colors,
	}, "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if len(p.Colors) == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colours:\n", len(p.Colors))
	for i, c := range p.Colors {
		rgb := ToRGB(c)
		result += fmt.Sprintf("  %2d: %s (%s)\n", i+1, rgb.Hex(), rgb.String())
	}
	return result
}

// Get returns the colour at the specified index.
func (p *Palette) Get(index int) (color.Color, error) {
	if index < 0 || index >= len(p.Colors) {
		return nil, fmt.Errorf("index out of bounds: %d (palette has %d colours)", index, len(p.Colors))
	}
	return p.Colors[index], nil
}

// Fit returns a palette of exactly n colours. Surplus colours are dropped;
// missing ones are filled by cycling from the most dominant colour, so a flat
// image still yields a usable palette.
func (p *Palette) Fit(n int) (*Palette, error) {
	if len(p.Colors) == 0 {
		return nil, ErrNoColours
	}
	out := make([]color.Color, n)
	for i := range n {
		out[i] = p.Colors[i%len(p.Colors)]
	}
	return NewPalette(out), nil
}
