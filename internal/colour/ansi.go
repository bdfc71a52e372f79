package colour

import (
	"fmt"
	"strings"
)

const (
	ansiReset    = "\033[0m"
	ansiFgPrefix = "\033[38;2;"
	ansiBgPrefix = "\033[48;2;"
	defaultWidth = 8
)

// Swatch returns a solid block of width cells in c using 24-bit ANSI
// background colour.
func Swatch(c RGB, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	return background(c) + strings.Repeat(" ", width) + ansiReset
}

// LabelledSwatch returns a swatch with text centred on it, drawn in black or
// white, whichever reads better on c.
func LabelledSwatch(c RGB, text string, width int) string {
	if width <= 0 {
		width = defaultWidth
	}

	fg := RGB{R: 255, G: 255, B: 255}
	if Luminance(c) > 0.5 {
		fg = RGB{}
	}

	if len(text) > width {
		text = text[:width]
	}
	left := (width - len(text)) / 2
	text = strings.Repeat(" ", left) + text + strings.Repeat(" ", width-len(text)-left)

	return background(c) + fmt.Sprintf("%s%d;%d;%dm", ansiFgPrefix, fg.R, fg.G, fg.B) + text + ansiReset
}

func background(c RGB) string {
	return fmt.Sprintf("%s%d;%d;%dm", ansiBgPrefix, c.R, c.G, c.B)
}
