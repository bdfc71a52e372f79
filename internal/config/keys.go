package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes configuration keys in the process environment.
const EnvPrefix = "THUMBWEAVE_"

type kind int

const (
	kindString kind = iota
	kindInt
	kindFloat
)

type key struct {
	name  string
	kind  kind
	usage string
	get   func(*Config) any
}

// keys lists every configuration key in display order.
var keys = []key{
	{"output_path", kindString, "directory that receives finished runs", func(c *Config) any { return &c.OutputPath }},
	{"tmp_path", kindString, "work directory for the run in progress", func(c *Config) any { return &c.TmpPath }},
	{"palette_filename", kindString, "file name of the staged source image", func(c *Config) any { return &c.PaletteFilename }},
	{"colour_count", kindInt, "number of colours to extract (must be 5)", func(c *Config) any { return &c.ColourCount }},
	{"inner_rectangle_margin", kindFloat, "frame thickness in pixels", func(c *Config) any { return &c.InnerRectangleMargin }},
	{"thumbnail_width", kindInt, "thumbnail width in pixels", func(c *Config) any { return &c.ThumbnailWidth }},
	{"thumbnail_height", kindInt, "thumbnail height in pixels", func(c *Config) any { return &c.ThumbnailHeight }},
	{"output_filename", kindString, "base name of each artifact", func(c *Config) any { return &c.OutputFilename }},
	{"output_extension", kindString, "artifact extension, which selects the encoder", func(c *Config) any { return &c.OutputExtension }},
	{"font_location", kindString, "TrueType/OpenType font file (empty uses the embedded Go Bold)", func(c *Config) any { return &c.FontLocation }},
	{"font_size", kindFloat, "caption font size in points", func(c *Config) any { return &c.FontSize }},
	{"text_offset", kindFloat, "upward shift of the caption block in pixels", func(c *Config) any { return &c.TextOffset }},
	{"run_mode", kindString, "first renders one thumbnail, all renders every ordering", func(c *Config) any { return &c.RunMode }},
	{"limit", kindInt, "maximum thumbnails in all mode (0 for no limit)", func(c *Config) any { return &c.Limit }},
	{"algorithm", kindString, "palette extraction algorithm (dominant, kmeans)", func(c *Config) any { return &c.Algorithm }},
	{"palette_plugin", kindString, "palette-source plugin binary used instead of the built-in extractors", func(c *Config) any { return &c.PalettePlugin }},
	{"image_cache", kindString, "directory caching images downloaded from URLs (empty disables)", func(c *Config) any { return &c.ImageCache }},
}

// retiredKeys are accepted for compatibility but have no effect.
var retiredKeys = map[string]string{
	"stroke_width": "stroke_width is ignored: frame bands have no outline",
}

func lookupKey(name string) (key, bool) {
	for _, k := range keys {
		if k.name == name {
			return k, true
		}
	}
	return key{}, false
}

// Keys returns the configuration key names in display order.
func Keys() []string {
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.name
	}
	return names
}

// normaliseKey maps "THUMBWEAVE_FONT_SIZE", "font-size" and "Font_Size" to
// "font_size".
func normaliseKey(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	k = strings.TrimPrefix(k, strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(k, "-", "_")
}

// flagName returns the command-line flag bound to a key.
func flagName(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}

func (k key) set(c *Config, value string) error {
	value = strings.TrimSpace(value)
	switch dst := k.get(c).(type) {
	case *string:
		*dst = value
	case *int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", k.name, value)
		}
		*dst = n
	case *float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", k.name, value)
		}
		*dst = f
	default:
		return fmt.Errorf("%s: unsupported key type %T", k.name, dst)
	}
	return nil
}

func (k key) format(c *Config) string {
	switch v := k.get(c).(type) {
	case *string:
		return *v
	case *int:
		return strconv.Itoa(*v)
	case *float64:
		return strconv.FormatFloat(*v, 'g', -1, 64)
	default:
		return ""
	}
}
