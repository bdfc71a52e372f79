package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/thumbweave/internal/colour"
	"github.com/jmylchreest/thumbweave/internal/palette"
)

// Output formats of the extract command.
const (
	formatHex   = "hex"
	formatRGB   = "rgb"
	formatJSON  = "json"
	formatTable = "table"
)

const swatchWidth = 8

type extractOptions struct {
	count   int
	format  string
	output  string
	preview bool
}

func newExtractCmd(env runtimeEnv) *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Print the palette thumbweave would use for an image",
		Long: `Extract the palette of an image with the configured algorithm or palette
plugin and print it, most dominant colour first. Images with fewer distinct
colours than requested are padded by repeating from the most dominant one,
exactly as generation does.

Examples:
  # Print the five hex colours used for thumbnails
  thumbweave extract wallpaper.jpg

  # Show a table with colour previews, using k-means
  thumbweave extract --algorithm kmeans -f table --preview wallpaper.png

  # Save the palette as JSON
  thumbweave extract -f json -o palette.json wallpaper.jpg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args[0], opts, env)
		},
	}

	cmd.Flags().IntVarP(&opts.count, "colours", "c", 0, "number of colours to extract (default: colour_count)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatHex, "output format (hex, rgb, json, table)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "show colour previews in terminal")
	return cmd
}

func runExtract(cmd *cobra.Command, path string, opts *extractOptions, env runtimeEnv) error {
	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd, env, logger)
	if err != nil {
		return err
	}

	count := opts.count
	if count == 0 {
		count = cfg.ColourCount
	}
	if count < 1 || count > 256 {
		return fmt.Errorf("colour count must be between 1 and 256, got %d", count)
	}

	ctx := cmd.Context()
	src, err := newLoader(cmd.InOrStdin(), cfg).Load(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	bounds := src.Image.Bounds()
	logger.Debug("image loaded", "origin", src.Origin, "format", src.Format, "width", bounds.Dx(), "height", bounds.Dy())

	source, release, err := newPaletteSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	pal, err := source.Resolve(ctx, palette.Request{Image: src, Count: count})
	if err != nil {
		return fmt.Errorf("failed to extract colours: %w", err)
	}

	output, err := formatPalette(pal, opts.format, opts.preview)
	if err != nil {
		return err
	}

	if opts.output == "" {
		fmt.Fprint(cmd.OutOrStdout(), output)
		return nil
	}
	if err := os.WriteFile(opts.output, []byte(output), 0o600); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	logger.Info("wrote palette", "path", opts.output)
	return nil
}

// formatPalette renders the palette in one of the extract formats.
func formatPalette(p *colour.Palette, format string, preview bool) (string, error) {
	switch format {
	case formatHex:
		return formatLines(p, preview, colour.RGB.Hex), nil
	case formatRGB:
		return formatLines(p, preview, colour.RGB.String), nil
	case formatJSON:
		data, err := p.ToJSON()
		if err != nil {
			return "", fmt.Errorf("failed to convert to JSON: %w", err)
		}
		return string(data) + "\n", nil
	case formatTable:
		return formatPaletteTable(p, preview), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (supported: hex, rgb, json, table)", format)
	}
}

func formatLines(p *colour.Palette, preview bool, text func(colour.RGB) string) string {
	var b strings.Builder
	for _, rgb := range p.ToRGBSlice() {
		if preview {
			b.WriteString(colour.Swatch(rgb, swatchWidth))
			b.WriteString(" ")
		}
		b.WriteString(text(rgb))
		b.WriteString("\n")
	}
	return b.String()
}

func formatPaletteTable(p *colour.Palette, preview bool) string {
	headers := []string{"#", "HEX", "RGB", "LUMINANCE"}
	if preview {
		headers = append(headers, "PREVIEW")
	}
	table := NewTable(headers)
	for i, rgb := range p.ToRGBSlice() {
		row := []string{
			fmt.Sprint(i + 1),
			rgb.Hex(),
			rgb.String(),
			fmt.Sprintf("%.3f", colour.Luminance(rgb)),
		}
		if preview {
			row = append(row, colour.LabelledSwatch(rgb, rgb.Hex(), swatchWidth+2))
		}
		table.AddRow(row)
	}
	return table.Render()
}
