package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/thumbweave/internal/caption"
	"github.com/jmylchreest/thumbweave/internal/colour"
	"github.com/jmylchreest/thumbweave/internal/compose"
	"github.com/jmylchreest/thumbweave/internal/config"
	imgpkg "github.com/jmylchreest/thumbweave/internal/image"
	"github.com/jmylchreest/thumbweave/internal/palette"
	"github.com/jmylchreest/thumbweave/internal/plugin/palettesource"
	"github.com/jmylchreest/thumbweave/internal/prompt"
	"github.com/jmylchreest/thumbweave/internal/thumbnail"
	"github.com/jmylchreest/thumbweave/internal/util/imagecache"
	"github.com/jmylchreest/thumbweave/internal/workspace"
)

const (
	imagePrompt   = "Path to image"
	captionPrompt = "Thumbnail text"
)

// generateOptions holds the flags that only apply to generation.
type generateOptions struct {
	text    string
	colours []string
	noInput bool
}

func (o *generateOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.text, "text", "t", "", `caption text; a literal \n starts a new line`)
	cmd.Flags().StringArrayVarP(&o.colours, "colour", "c", nil, "use this hex colour instead of extracting a palette (repeatable)")
	cmd.Flags().BoolVar(&o.noInput, "no-input", false, "never prompt; missing answers use their defaults")
}

// runGenerate resolves a palette, renders the configured orderings into the
// work directory and moves it to a timestamped directory under the output
// path. A failed run leaves the work directory in place.
func runGenerate(cmd *cobra.Command, args []string, opts *generateOptions, env runtimeEnv) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger(cmd)
	cfg, err := loadConfig(cmd, env, logger)
	if err != nil {
		return err
	}

	// The font is loaded here so a bad font path fails before anything is
	// written.
	composer, err := compose.New(cfg.Layout(), cfg.FontSpec(), cfg.ArtifactSpec())
	if err != nil {
		return fmt.Errorf("failed to prepare renderer: %w", err)
	}

	imagePath, text := splitArgs(args)
	if cmd.Flags().Changed("text") {
		text = opts.text
	}

	in := cmd.InOrStdin()
	ask := prompt.New(in, cmd.ErrOrStderr(), !opts.noInput && env.interactive(in))
	loader := newLoader(in, cfg)

	var src *imgpkg.Source
	if imagePath != "" || len(opts.colours) == 0 {
		src, err = acquireImage(ctx, ask, loader, imagePath)
		if err != nil {
			return err
		}
	}

	source, closePlugin, err := newPaletteSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closePlugin()

	pal, src, err := resolvePalette(ctx, ask, loader, source, palette.Request{
		Image:   src,
		Count:   cfg.ColourCount,
		Colours: opts.colours,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to resolve palette: %w", err)
	}

	text, err = ask.Ask(captionPrompt, text)
	if err != nil {
		return err
	}
	text = caption.Normalize(text)

	ws, err := workspace.New(workspace.Options{
		OutputPath:      cfg.OutputPath,
		WorkPath:        cfg.TmpPath,
		PaletteFilename: cfg.PaletteFilename,
		Logger:          logger.Named("workspace"),
	})
	if err != nil {
		return err
	}
	if err := ws.Prepare(); err != nil {
		return err
	}
	if src != nil {
		if _, err := ws.StagePaletteImage(src.Image); err != nil {
			return err
		}
	}

	driverOpts := cfg.DriverOptions()
	driverOpts.Logger = logger.Named("driver")
	driver, err := thumbnail.NewDriver(composer, driverOpts)
	if err != nil {
		return err
	}

	artifacts, err := driver.Run(ctx, pal.ToRGBSlice(), text, ws.Dir())
	if err != nil {
		logger.Error("run aborted, work directory left in place", "path", ws.Dir(), "written", len(artifacts))
		return err
	}
	logger.Info("generated thumbnails", "count", len(artifacts))

	final, err := ws.Finalize(env.now())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), final)
	return nil
}

// splitArgs separates the image argument from the caption. With two
// arguments the first is always the image. A single argument is the image
// when it names stdin, a URL or an existing file, and the caption otherwise.
func splitArgs(args []string) (imagePath, text string) {
	switch len(args) {
	case 0:
		return "", ""
	case 1:
		if isImageArg(args[0]) {
			return args[0], ""
		}
		return "", args[0]
	default:
		return args[0], args[1]
	}
}

// newLoader returns the image loader for cfg, caching URL downloads when
// image_cache is set.
func newLoader(in io.Reader, cfg config.Config) *imgpkg.SmartLoader {
	loader := imgpkg.NewSmartLoader(in)
	if cfg.ImageCache != "" {
		loader = loader.WithCache(imagecache.New(cfg.ImageCache))
	}
	return loader
}

func isImageArg(arg string) bool {
	if arg == imgpkg.StdinPath || imgpkg.IsURL(arg) {
		return true
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// acquireImage loads path, or asks for one when path is empty.
func acquireImage(ctx context.Context, ask *prompt.Prompter, loader imgpkg.Loader, path string) (*imgpkg.Source, error) {
	if path == "" {
		return askImage(ctx, ask, loader)
	}
	src, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load image: %w", err)
	}
	return src, nil
}

// askImage prompts until a path loads as an image, up to
// prompt.MaxAttempts times.
func askImage(ctx context.Context, ask *prompt.Prompter, loader imgpkg.Loader) (*imgpkg.Source, error) {
	var src *imgpkg.Source
	_, err := ask.AskValid(imagePrompt, func(answer string) error {
		if answer == "" {
			return errors.New("an image path is required")
		}
		loaded, err := loader.Load(ctx, answer)
		if err != nil {
			return err
		}
		src = loaded
		return nil
	})
	if errors.Is(err, prompt.ErrNotInteractive) {
		return nil, errors.New("no source image given: pass a path, a URL or - for stdin")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return src, nil
}

// newPaletteSource builds the palette source for cfg, starting the palette
// plugin when one is configured. The returned func releases the plugin.
func newPaletteSource(ctx context.Context, cfg config.Config, logger hclog.Logger) (*palette.Source, func(), error) {
	opts := palette.Options{
		Algorithm: colour.Algorithm(cfg.Algorithm),
		Logger:    logger.Named("palette"),
	}
	release := func() {}

	if cfg.PalettePlugin != "" {
		client, err := palettesource.New(ctx, cfg.PalettePlugin, palettesource.Options{Logger: logger})
		if err != nil {
			return nil, release, fmt.Errorf("failed to load palette plugin: %w", err)
		}
		opts.Plugin = client
		release = client.Close
	}

	source, err := palette.New(opts)
	if err != nil {
		release()
		return nil, func() {}, err
	}
	return source, release, nil
}

// resolvePalette resolves req, asking for another image when extraction
// fails on an interactive terminal. It returns the image the palette came
// from.
func resolvePalette(ctx context.Context, ask *prompt.Prompter, loader imgpkg.Loader, source *palette.Source, req palette.Request, logger hclog.Logger) (*colour.Palette, *imgpkg.Source, error) {
	for attempt := 1; ; attempt++ {
		pal, err := source.Resolve(ctx, req)
		if err == nil {
			return pal, req.Image, nil
		}

		var extractErr *colour.ExtractionError
		if !errors.As(err, &extractErr) || !ask.Interactive() || attempt >= prompt.MaxAttempts {
			return nil, nil, err
		}
		logger.Warn("palette extraction failed, choose another image", "error", err)

		src, err := askImage(ctx, ask, loader)
		if err != nil {
			return nil, nil, err
		}
		req.Image = src
	}
}
