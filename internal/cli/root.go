// Package cli provides the command-line interface for thumbweave.
package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/thumbweave/internal/config"
	"github.com/jmylchreest/thumbweave/internal/prompt"
	"github.com/jmylchreest/thumbweave/internal/version"
)

// runtimeEnv holds the process facts commands depend on, swapped out in
// tests.
type runtimeEnv struct {
	interactive func(in io.Reader) bool
	now         func() time.Time
	environ     func() []string
}

func defaultEnv() runtimeEnv {
	return runtimeEnv{
		interactive: func(in io.Reader) bool {
			f, ok := in.(*os.File)
			return ok && prompt.IsTerminal(f)
		},
		now:     time.Now,
		environ: os.Environ,
	}
}

// NewRootCmd builds the thumbweave command tree. Running the root command
// without a subcommand generates thumbnails.
func NewRootCmd() *cobra.Command {
	return newRootCmd(defaultEnv())
}

func newRootCmd(env runtimeEnv) *cobra.Command {
	gen := &generateOptions{}

	root := &cobra.Command{
		Use:   "thumbweave [image] [caption]",
		Short: "Generate colour-block thumbnails from an image palette",
		Long: `thumbweave extracts the five dominant colours of an image and renders
thumbnails from them: nested rectangles, four edge bands, four corner
triangles and a centred caption. Each thumbnail uses a different ordering
of the palette.

Artifacts are written to the work directory and moved to a timestamped
directory under the output path when the run completes.

Examples:
  # Prompt for the caption, render the first ordering
  thumbweave wallpaper.jpg

  # Render every ordering of the palette with a two-line caption
  thumbweave --run-mode all wallpaper.jpg 'Episode 4\nThe Return'

  # Use a fixed palette instead of extracting one
  thumbweave -c '#ff0000' -c '#00ff00' -c '#0000ff' -c '#ffff00' -c '#000000' -t Hello

  # Read the source image from stdin
  curl -s https://example.com/a.png | thumbweave --no-input -t Hello -`,
		Version:      version.Short(),
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, gen, env)
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	root.PersistentFlags().BoolP("quiet", "q", false, "suppress non-error output")
	root.PersistentFlags().String("config", "", "YAML configuration file")
	root.PersistentFlags().String("env-file", config.DefaultEnvFile, "dotenv file applied before the configuration file")
	config.BindFlags(root.PersistentFlags())
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	gen.register(root)

	root.SetVersionTemplate(version.String() + "\n")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newExtractCmd(env))
	root.AddCommand(newConfigCmd(env))

	return root
}

// newLogger builds the root logger from the verbosity flags.
func newLogger(cmd *cobra.Command) hclog.Logger {
	level := hclog.Info
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = hclog.Debug
	}
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		level = hclog.Error
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "thumbweave",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})
}

// loadConfig resolves the layered configuration for cmd and logs every
// warning.
func loadConfig(cmd *cobra.Command, env runtimeEnv, logger hclog.Logger) (config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	configFile, _ := cmd.Flags().GetString("config")

	cfg, warnings, err := config.Load(config.LoadOptions{
		EnvFile:        envFile,
		RequireEnvFile: cmd.Flags().Changed("env-file"),
		ConfigFile:     configFile,
		Environ:        env.environ(),
		Flags:          cmd.Flags(),
	})
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including build date, commit hash, and Go version.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
