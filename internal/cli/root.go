package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/nativeapk/internal/app"
	"github.com/specialistvlad/nativeapk/internal/notify"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// DefaultConfigPath is used when --config is not given.
const DefaultConfigPath = "nativeapk.hcl"

type options struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

func (o *options) appConfig() (*app.Config, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPath: o.configPath,
		LogFormat:  o.logFormat,
		LogLevel:   o.logLevel,
		NoColor:    o.noColor,
	})
	if err != nil {
		return nil, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	return cfg, nil
}

// NewRootCommand builds the command tree writing to outW.
func NewRootCommand(outW io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "nativeapk",
		Short: "Assemble Android APKs from Go native libraries",
		Long: `nativeapk cross-compiles a Go package into one native shared library per
target architecture, packages the generated manifest and resources, injects
the libraries into the archive and signs it. Optional stages align, install,
launch, publish and archive debug symbols.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				color.Enable = false
			}
		},
	}
	root.SetOut(outW)
	root.SetErr(outW)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &ExitError{Code: ExitUsage, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", DefaultConfigPath, "path to the .hcl or .yaml configuration")
	pf.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	pf.StringVar(&opts.logFormat, "log-format", "text", "log format: text or json")
	pf.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newBuildCommand(opts, outW),
		newSignCommand(opts, outW),
		newAlignCommand(opts, outW),
		newInstallCommand(opts, outW),
		newLaunchCommand(opts, outW),
		newKeyStoreCommand(opts, outW),
		newInitCommand(opts, outW),
		newGraphCommand(opts, outW),
		newVersionCommand(outW),
	)
	return root
}

// Execute runs the command line args against a fresh command tree.
func Execute(ctx context.Context, outW io.Writer, args []string) error {
	root := NewRootCommand(outW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newVersionCommand(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(outW, "nativeapk %s\n", version)
			fmt.Fprintf(outW, "  commit:  %s\n", commit)
			fmt.Fprintf(outW, "  built:   %s\n", date)
		},
	}
}

// loadApp loads the configuration named by the persistent flags.
func loadApp(opts *options, outW io.Writer, mutate func(*app.Config)) (*app.App, error) {
	cfg, err := opts.appConfig()
	if err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(cfg)
	}
	return app.NewApp(outW, cfg, nil)
}

// progressWanted reports whether a progress bar should replace node logs.
func progressWanted(opts *options, outW io.Writer) bool {
	return notify.IsTerminal(outW) && opts.logFormat == "text" && opts.logLevel != "debug"
}
