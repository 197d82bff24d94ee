package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/spf13/cobra"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/app"
	"github.com/specialistvlad/nativeapk/internal/executor"
	"github.com/specialistvlad/nativeapk/internal/graph"
	"github.com/specialistvlad/nativeapk/internal/node"
	"github.com/specialistvlad/nativeapk/internal/nodeid"
)

func newBuildCommand(opts *options, outW io.Writer) *cobra.Command {
	var b app.Config
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build, inject and sign the APK",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, func(c *app.Config) {
				c.Workers = b.Workers
				c.Retries = retryBudget(b.Retries)
				c.Recompress = b.Recompress
				c.Align = b.Align
				c.Install = b.Install
				c.Launch = b.Launch
				c.Publish = b.Publish
				c.Symbols = b.Symbols
				c.Notify = b.Notify
				c.Progress = progressWanted(opts, outW)
			})
			if err != nil {
				return err
			}
			_, err = a.Run(cmd.Context())
			return err
		},
	}

	f := cmd.Flags()
	f.IntVar(&b.Workers, "workers", executor.DefaultWorkers, "number of build steps run concurrently")
	f.IntVar(&b.Retries, "retries", executor.DefaultRetries, "retries for transient I/O failures (0 disables)")
	f.BoolVar(&b.Recompress, "recompress", false, "repack the archive with maximum compression before signing")
	f.BoolVar(&b.Align, "align", false, "zipalign the signed archive")
	f.BoolVar(&b.Install, "install", false, "install the archive on the connected device")
	f.BoolVar(&b.Launch, "launch", false, "launch the application after installing (implies --install)")
	f.BoolVar(&b.Publish, "publish", false, "upload the final archive to the configured bucket")
	f.BoolVar(&b.Symbols, "symbols", false, "bundle the unstripped libraries into <apk>.symbols.tar.xz")
	f.BoolVar(&b.Notify, "notify", false, "stream build events to the configured dashboard")
	return cmd
}

// retryBudget maps the --retries flag onto executor.Options.Retries, where
// zero selects the default and a negative value disables retries.
func retryBudget(flag int) int {
	if flag <= 0 {
		return -1
	}
	return flag
}

func newSignCommand(opts *options, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "sign",
		Short: "Sign the configured archive in place",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, nil)
			if err != nil {
				return err
			}
			return a.Sign(cmd.Context())
		},
	}
}

func newAlignCommand(opts *options, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "align",
		Short: "Write a zipaligned copy of the configured archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, nil)
			if err != nil {
				return err
			}
			out, err := a.Align(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(outW, out)
			return nil
		},
	}
}

func newInstallCommand(opts *options, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "install [apk]",
		Short: "Install an archive on the connected device",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, nil)
			if err != nil {
				return err
			}
			var apk string
			if len(args) == 1 {
				apk = args[0]
			}
			return a.Install(cmd.Context(), apk)
		},
	}
}

func newLaunchCommand(opts *options, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "launch",
		Short: "Start the application on the connected device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, nil)
			if err != nil {
				return err
			}
			return a.Launch(cmd.Context())
		},
	}
}

func newKeyStoreCommand(opts *options, outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "keystore",
		Short: "Generate the configured signing key if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, nil)
			if err != nil {
				return err
			}
			_, err = a.GenerateKeyStore(cmd.Context())
			return err
		},
	}
}

func newInitCommand(opts *options, outW io.Writer) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter nativeapk.hcl",
		Long: `Writes a template configuration to the --config path. Use --force to
overwrite an existing file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.WriteTemplate(opts.configPath, force); err != nil {
				return err
			}
			fmt.Fprintf(outW, "Wrote %s\n", opts.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration")
	return cmd
}

func newGraphCommand(opts *options, outW io.Writer) *cobra.Command {
	var b app.Config
	var only string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the build graph in execution order without running it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, outW, func(c *app.Config) {
				c.Recompress = b.Recompress
				c.Align = b.Align
				c.Install = b.Install
				c.Launch = b.Launch
				c.Symbols = b.Symbols
			})
			if err != nil {
				return err
			}
			order, res, err := a.Graph(cmd.Context())
			if err != nil {
				return err
			}
			if only != "" {
				prefix, err := nodeid.Parse(only)
				if err != nil {
					return apkerr.Config("graph --node", err)
				}
				if order, err = subgraph(cmd.Context(), res.Graph, order, prefix); err != nil {
					return err
				}
			}
			for _, n := range order {
				deps, err := res.Graph.DependenciesOf(cmd.Context(), n.ID)
				if err != nil {
					return err
				}
				fmt.Fprintln(outW, formatNode(n, deps))
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&b.Recompress, "recompress", false, "include the recompression step")
	f.BoolVar(&b.Align, "align", false, "include alignment")
	f.BoolVar(&b.Install, "install", false, "include installation")
	f.BoolVar(&b.Launch, "launch", false, "include launching")
	f.BoolVar(&b.Symbols, "symbols", false, "include the symbols bundle")
	f.StringVar(&only, "node", "", "print only nodes under this dotted prefix (e.g. lib.aarch64) and what they depend on")
	return cmd
}

// subgraph keeps the nodes whose address starts with prefix plus their
// transitive dependencies, preserving the order of order.
func subgraph(ctx context.Context, g *graph.Manager, order []*node.Node, prefix *nodeid.Address) ([]*node.Node, error) {
	keep := make(map[string]bool)
	var pending []*node.Node
	for _, n := range order {
		if n.ID.HasPrefix(prefix.Path...) {
			keep[n.ID.String()] = true
			pending = append(pending, n)
		}
	}
	if len(pending) == 0 {
		return nil, apkerr.Configf("graph --node", "no node matches %q", prefix.String())
	}
	for len(pending) > 0 {
		n := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		deps, err := g.DependenciesOf(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		for _, d := range deps {
			if !keep[d.ID.String()] {
				keep[d.ID.String()] = true
				pending = append(pending, d)
			}
		}
	}

	out := make([]*node.Node, 0, len(keep))
	for _, n := range order {
		if keep[n.ID.String()] {
			out = append(out, n)
		}
	}
	return out, nil
}

func formatNode(n *node.Node, deps []*node.Node) string {
	line := color.Cyan.Sprint(n.ID.String())
	if len(deps) == 0 {
		return line
	}
	names := make([]string, len(deps))
	for i, d := range deps {
		names[i] = d.ID.String()
	}
	return line + " <- " + strings.Join(names, ", ")
}
