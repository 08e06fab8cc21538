// Package cli implements the xtheme command-line interface.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-xtheme/cmd/xtheme/internal/bootstrap"
)

// CLI holds shared state for all commands.
type CLI struct {
	out        io.Writer
	errOut     io.Writer
	configPath string
	verbose    bool

	build func(bootstrap.Options) (*bootstrap.Module, error)
}

// New creates a CLI writing command output to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut, build: bootstrap.BuildModule}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "xtheme",
		Short:        "Xtheme renders and edits themed placeholder layouts",
		SilenceUsage: true,
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML configuration file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.themesCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.configCommand())
	return root
}

func (c *CLI) module() (*bootstrap.Module, error) {
	return c.build(bootstrap.Options{
		ConfigPath: c.configPath,
		Verbose:    c.verbose,
		LogWriter:  c.errOut,
	})
}

func (c *CLI) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the runtime configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load and validate the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap.LoadConfig(c.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			c.printf("configuration ok (storage=%s, cache=%s)\n", cfg.Storage.Provider, cfg.Cache.Provider)
			return nil
		},
	})
	return cmd
}
