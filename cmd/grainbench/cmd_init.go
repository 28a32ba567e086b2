package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/grainchain/grainbench/internal/projectconfig"
	"github.com/grainchain/grainbench/internal/wizard"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newInitCommand(opts *globalOptions) *cobra.Command {
	var force, noInteractive bool

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a .grainbench.yaml project config",
		Long: `Create a .grainbench.yaml in dir (default: the working directory).

When stdin is a terminal an interactive form asks for each setting.
Otherwise, or with --no-interactive, the defaults plus any --set and
--results-dir values are written.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, projectconfig.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}

			cfg := projectconfig.New()
			overrides, err := parseOverrides(opts.overrides)
			if err != nil {
				return err
			}
			if err := cfg.Apply(overrides); err != nil {
				return err
			}
			if opts.resultsDir != "" {
				cfg.Paths.Results = opts.resultsDir
			}

			// Check TTY from the command's input stream, not os.Stdin directly.
			isTTY := false
			if f, ok := cmd.InOrStdin().(*os.File); ok {
				isTTY = term.IsTerminal(int(f.Fd()))
			}
			if isTTY && !noInteractive {
				cfg, err = wizard.RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), cfg)
				if err != nil {
					return err
				}
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", dir, err)
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	cmd.Flags().BoolVar(&noInteractive, "no-interactive", false, "Write defaults without prompting")

	return cmd
}
