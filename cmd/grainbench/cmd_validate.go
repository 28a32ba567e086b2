package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/grainchain/grainbench/internal/store"
	"github.com/grainchain/grainbench/internal/validation"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file> [file...]",
		Short: "Validate result files or a .grainbench.yaml against their schemas",
		Long: `Validate benchmark result files (.json, .json.gz, .json.zst, .md) and
.grainbench.yaml config files.

Exits with code 1 when any file is invalid.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				problems, err := validateFile(path)
				if err != nil {
					problems = append(problems, err.Error())
				}
				if len(problems) == 0 {
					fmt.Fprintf(out, "✓ %s\n", path)
					continue
				}
				invalid++
				fmt.Fprintf(out, "✗ %s\n", path)
				for _, p := range problems {
					fmt.Fprintf(out, "    %s\n", p)
				}
			}
			if invalid > 0 {
				return &TestFailureError{Message: fmt.Sprintf("%d of %d file(s) invalid", invalid, len(args))}
			}
			return nil
		},
	}
	return cmd
}

// validateFile returns the schema problems in path.
func validateFile(path string) ([]string, error) {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
		return validation.ValidateConfigFile(path)
	}

	data, err := store.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if strings.HasSuffix(name, ".md") {
		if _, err := store.ParseMarkdown(data, path); err != nil {
			return []string{err.Error()}, nil
		}
		return nil, nil
	}

	if _, err := store.ParseJSON(data, path); err != nil {
		var invalid *store.InvalidResultError
		if errors.As(err, &invalid) {
			return invalid.Problems, nil
		}
		return []string{err.Error()}, nil
	}
	return nil, nil
}
