package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/reporting"
	"github.com/spf13/cobra"
)

func newReportCommand(opts *globalOptions) *cobra.Command {
	var format, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a comprehensive benchmark report",
		Long: `Generate a Markdown or HTML report summarizing every provider.

By default the report is written to the configured reports directory as
benchmark_report_<timestamp>.<ext>. Use --output - to print it instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "markdown", "html"); err != nil {
				return err
			}
			a, err := opts.open()
			if err != nil {
				return err
			}
			days := intFlag(cmd, "days", 0)

			runs, err := a.store.All()
			if err != nil {
				return err
			}
			now := time.Now()
			if days > 0 {
				runs = models.FilterRange(runs, now.AddDate(0, 0, -days), now)
			}

			content := reporting.MarkdownOverview(runs, now)
			ext := "md"
			if format == "html" {
				ext = "html"
				content, err = reporting.ToHTML(content, "Benchmark Report")
				if err != nil {
					return err
				}
			}

			path := output
			if path == "" {
				path = filepath.Join(a.cfg.Paths.Reports, fmt.Sprintf("benchmark_report_%s.%s", now.Format("20060102_150405"), ext))
			}
			w, closeOut, err := openOutput(cmd.OutOrStdout(), path)
			if err != nil {
				return err
			}
			_, err = io.WriteString(w, content)
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			if path != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s (%d runs)\n", path, len(runs))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Report format: markdown or html")
	cmd.Flags().Int("days", 0, "Only include runs from the last N days (0 = all)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, or - for stdout")

	return cmd
}
