package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/grainchain/grainbench/internal/models"
	"github.com/grainchain/grainbench/internal/projectconfig"
	"github.com/grainchain/grainbench/internal/reporting"
	"github.com/spf13/cobra"
)

func newRecommendCommand(opts *globalOptions) *cobra.Command {
	var useCaseName, format, output string

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a provider for a use case",
		Long: `Score every provider over a recent window and recommend the best one.

Use cases weight the score differently:
  general      balanced success rate and speed
  speed        favors short execution and creation times
  reliability  favors a high success rate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format, "table", "json", "markdown"); err != nil {
				return err
			}
			useCase, ok := models.ParseUseCase(useCaseName)
			if !ok {
				return fmt.Errorf("unknown use case %q: must be general, speed or reliability", useCaseName)
			}
			a, err := opts.open()
			if err != nil {
				return err
			}
			days := intFlag(cmd, "days", a.cfg.Analysis.TimeRangeDays)
			if days < 1 {
				return fmt.Errorf("--days must be at least 1")
			}

			rec, err := a.cmp.RecommendProvider(useCase, days)
			if err != nil {
				return err
			}

			w, closeOut, err := openOutput(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			switch format {
			case "json":
				err = writeJSONTo(w, rec)
			case "markdown":
				_, err = io.WriteString(w, reporting.MarkdownRecommendation(rec))
			default:
				printRecommendation(w, a.cfg, useCase, rec)
			}
			if cerr := closeOut(); err == nil {
				err = cerr
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&useCaseName, "use-case", "u", string(models.UseCaseGeneral), "Use case: general, speed or reliability")
	cmd.Flags().Int("days", 0, "Time window in days (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json or markdown")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")

	return cmd
}

func printRecommendation(w io.Writer, cfg *projectconfig.ProjectConfig, useCase models.UseCase, rec models.ProviderRecommendation) {
	name := rec.RecommendedProvider
	if name != models.UnknownProvider {
		name = cfg.DisplayName(name)
	}
	fmt.Fprintf(w, "Recommended for %s: %s (confidence %.0f%%)\n\n", useCase, name, rec.ConfidenceScore*100)
	for _, line := range rec.Reasoning {
		fmt.Fprintf(w, "  - %s\n", line)
	}

	if len(rec.UseCaseSpecific) > 0 {
		fmt.Fprintln(w)
		keys := make([]string, 0, len(rec.UseCaseSpecific))
		for k := range rec.UseCaseSpecific {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %s\n", k, rec.UseCaseSpecific[k])
		}
	}

	if len(rec.ProviderScores) == 0 {
		return
	}
	fmt.Fprintln(w)
	t := newTable("RANK", "PROVIDER", "SCORE", "SUCCESS", "EXECUTION", "CREATION", "RUNS")
	for _, s := range rec.ProviderScores {
		t.add(fmt.Sprint(s.Rank), cfg.DisplayName(s.Provider), fmt.Sprintf("%.1f", s.Score),
			formatPercent(s.Metrics.SuccessRate), formatSeconds(s.Metrics.AvgExecutionTime),
			formatSeconds(s.Metrics.AvgCreationTime), fmt.Sprint(s.Metrics.DataPoints))
	}
	t.write(w)
}
