package main

import (
	"fmt"
	"os"

	"github.com/grainchain/grainbench/internal/projectconfig"
	"github.com/grainchain/grainbench/internal/remote"
	"github.com/grainchain/grainbench/internal/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newFetchCommand(opts *globalOptions) *cobra.Command {
	var accountURL, container, prefix string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download result files from Azure Blob Storage",
		Long: `Download benchmark result files from an Azure Blob Storage container into
the results directory. Files already present with the same size are skipped.

Credentials come from the Azure default credential chain (environment,
managed identity, Azure CLI login). Flags override remote.* config values.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("account-url") {
				cfg.Remote.AccountURL = accountURL
			}
			if cmd.Flags().Changed("container") {
				cfg.Remote.Container = container
			}
			if cmd.Flags().Changed("prefix") {
				cfg.Remote.Prefix = prefix
			}
			if cfg.Remote.AccountURL == "" || cfg.Remote.Container == "" {
				return fmt.Errorf("an account URL and container are required (--account-url/--container or remote.* in %s)", projectconfig.FileName)
			}

			syncer, err := remote.NewSyncer(cfg.Remote.AccountURL, cfg.Remote.Container, remote.WithPrefix(cfg.Remote.Prefix))
			if err != nil {
				return err
			}
			var spin *spinner.Spinner
			if cmd.ErrOrStderr() == os.Stderr && term.IsTerminal(int(os.Stderr.Fd())) {
				spin = spinner.Start(os.Stderr, "Fetching results from "+cfg.Remote.Container+"...")
			}
			res, err := syncer.Sync(cmd.Context(), cfg.Paths.Results)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Downloaded %d file(s), %d already up to date, into %s\n",
				len(res.Downloaded), len(res.Skipped), cfg.Paths.Results)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountURL, "account-url", "", "Storage account URL, e.g. https://<account>.blob.core.windows.net")
	cmd.Flags().StringVar(&container, "container", "", "Blob container holding result files")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Only fetch blobs under this prefix")

	return cmd
}
