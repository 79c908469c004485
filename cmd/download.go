package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/defano/chicago-oasis-data/internal/dataset"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the remote datasets into the cache",
	Long: `Download every remote dataset into the cache directory in parallel.

Cached datasets are re-downloaded only when the server reports a new version.
Use --force to download them unconditionally.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		force, _ := cmd.Flags().GetBool("force")
		catalog := dataset.NewCatalog(cfg.Data)
		cache := newCache(cfg)
		if err := cache.DownloadAll(ctx, catalog.Remote(), force); err != nil {
			return eris.Wrap(err, "download")
		}

		for _, s := range catalog.Remote() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", s.Name, cache.Path(s))
		}
		return nil
	},
}

func init() {
	downloadCmd.Flags().Bool("force", false, "download even when the cached copy is current")
	rootCmd.AddCommand(downloadCmd)
}
