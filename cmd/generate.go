package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/defano/chicago-oasis-data/internal/access"
	"github.com/defano/chicago-oasis-data/internal/blob"
	"github.com/defano/chicago-oasis-data/internal/dataset"
	"github.com/defano/chicago-oasis-data/internal/metrics"
	"github.com/defano/chicago-oasis-data/internal/pipeline"
	"github.com/defano/chicago-oasis-data/internal/report"
	"github.com/defano/chicago-oasis-data/internal/runlog"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate accessibility, critical business and index reports",
	Long: `Generate report files from the cached datasets, downloading any that are missing.

Without output flags every report is produced. --access writes census and
community accessibility files, --critical writes critical business files,
--index writes licenses.json and --socio writes socioeconomic.json.

--start-at skips license codes ordered before the given code, and --resume
skips codes the run ledger already records as complete.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		log := zap.L().With(zap.String("command", "generate"))

		opts, err := parseGenerateOpts(cmd)
		if err != nil {
			return err
		}
		if dir, _ := cmd.Flags().GetString("output"); dir != "" {
			cfg.Output.Dir = dir
		}

		catalog := dataset.NewCatalog(cfg.Data)
		cache := newCache(cfg)
		if clean, _ := cmd.Flags().GetBool("clean"); clean {
			log.Info("re-downloading datasets")
			if err := cache.DownloadAll(ctx, catalog.Remote(), true); err != nil {
				return eris.Wrap(err, "generate: download")
			}
		}

		o := opts.Outputs
		socioOnly := o.Socio && !o.Access && !o.Critical && !o.Index
		provider, err := loadProvider(ctx, cfg, cache, catalog, socioOnly)
		if err != nil {
			return err
		}

		store, err := blob.New(ctx, cfg.Output)
		if err != nil {
			return eris.Wrap(err, "generate: open output")
		}
		ledger, err := runlog.Open(ctx, cfg.Runlog)
		if err != nil {
			return eris.Wrap(err, "generate: open run ledger")
		}
		defer ledger.Close() //nolint:errcheck

		m := metrics.New()
		runner := pipeline.New(provider, report.NewEmitter(store), ledger, m)
		sum, runErr := runner.Run(ctx, opts)
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warn("failed to write metrics", zap.Error(err))
		}
		if runErr != nil {
			return runErr
		}

		log.Info("generate complete",
			zap.Int("categories", sum.Categories),
			zap.Int("skipped", sum.Skipped),
			zap.Int("files", sum.Files),
			zap.Int("critical", sum.Critical),
			zap.String("destination", store.Location("")),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d files for %d categories (%d skipped) to %s\n",
			sum.Files, sum.Categories, sum.Skipped, store.Location(""))
		return nil
	},
}

func parseGenerateOpts(cmd *cobra.Command) (pipeline.Options, error) {
	f := cmd.Flags()
	var opts pipeline.Options
	opts.Outputs.Access, _ = f.GetBool("access")
	opts.Outputs.Critical, _ = f.GetBool("critical")
	opts.Outputs.Index, _ = f.GetBool("index")
	opts.Outputs.Socio, _ = f.GetBool("socio")
	opts.Categories, _ = f.GetStringArray("license-code")
	opts.StartAt, _ = f.GetString("start-at")
	opts.Resume, _ = f.GetBool("resume")

	identity, err := access.ParseIdentity(cfg.Report.CriticalIdentity)
	if err != nil {
		return opts, err
	}
	opts.Identity = identity
	return opts, nil
}

func init() {
	f := generateCmd.Flags()
	f.Bool("access", false, "write census and community accessibility reports")
	f.Bool("critical", false, "write critical business reports")
	f.Bool("index", false, "write the license index (licenses.json)")
	f.Bool("socio", false, "write the socioeconomic table (socioeconomic.json)")
	f.Bool("clean", false, "re-download every dataset before generating")
	f.String("start-at", "", "skip license codes ordered before this code")
	f.StringArrayP("license-code", "c", nil, "only process this license code (repeatable)")
	f.StringP("output", "o", "", "output directory (overrides output.dir)")
	f.Bool("resume", false, "skip license codes the run ledger records as complete")
	rootCmd.AddCommand(generateCmd)
}
