package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/defano/chicago-oasis-data/internal/model"
	"github.com/defano/chicago-oasis-data/internal/runlog"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the category run ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		ledger, err := runlog.Open(ctx, cfg.Runlog)
		if err != nil {
			return eris.Wrap(err, "status: open run ledger")
		}
		defer ledger.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := ledger.List(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "status")
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			if runs == nil {
				runs = []model.CategoryRun{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "No runs recorded.")
			return nil
		}
		formatStatus(out, runs)
		return nil
	},
}

func formatStatus(out io.Writer, runs []model.CategoryRun) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CODE\tDESCRIPTION\tSTATUS\tYEARS\tFILES\tSTARTED\tERROR")
	_, _ = fmt.Fprintln(w, "----\t-----------\t------\t-----\t-----\t-------\t-----")

	for _, r := range runs {
		desc := r.Description
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		errText := r.Error
		if len(errText) > 60 {
			errText = errText[:57] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.Category,
			desc,
			r.Status,
			r.Years,
			r.Files,
			r.StartedAt.Format("2006-01-02 15:04"),
			errText,
		)
	}
	_ = w.Flush()
}

func init() {
	statusCmd.Flags().Int("limit", runlog.DefaultListLimit, "maximum number of runs to show")
	statusCmd.Flags().Bool("json", false, "print runs as JSON")
	rootCmd.AddCommand(statusCmd)
}
