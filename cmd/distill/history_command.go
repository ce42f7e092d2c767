package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"distill/internal/ledger"
	"distill/internal/textutil"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent distillation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !cfg.Ledger.Enabled {
				return fmt.Errorf("run history is disabled (ledger.enabled = false)")
			}

			store, err := ledger.Open(cfg.Ledger.Path)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				detail := run.Slug
				if run.Status == ledger.StatusFailed {
					detail = textutil.Truncate(run.Error, 48)
				}
				rows = append(rows, []string{
					run.CreatedAt.Local().Format("2006-01-02 15:04"),
					textutil.Truncate(run.Source, 40),
					run.InputType,
					run.Status,
					strconv.Itoa(len(run.Artifacts)),
					detail,
				})
			}
			writeTable(out,
				[]string{"Started", "Source", "Type", "Status", "Artifacts", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}
