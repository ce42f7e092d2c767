package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"distill/internal/preflight"
)

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Check that directories and the generation backend are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.RunAll(cmd.Context(), cfg)
			rows := make([][]string, 0, len(results))
			for _, result := range results {
				status := "FAIL"
				if result.Passed {
					status = "OK"
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			writeTable(cmd.OutOrStdout(),
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft})

			if !preflight.AllPassed(results) {
				return fmt.Errorf("preflight failed")
			}
			return nil
		},
	}
}
