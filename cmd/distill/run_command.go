package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"distill/internal/config"
	"distill/internal/ledger"
	"distill/internal/logging"
	"distill/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var focus string
	var format string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run <source>",
		Short: "Distill a text, file, PDF, image, or URL into five artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if outputDir != "" {
				expanded, err := config.ExpandPath(outputDir)
				if err != nil {
					return err
				}
				cfg.Paths.OutputDir = expanded
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:       cfg.Logging.Level,
				Format:      cfg.Logging.Format,
				OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "distill.log")},
			})
			if err != nil {
				return err
			}

			opts := []workflow.Option{
				workflow.WithLogger(logging.NewComponentLogger(logger, "workflow")),
			}
			if cfg.Ledger.Enabled {
				store, err := ledger.Open(cfg.Ledger.Path)
				if err != nil {
					return fmt.Errorf("open ledger: %w", err)
				}
				defer store.Close()
				opts = append(opts, workflow.WithLedger(store))
			}

			runner := workflow.NewRunner(cfg, opts...)
			result, err := runner.Run(cmd.Context(), workflow.Request{
				Source:      args[0],
				Focus:       focus,
				FinalFormat: format,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Distilled %q (%s) in %s\n", result.Title, result.InputType, result.Duration.Round(100*time.Millisecond))
			for _, path := range result.Artifacts {
				fmt.Fprintf(out, "  %s\n", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "Optional focus lens to steer every layer toward")
	cmd.Flags().StringVar(&format, "format", "", "Optional format request for the final layer (e.g. \"a checklist\")")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Override the artifact output directory")
	return cmd
}
