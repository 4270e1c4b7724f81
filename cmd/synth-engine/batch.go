package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synth-engine/internal/batch"
	"github.com/pdiddy/synth-engine/internal/dataset"
	"github.com/pdiddy/synth-engine/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <source-dir>",
	Short: "Synthesize datasets for every document in a directory",
	Long: `Batch runs the synthesis loop over every .txt and .md file in the
given directory, a bounded number of documents at a time. A failed
document is reported and skipped; the remaining documents still run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := taskFromFlags(cmd, "")
		cfg := loadConfig()
		workers, _ := cmd.Flags().GetInt("workers")

		client, err := newGateway(cfg)
		if err != nil {
			return err
		}
		store, err := dataset.NewStore(cfg.Dataset)
		if err != nil {
			return err
		}
		defer store.Close()

		run := func(ctx context.Context, name string, task types.SynthesisTask) (*types.RunResult, error) {
			res, err := runSynthesis(ctx, cfg, client, task)
			if err != nil {
				return res, err
			}
			if err := store.SaveRun(ctx, task.Category, res); err != nil {
				return res, fmt.Errorf("saving run %s: %w", res.RunID, err)
			}
			if _, err := store.ExportYAML(task.Category, res); err != nil {
				return res, fmt.Errorf("exporting run %s: %w", res.RunID, err)
			}
			return res, nil
		}

		summary, err := batch.Run(cmd.Context(), args[0], base, workers, run, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Total())
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Int("workers", 2, "number of documents synthesized concurrently")
	batchCmd.Flags().String("category", string(types.CategoryFactual), "task category: factual, reasoning, comprehension, or application")
	batchCmd.Flags().Int("iterations", 10, "number of curriculum iterations per document")
	batchCmd.Flags().Float64("initial-difficulty", 2, "starting difficulty target (1-10)")
	batchCmd.Flags().Float64("increment", 0.5, "difficulty increase per accepted pair")
	batchCmd.Flags().Float64("max-difficulty", 10, "difficulty ceiling (1-10)")
	batchCmd.Flags().Float64("threshold", 7, "minimum validator score for acceptance (1-10)")

	rootCmd.AddCommand(batchCmd)
}
