package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synth-engine/internal/dataset"
	"github.com/pdiddy/synth-engine/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Re-export a stored run to YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := args[0]
		cfg := loadConfig()

		store, err := dataset.NewStore(cfg.Dataset)
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.ListRuns(cmd.Context())
		if err != nil {
			return err
		}
		var info *dataset.RunInfo
		for i := range infos {
			if infos[i].RunID == runID {
				info = &infos[i]
				break
			}
		}
		if info == nil {
			return fmt.Errorf("run %s not found", runID)
		}

		pairs, err := store.LoadPairs(cmd.Context(), runID)
		if err != nil {
			return err
		}
		records, err := store.LoadRecords(cmd.Context(), runID)
		if err != nil {
			return err
		}

		res := &types.RunResult{
			RunID:   runID,
			Status:  info.Status,
			Pairs:   pairs,
			Records: records,
			Summary: types.Summarize(pairs, records),
		}
		path, err := store.ExportYAML(info.Category, res)
		if err != nil {
			return err
		}
		fmt.Printf("exported %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
