package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pdiddy/synth-engine/internal/dataset"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored synthesis runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
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
		if len(infos) == 0 {
			fmt.Println("no runs stored")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "RUN\tSTATUS\tCATEGORY\tACCEPTED\tCREATED")
		for _, info := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				info.RunID, info.Status, info.Category, info.Accepted, info.CreatedAt)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}
