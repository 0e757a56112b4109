package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"samparkdash/internal/store"
)

var clearSnapshots bool

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List or clear cached API responses",
	Long: `Dataset responses are cached in <data-dir>/snapshots.duckdb for
SAMPARK_SNAPSHOT_TTL (default 1h). This command lists them as JSON, or
deletes them all with --clear.`,
	Run: func(cmd *cobra.Command, args []string) {
		db, err := store.NewDB(cfg.DataDir, logger)
		if err != nil {
			HandleError(err, "Failed to open snapshot store")
		}
		defer db.Close()

		if clearSnapshots {
			n, err := db.ClearSnapshots()
			if err != nil {
				HandleError(err, "Failed to clear snapshots")
			}
			fmt.Printf("Deleted %d snapshots\n", n)
			return
		}

		snaps, err := db.ListSnapshots()
		if err != nil {
			HandleError(err, "Failed to list snapshots")
		}
		output, err := json.MarshalIndent(snaps, "", "  ")
		if err != nil {
			HandleError(err, "Failed to encode JSON")
		}
		fmt.Println(string(output))
	},
}

func init() {
	snapshotsCmd.Flags().BoolVar(&clearSnapshots, "clear", false, "Delete every snapshot")
	rootCmd.AddCommand(snapshotsCmd)
}
