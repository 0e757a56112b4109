package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"samparkdash/internal/tableutil"
)

var (
	exportFlags tableFlags
	exportDir   string
)

var exportCmd = &cobra.Command{
	Use:   "export [table]",
	Short: "Export the filtered rows of a table as CSV",
	Long: `Export every row that matches the search and filter (not just one page)
as a CSV file named <table>-<scope>-<date>.csv.

Examples:
  samparkdash export leading
  samparkdash export leading --filter low --out reports/
  samparkdash export schools --district 111 --block 1111`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, cleanup, err := openTable(context.Background(), args[0], &exportFlags)
		if err != nil {
			HandleError(err, "Failed to open table")
		}
		defer cleanup()

		dir := exportDir
		if dir == "" {
			dir = cfg.ExportDir()
		}
		path, err := tableutil.ExportCSV(dir, t.Slug(), time.Now(), t.Records(), t.Headers())
		if err != nil {
			HandleError(err, "Failed to export CSV")
		}
		if path == "" {
			fmt.Println("No rows to export")
			return
		}
		logger.Info("Exported table", "table", t.Kind().String(), "path", path, "rows", len(t.Rows()))
		fmt.Printf("Exported %d rows to %s\n", len(t.Rows()), path)
	},
}

func init() {
	exportFlags.register(exportCmd, false)
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "", "Output directory (default <data-dir>/exports)")
	rootCmd.AddCommand(exportCmd)
}
