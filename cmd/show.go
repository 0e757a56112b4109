package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"samparkdash/internal/classify"
	"samparkdash/internal/indicators"
)

var (
	showFlags tableFlags
	showJSON  bool
)

var showCmd = &cobra.Command{
	Use:   "show [table]",
	Short: "Print one page of an indicator table",
	Long: `Print one page of an indicator table.

Tables: leading, class-observation, lagging (state only), schools (block only).

Examples:
  samparkdash show leading
  samparkdash show leading --filter low --sort dailyUsage --dir desc
  samparkdash show class-observation --district 111
  samparkdash show schools --district 111 --block 1111 --search 2227
  samparkdash show lagging --subject math --json`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, cleanup, err := openTable(context.Background(), args[0], &showFlags)
		if err != nil {
			HandleError(err, "Failed to open table")
		}
		defer cleanup()

		page := t.View()
		if showJSON {
			output, err := json.MarshalIndent(page, "", "  ")
			if err != nil {
				HandleError(err, "Failed to encode JSON")
			}
			fmt.Println(string(output))
			return
		}
		printPage(page)
	},
}

func init() {
	showFlags.register(showCmd, true)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the page as JSON")
	rootCmd.AddCommand(showCmd)
}

// printPage renders page with tablewriter. Classified cells carry their
// tier label so the colours survive a plain terminal.
func printPage(page indicators.Page) {
	fmt.Println(page.Title)
	fmt.Println(page.Subtitle)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	header := make([]string, len(page.Columns))
	for i, c := range page.Columns {
		header[i] = c.Title
	}
	table.SetHeader(header)

	for _, r := range page.Rows {
		row := make([]string, len(r.Cells))
		for i, c := range r.Cells {
			row[i] = c.Display
			switch c.Tier {
			case classify.Unknown, classify.Benchmark:
			default:
				row[i] += " (" + c.Tier.Label() + ")"
			}
		}
		table.Append(row)
	}
	table.Render()

	fmt.Printf("Page %d of %d (%d rows)\n", page.Page, max(page.TotalPages, 1), page.TotalItems)
}
