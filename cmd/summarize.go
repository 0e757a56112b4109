package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var summarizeFlags tableFlags

var summarizeCmd = &cobra.Command{
	Use:   "summarize [table]",
	Short: "Write a short narrative summary of a table with Claude",
	Long: `Send the filtered rows of a table to Claude and print a short narrative:
which units are on target, which need attention, and what stands out.

Requires ANTHROPIC_API_KEY (or SAMPARK_ANTHROPIC_API_KEY) to be set.

Examples:
  samparkdash summarize leading
  samparkdash summarize class-observation --district 111
  samparkdash summarize leading --filter low`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.AnthropicAPIKey == "" {
			HandleError(fmt.Errorf("ANTHROPIC_API_KEY environment variable not set"), "Missing API key")
		}
		ctx := context.Background()

		t, cleanup, err := openTable(ctx, args[0], &summarizeFlags)
		if err != nil {
			HandleError(err, "Failed to open table")
		}
		defer cleanup()

		text, err := Summarize(ctx, cfg.AnthropicAPIKey, t)
		if err != nil {
			HandleError(err, "Failed to summarize table")
		}
		fmt.Println(text)
	},
}

func init() {
	summarizeFlags.register(summarizeCmd, false)
	rootCmd.AddCommand(summarizeCmd)
}
