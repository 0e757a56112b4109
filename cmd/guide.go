package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var guideWidth int

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain what each indicator measures and how it is coloured",
	Run: func(cmd *cobra.Command, args []string) {
		out, err := RenderGuide(guideWidth)
		if err != nil {
			HandleError(err, "Failed to render guide")
		}
		fmt.Print(out)
	},
}

func init() {
	guideCmd.Flags().IntVarP(&guideWidth, "width", "w", 100, "Wrap width")
	rootCmd.AddCommand(guideCmd)
}
