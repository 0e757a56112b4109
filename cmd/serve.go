package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Start the HTTP server that exposes the dashboard tables as JSON and CSV.

Clients log in with POST /api/auth/otp and /api/auth/verify, then send the
returned session id in the X-Session-ID header.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run the server on")
}

func runServe() {
	src, cleanup, err := OpenSource(cfg, logger)
	if err != nil {
		HandleError(err, "Failed to open data source")
	}
	defer cleanup()

	fmt.Printf("Starting Sampark Dashboard API server...\n")
	fmt.Printf("Data directory: %s\n", cfg.DataDir)
	if cfg.Demo {
		fmt.Printf("Mode: demo (sample data)\n")
	} else {
		fmt.Printf("API: %s\n", cfg.APIURL)
	}
	fmt.Printf("Port: %d\n\n", cfg.Port)

	if err := StartServer(cfg, src, logger); err != nil {
		HandleError(err, "Server failed")
	}
}
