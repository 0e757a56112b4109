package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"samparkdash/internal/sampark"
	"samparkdash/internal/session"
)

var (
	loginPhone string
	loginOTP   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with your phone number and an OTP",
	Long: `Request an OTP for your registered phone number and exchange it for a
session. The session is saved in the data directory and used by every
other command until you log out.

Examples:
  samparkdash login --phone 9876543210
  samparkdash login --phone 9876543210 --otp 1234`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		src, cleanup, err := OpenSource(cfg, logger)
		if err != nil {
			HandleError(err, "Failed to open data source")
		}
		defer cleanup()

		phone, err := sampark.NormalizePhone(loginPhone)
		if err != nil {
			HandleError(err, "Invalid phone number")
		}

		otp := loginOTP
		if otp == "" {
			if _, err := src.RequestOTP(ctx, phone); err != nil {
				HandleError(err, "Failed to request OTP")
			}
			fmt.Fprintf(os.Stderr, "OTP sent to %s. Enter OTP: ", phone)
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				HandleError(err, "Failed to read OTP")
			}
			otp = strings.TrimSpace(line)
		}

		creds, err := src.ValidateOTP(ctx, phone, otp)
		if err != nil {
			HandleError(err, "Login failed")
		}

		sess := session.New(creds)
		if err := session.SaveFile(cfg.SessionFile(), sess); err != nil {
			HandleError(err, "Failed to save session")
		}
		logger.Info("Logged in", "user", creds.User.Name, "role", creds.User.Role)
		fmt.Printf("Logged in as %s (%s)\n", creds.User.Name, creds.User.Designation)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		if err := session.RemoveFile(cfg.SessionFile()); err != nil {
			HandleError(err, "Failed to log out")
		}
		logger.Info("Logged out")
		fmt.Println("Logged out")
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginPhone, "phone", "", "Registered 10-digit phone number (required)")
	loginCmd.Flags().StringVar(&loginOTP, "otp", "", "OTP already received; skips requesting a new one")
	loginCmd.MarkFlagRequired("phone")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
