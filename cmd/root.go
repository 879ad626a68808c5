package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "support-console",
	Short: "Support console: session-scoped ticket list, conversations, and notifications over the remote ticketing API",
	RunE:  runServe,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
