package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var dryRun bool

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Automated job application agent.",
	Long: `Reads candidate jobs from a Google Sheet, applies through the
matching job board, tracks status changes over time, keeps a local
audit history and emails you at every step.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log actions without applying or writing to the sheet")
}
