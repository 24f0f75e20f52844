package cli

import (
	"fmt"
	"strings"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print pending jobs from the sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}

		jobs, err := a.ledger.ReadJobs(cmd.Context(), status.NotApplied)
		if err != nil {
			return err
		}
		if len(jobs) == 0 {
			fmt.Println("No pending jobs found in the sheet.")
			return nil
		}

		line := strings.Repeat("=", 70)
		fmt.Println("\n" + line)
		fmt.Printf("%-30s %-30s %-10s\n", "Company", "Position", "Priority")
		fmt.Println(line)
		for _, j := range jobs {
			fmt.Printf("%-30s %-30s %-10s\n", j.Company, j.Position, j.Priority)
		}
		fmt.Println(line + "\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
