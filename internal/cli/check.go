package cli

import (
	"github.com/justsurfingit/Agentic-Job-Applier/internal/orchestrator"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one status-check pass immediately.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		return a.orch.CheckPass(cmd.Context(), orchestrator.NewRunGuard())
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
