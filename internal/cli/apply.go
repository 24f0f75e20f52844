package cli

import (
	"github.com/justsurfingit/Agentic-Job-Applier/internal/orchestrator"
	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Run one application pass immediately.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		return a.orch.ApplyPass(cmd.Context(), orchestrator.NewRunGuard())
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
