package cli

import (
	"log"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/api"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only dashboard API.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		log.Printf("Dashboard API starting on %s ...", a.cfg.APIAddr)
		return api.New(a.audit, a.ledger).Run(a.cfg.APIAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
