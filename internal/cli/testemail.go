package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a test email to verify Gmail setup.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := initApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.mailer.SendTest(); err != nil {
			return err
		}
		fmt.Printf("Test email sent to %s. Check your inbox!\n", a.cfg.UserEmail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(testEmailCmd)
}
