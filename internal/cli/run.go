package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/scheduler"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the scheduler and run continuously.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := initApp(ctx)
		if err != nil {
			return err
		}

		sched := scheduler.New(a.cfg, a.orch)
		if err := sched.Start(); err != nil {
			return err
		}

		fmt.Println("\n" + strings.Repeat("=", 60))
		fmt.Println("  Job Application Agent - Running")
		fmt.Println(strings.Repeat("=", 60))
		fmt.Printf("  Apply jobs   : weekdays at %02d:%02d UTC\n", a.cfg.ApplyHour, a.cfg.ApplyMinute)
		fmt.Printf("  Check status : every %d day(s) at %02d:00 UTC\n", a.cfg.StatusCheckIntervalDays, a.cfg.StatusCheckHour)
		fmt.Printf("  Dry run mode : %v\n", a.cfg.DryRun)
		fmt.Printf("  Max per run  : %d\n", a.cfg.MaxApplicationsPerRun)
		fmt.Println("  Press Ctrl+C to stop.")
		fmt.Println(strings.Repeat("=", 60) + "\n")

		<-ctx.Done()
		sched.Stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
