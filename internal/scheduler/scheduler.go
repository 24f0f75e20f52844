package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/orchestrator"
	"github.com/robfig/cron/v3"
)

// Scheduler fires the two recurring workflows:
//  1. Apply to new jobs  -> weekdays at APPLY_HOUR:APPLY_MINUTE
//  2. Check job statuses -> every STATUS_CHECK_INTERVAL_DAYS days at
//     STATUS_CHECK_HOUR
//
// It owns the single run guard, so a trigger firing while a pass is in
// progress is skipped rather than queued.
type Scheduler struct {
	cron  *cron.Cron
	orch  *orchestrator.Orchestrator
	guard *orchestrator.RunGuard
	cfg   *config.Config
}

func New(cfg *config.Config, orch *orchestrator.Orchestrator) *Scheduler {
	return &Scheduler{
		cron:  cron.New(),
		orch:  orch,
		guard: orchestrator.NewRunGuard(),
		cfg:   cfg,
	}
}

// ApplySpec is the cron expression for the apply workflow.
func (s *Scheduler) ApplySpec() string {
	return fmt.Sprintf("%d %d * * 1-5", s.cfg.ApplyMinute, s.cfg.ApplyHour)
}

// CheckSpec is the cron expression for the status-check workflow.
// robfig/cron has no "every N days" trigger; */N on day-of-month is
// close enough at this cadence.
func (s *Scheduler) CheckSpec() string {
	return fmt.Sprintf("0 %d */%d * *", s.cfg.StatusCheckHour, s.cfg.StatusCheckIntervalDays)
}

// Start registers both triggers and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.ApplySpec(), func() {
		if err := s.orch.ApplyPass(context.Background(), s.guard); err != nil {
			log.Printf("Application run finished with error: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("registering apply trigger: %w", err)
	}

	if _, err := s.cron.AddFunc(s.CheckSpec(), func() {
		if err := s.orch.CheckPass(context.Background(), s.guard); err != nil {
			log.Printf("Status check finished with error: %v", err)
		}
	}); err != nil {
		return fmt.Errorf("registering status check trigger: %w", err)
	}

	s.cron.Start()
	log.Printf("Scheduler started (apply %q, check %q)", s.ApplySpec(), s.CheckSpec())
	return nil
}

// Stop halts the cron loop and waits for a running pass to finish its
// current job. Cancellation is cooperative only.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped.")
}
