package orchestrator

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/platform"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/sheets"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

// Ledger is the slice of the sheet adapter the workflows need.
type Ledger interface {
	ReadJobs(ctx context.Context, filter ...status.Status) ([]models.JobRecord, error)
	WriteUpdates(ctx context.Context, updates []sheets.RowUpdate) error
}

// Auditor records attempts and transitions locally. Audit failures are
// logged, never fatal to a pass.
type Auditor interface {
	LogApplication(a *models.ApplicationAttempt) error
	LogStatusChange(e *models.StatusChangeEvent) error
}

// Notifier delivers operator notifications. Fire-and-forget: delivery
// failure must not abort the pass.
type Notifier interface {
	SendApplicationResult(job models.JobRecord, attempt models.ApplicationAttempt, simulated bool) error
	SendStatusChange(job models.JobRecord, oldStatus, newStatus status.Status, checkedAt string, simulated bool) error
}

// LetterRenderer produces a cover letter for one job.
type LetterRenderer interface {
	Render(ctx context.Context, job models.JobRecord) (string, error)
}

// Strategies resolves a job URL to its platform automation.
type Strategies interface {
	ForURL(jobURL string) platform.Strategy
}

// Orchestrator runs the two workflows. Jobs within a pass are processed
// strictly sequentially: each apply/check drives a stateful browser
// session, and sequential processing keeps the platforms from seeing
// burst traffic.
type Orchestrator struct {
	cfg       *config.Config
	ledger    Ledger
	audit     Auditor
	notifier  Notifier
	letters   LetterRenderer
	platforms Strategies

	now func() time.Time
}

func New(cfg *config.Config, ledger Ledger, audit Auditor, notifier Notifier, letters LetterRenderer, platforms Strategies) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		ledger:    ledger,
		audit:     audit,
		notifier:  notifier,
		letters:   letters,
		platforms: platforms,
		now:       time.Now,
	}
}

// ApplyPass reads Not Applied jobs, applies to a bounded batch, and
// lands all sheet changes in one batched write at the end. A second
// trigger while the guard is held is skipped, not queued.
func (o *Orchestrator) ApplyPass(ctx context.Context, guard *RunGuard) error {
	if !guard.TryAcquire() {
		log.Println("A pass is already running - skipping application run")
		return nil
	}
	defer guard.Release()

	log.Println(strings.Repeat("=", 60))
	log.Printf("Starting application run at %s", o.now().UTC().Format(time.RFC3339))

	jobs, err := o.ledger.ReadJobs(ctx, status.NotApplied)
	if err != nil {
		return fmt.Errorf("reading pending jobs: %w", err)
	}
	if len(jobs) == 0 {
		log.Println("No pending jobs found. Nothing to do.")
		return nil
	}

	batch := jobs
	if len(batch) > o.cfg.MaxApplicationsPerRun {
		batch = batch[:o.cfg.MaxApplicationsPerRun]
	}
	log.Printf("Processing %d job(s) (limit=%d)", len(batch), o.cfg.MaxApplicationsPerRun)

	pool := platform.NewSessionPool()
	defer pool.CloseAll()

	var updates []sheets.RowUpdate
	for _, job := range batch {
		updates = append(updates, o.applyToJob(ctx, pool, job)...)
	}

	if o.cfg.DryRun {
		log.Printf("[DRY RUN] Skipping ledger write (%d update(s) withheld)", len(updates))
		log.Println("Application run complete.")
		return nil
	}
	if err := o.ledger.WriteUpdates(ctx, updates); err != nil {
		// Audit rows and notifications for this pass stand; the next
		// pass re-reads the sheet and retries these jobs, producing a
		// documented duplicate rather than a silent loss.
		log.Printf("Ledger write failed, jobs will be retried next pass: %v", err)
		return err
	}

	log.Println("Application run complete.")
	return nil
}

// applyToJob handles one job end to end and returns its sheet update.
// Failures are isolated here so one bad job never aborts the batch.
func (o *Orchestrator) applyToJob(ctx context.Context, pool *platform.SessionPool, job models.JobRecord) []sheets.RowUpdate {
	log.Printf("- Applying: %s @ %s", job.Position, job.Company)

	strat := o.platforms.ForURL(job.JobURL)
	outcome := o.runApply(ctx, pool, strat, job)

	resultStatus := status.Failed
	if outcome.Success {
		resultStatus = status.Applied
	}

	next, _, terr := status.Transition(job.Status, resultStatus)
	if terr != nil {
		// Leave the record unchanged; still audit and notify the
		// attempt itself so the operator record stays complete.
		log.Printf("Transition rejected for %s: %v", job.JobID, terr)
	}

	today := o.now().UTC().Format("2006-01-02")
	attempt := &models.ApplicationAttempt{
		JobID:         job.JobID,
		Company:       job.Company,
		Position:      job.Position,
		Platform:      strat.Name(),
		ResultStatus:  string(resultStatus),
		ApplicationID: outcome.ApplicationID,
		Notes:         outcome.Notes,
		AppliedAt:     o.now().UTC(),
	}
	if err := o.audit.LogApplication(attempt); err != nil {
		log.Printf("Could not write audit row: %v", err)
	}
	if err := o.notifier.SendApplicationResult(job, *attempt, o.cfg.DryRun); err != nil {
		log.Printf("Could not send email notification: %v", err)
	}

	log.Printf("  Result: %s | ID: %s | Notes: %s", resultStatus, attempt.ApplicationID, attempt.Notes)

	if terr != nil {
		return nil
	}
	fields := map[string]string{
		sheets.ColStatus:        string(next),
		sheets.ColLastChecked:   today,
		sheets.ColApplicationID: outcome.ApplicationID,
		sheets.ColNotes:         outcome.Notes,
	}
	if outcome.Success {
		fields[sheets.ColAppliedDate] = today
	}
	return []sheets.RowUpdate{{RowIndex: job.RowIndex, Fields: fields}}
}

// runApply picks the right path: the unsupported strategy never opens a
// session and answers locally; dry-run synthesises success without a
// session; everything else drives the real platform.
func (o *Orchestrator) runApply(ctx context.Context, pool *platform.SessionPool, strat platform.Strategy, job models.JobRecord) platform.ApplyOutcome {
	if strat.Name() == platform.Unsupported {
		outcome, _ := strat.Apply(ctx, nil, job, "", "")
		return outcome
	}

	letterText, err := o.letters.Render(ctx, job)
	if err != nil {
		return platform.ApplyOutcome{Notes: fmt.Sprintf("Cover letter rendering failed: %v", err)}
	}

	if o.cfg.DryRun {
		log.Printf("[DRY RUN] Would apply to %s @ %s via %s", job.Position, job.Company, strat.Name())
		return platform.ApplyOutcome{
			Success:       true,
			ApplicationID: "AUTO-" + strings.ToUpper(uuid.NewString()[:8]),
			Notes:         "Dry run - no actual application sent",
		}
	}

	outcome, err := strat.Apply(ctx, pool, job, letterText, o.cfg.ResumeLocalPath)
	if err != nil {
		// Environment fault (browser unavailable). Record it as a
		// failed attempt and keep going with the rest of the batch.
		log.Printf("Apply error for %s: %v", job.JobURL, err)
		return platform.ApplyOutcome{Notes: fmt.Sprintf("Error: %v", err)}
	}
	return outcome
}

// CheckPass reads every job in a non-terminal post-apply status, checks
// each on its platform, applies accepted transitions, and always
// refreshes Last_Checked so staleness stays bounded.
func (o *Orchestrator) CheckPass(ctx context.Context, guard *RunGuard) error {
	if !guard.TryAcquire() {
		log.Println("A pass is already running - skipping status check")
		return nil
	}
	defer guard.Release()

	log.Println(strings.Repeat("=", 60))
	log.Printf("Starting status check at %s", o.now().UTC().Format(time.RFC3339))

	jobs, err := o.ledger.ReadJobs(ctx, status.Applied, status.UnderReview, status.InterviewScheduled)
	if err != nil {
		return fmt.Errorf("reading applied jobs: %w", err)
	}
	if len(jobs) == 0 {
		log.Println("No applied jobs to check.")
		return nil
	}

	batch := jobs
	if len(batch) > o.cfg.MaxStatusChecksPerRun {
		batch = batch[:o.cfg.MaxStatusChecksPerRun]
	}
	log.Printf("Checking status of %d applied job(s) (limit=%d)", len(batch), o.cfg.MaxStatusChecksPerRun)

	pool := platform.NewSessionPool()
	defer pool.CloseAll()

	var updates []sheets.RowUpdate
	for _, job := range batch {
		updates = append(updates, o.checkJob(ctx, pool, job))
	}

	if o.cfg.DryRun {
		log.Printf("[DRY RUN] Skipping ledger write (%d update(s) withheld)", len(updates))
		log.Println("Status check complete.")
		return nil
	}
	if err := o.ledger.WriteUpdates(ctx, updates); err != nil {
		log.Printf("Ledger write failed, checks will be retried next pass: %v", err)
		return err
	}

	log.Println("Status check complete.")
	return nil
}

// checkJob checks one job and returns its row update. Last_Checked is
// always part of the update, even when nothing changed.
func (o *Orchestrator) checkJob(ctx context.Context, pool *platform.SessionPool, job models.JobRecord) sheets.RowUpdate {
	strat := o.platforms.ForURL(job.JobURL)

	var outcome platform.CheckOutcome
	if o.cfg.DryRun && strat.Name() != platform.Unsupported {
		log.Printf("[DRY RUN] Would check %s status for %s @ %s", strat.Name(), job.Position, job.Company)
		outcome = platform.CheckOutcome{Notes: "Dry run - no actual status check performed"}
	} else {
		var err error
		outcome, err = strat.CheckStatus(ctx, pool, job)
		if err != nil {
			log.Printf("Status check error for %s @ %s: %v", job.Position, job.Company, err)
			outcome = platform.CheckOutcome{Notes: fmt.Sprintf("Check failed: %v", err)}
		}
	}

	checkDate := o.now().UTC().Format("2006-01-02")
	fields := map[string]string{sheets.ColLastChecked: checkDate}

	if outcome.Found && outcome.DetectedStatus != job.Status {
		next, changed, terr := status.Transition(job.Status, outcome.DetectedStatus)
		switch {
		case terr != nil:
			log.Printf("Ignoring invalid transition for %s @ %s: %v", job.Position, job.Company, terr)
		case changed:
			log.Printf("  Status change: %s -> %s for %s @ %s", job.Status, next, job.Position, job.Company)
			fields[sheets.ColStatus] = string(next)

			event := &models.StatusChangeEvent{
				JobID:     job.JobID,
				Company:   job.Company,
				Position:  job.Position,
				OldStatus: string(job.Status),
				NewStatus: string(next),
				ChangedAt: o.now().UTC(),
			}
			if err := o.audit.LogStatusChange(event); err != nil {
				log.Printf("Could not write audit row: %v", err)
			}
			if err := o.notifier.SendStatusChange(job, job.Status, next, checkDate, o.cfg.DryRun); err != nil {
				log.Printf("Could not send status update email: %v", err)
			}
		}
	} else {
		log.Printf("  No change for %s @ %s (still: %s)", job.Position, job.Company, job.Status)
	}

	return sheets.RowUpdate{RowIndex: job.RowIndex, Fields: fields}
}
