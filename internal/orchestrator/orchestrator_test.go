package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/platform"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/sheets"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

// --- fakes ---

type fakeLedger struct {
	jobs     []models.JobRecord
	reads    int
	writes   [][]sheets.RowUpdate
	writeErr error
}

func (f *fakeLedger) ReadJobs(_ context.Context, filter ...status.Status) ([]models.JobRecord, error) {
	f.reads++
	return sheets.FilterByStatus(f.jobs, filter...), nil
}

func (f *fakeLedger) WriteUpdates(_ context.Context, updates []sheets.RowUpdate) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, updates)
	return nil
}

type fakeAudit struct {
	attempts []models.ApplicationAttempt
	events   []models.StatusChangeEvent
}

func (f *fakeAudit) LogApplication(a *models.ApplicationAttempt) error {
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeAudit) LogStatusChange(e *models.StatusChangeEvent) error {
	f.events = append(f.events, *e)
	return nil
}

type notification struct {
	kind      string
	simulated bool
}

type fakeNotifier struct {
	sent []notification
}

func (f *fakeNotifier) SendApplicationResult(_ models.JobRecord, _ models.ApplicationAttempt, simulated bool) error {
	f.sent = append(f.sent, notification{kind: "application", simulated: simulated})
	return nil
}

func (f *fakeNotifier) SendStatusChange(_ models.JobRecord, _, _ status.Status, _ string, simulated bool) error {
	f.sent = append(f.sent, notification{kind: "status", simulated: simulated})
	return nil
}

type fakeLetters struct{}

func (fakeLetters) Render(_ context.Context, job models.JobRecord) (string, error) {
	return "Dear " + job.Company, nil
}

type stubStrategy struct {
	name  string
	apply platform.ApplyOutcome
	check platform.CheckOutcome
	calls int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Apply(_ context.Context, _ *platform.SessionPool, _ models.JobRecord, _, _ string) (platform.ApplyOutcome, error) {
	s.calls++
	return s.apply, nil
}

func (s *stubStrategy) CheckStatus(_ context.Context, _ *platform.SessionPool, _ models.JobRecord) (platform.CheckOutcome, error) {
	s.calls++
	return s.check, nil
}

type stubRegistry struct {
	strat platform.Strategy
}

func (r stubRegistry) ForURL(string) platform.Strategy { return r.strat }

// realRegistry resolves URLs against the embedded selector tables, so
// unknown domains land on the unsupported strategy.
func realRegistry(t *testing.T) *platform.Registry {
	t.Helper()
	r, err := platform.NewRegistry(&config.Config{})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return r
}

func testConfig() *config.Config {
	return &config.Config{
		MaxApplicationsPerRun: 5,
		MaxStatusChecksPerRun: 10,
	}
}

func notApplied(n int) []models.JobRecord {
	var jobs []models.JobRecord
	for i := 0; i < n; i++ {
		jobs = append(jobs, models.JobRecord{
			RowIndex: i + 2,
			JobID:    fmt.Sprintf("JOB-%d", i+1),
			Company:  "Globex",
			Position: "Backend Engineer",
			Status:   status.NotApplied,
			JobURL:   "https://www.linkedin.com/jobs/view/1",
		})
	}
	return jobs
}

// --- apply workflow ---

func TestApplyPassDryRunScenario(t *testing.T) {
	// One LinkedIn job and one unrecognised domain: dry run must log
	// two attempts (one simulated success, one unsupported failure),
	// open no browser, and write nothing to the sheet.
	ledger := &fakeLedger{jobs: []models.JobRecord{
		{RowIndex: 2, JobID: "JOB-1", Company: "Globex", Position: "BE", Status: status.NotApplied, JobURL: "https://www.linkedin.com/jobs/view/1"},
		{RowIndex: 3, JobID: "JOB-2", Company: "Initech", Position: "DA", Status: status.NotApplied, JobURL: "https://jobs.example.com/2"},
	}}
	auditor := &fakeAudit{}
	notifier := &fakeNotifier{}

	cfg := testConfig()
	cfg.DryRun = true
	o := New(cfg, ledger, auditor, notifier, fakeLetters{}, realRegistry(t))

	if err := o.ApplyPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("ApplyPass: %v", err)
	}

	if len(auditor.attempts) != 2 {
		t.Fatalf("got %d attempts, want 2", len(auditor.attempts))
	}
	if auditor.attempts[0].ResultStatus != string(status.Applied) {
		t.Errorf("linkedin attempt = %s, want Applied", auditor.attempts[0].ResultStatus)
	}
	if auditor.attempts[0].ApplicationID == "" {
		t.Error("simulated success must synthesise an application ID")
	}
	if auditor.attempts[1].ResultStatus != string(status.Failed) {
		t.Errorf("unsupported attempt = %s, want Failed", auditor.attempts[1].ResultStatus)
	}
	if !strings.Contains(strings.ToLower(auditor.attempts[1].Notes), "unsupported platform") {
		t.Errorf("unsupported attempt notes = %q", auditor.attempts[1].Notes)
	}
	if auditor.attempts[1].Platform != platform.Unsupported {
		t.Errorf("platform = %s, want %s", auditor.attempts[1].Platform, platform.Unsupported)
	}

	if len(ledger.writes) != 0 {
		t.Errorf("dry run wrote %d batches to the ledger, want 0", len(ledger.writes))
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("got %d notifications, want 2", len(notifier.sent))
	}
	for _, n := range notifier.sent {
		if !n.simulated {
			t.Error("dry-run notifications must be marked simulated")
		}
	}
}

func TestApplyPassBoundsBatch(t *testing.T) {
	ledger := &fakeLedger{jobs: notApplied(8)}
	auditor := &fakeAudit{}

	cfg := testConfig()
	cfg.DryRun = true
	strat := &stubStrategy{name: "linkedin"}
	o := New(cfg, ledger, auditor, &fakeNotifier{}, fakeLetters{}, stubRegistry{strat})

	if err := o.ApplyPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("ApplyPass: %v", err)
	}
	if len(auditor.attempts) != cfg.MaxApplicationsPerRun {
		t.Errorf("processed %d jobs, want %d", len(auditor.attempts), cfg.MaxApplicationsPerRun)
	}
	if strat.calls != 0 {
		t.Errorf("dry run called the live strategy %d times, want 0", strat.calls)
	}
}

func TestApplyPassSuccessfulLiveRun(t *testing.T) {
	ledger := &fakeLedger{jobs: notApplied(1)}
	auditor := &fakeAudit{}
	notifier := &fakeNotifier{}

	strat := &stubStrategy{name: "linkedin", apply: platform.ApplyOutcome{
		Success:       true,
		ApplicationID: "AUTO-ABCD1234",
		Notes:         "Submitted via LinkedIn Easy Apply",
	}}
	o := New(testConfig(), ledger, auditor, notifier, fakeLetters{}, stubRegistry{strat})

	if err := o.ApplyPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("ApplyPass: %v", err)
	}

	if len(ledger.writes) != 1 {
		t.Fatalf("got %d batched writes, want exactly 1", len(ledger.writes))
	}
	update := ledger.writes[0][0]
	if update.RowIndex != 2 {
		t.Errorf("update row = %d, want 2", update.RowIndex)
	}
	if update.Fields[sheets.ColStatus] != string(status.Applied) {
		t.Errorf("status cell = %q, want Applied", update.Fields[sheets.ColStatus])
	}
	if update.Fields[sheets.ColAppliedDate] == "" {
		t.Error("applied date must be set on success")
	}
	if update.Fields[sheets.ColApplicationID] != "AUTO-ABCD1234" {
		t.Errorf("application id cell = %q", update.Fields[sheets.ColApplicationID])
	}

	if len(auditor.attempts) != 1 || auditor.attempts[0].ResultStatus != string(status.Applied) {
		t.Errorf("unexpected audit attempts: %+v", auditor.attempts)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].simulated {
		t.Errorf("unexpected notifications: %+v", notifier.sent)
	}
}

func TestApplyPassFailedApplyHasNoAppliedDate(t *testing.T) {
	ledger := &fakeLedger{jobs: notApplied(1)}
	strat := &stubStrategy{name: "linkedin", apply: platform.ApplyOutcome{
		Notes: "No apply button found - may require external application",
	}}
	o := New(testConfig(), ledger, &fakeAudit{}, &fakeNotifier{}, fakeLetters{}, stubRegistry{strat})

	if err := o.ApplyPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("ApplyPass: %v", err)
	}

	update := ledger.writes[0][0]
	if update.Fields[sheets.ColStatus] != string(status.Failed) {
		t.Errorf("status cell = %q, want Failed", update.Fields[sheets.ColStatus])
	}
	if _, ok := update.Fields[sheets.ColAppliedDate]; ok {
		t.Error("applied date must not be set on failure")
	}
}

func TestApplyPassLedgerWriteFailure(t *testing.T) {
	// Audit rows and notifications stand even when the final batched
	// write fails; the pass reports the error for retry next cycle.
	wantErr := errors.New("sheet unreachable")
	ledger := &fakeLedger{jobs: notApplied(1), writeErr: wantErr}
	auditor := &fakeAudit{}
	notifier := &fakeNotifier{}

	strat := &stubStrategy{name: "linkedin", apply: platform.ApplyOutcome{Success: true, ApplicationID: "AUTO-1"}}
	o := New(testConfig(), ledger, auditor, notifier, fakeLetters{}, stubRegistry{strat})

	err := o.ApplyPass(context.Background(), NewRunGuard())
	if !errors.Is(err, wantErr) {
		t.Fatalf("ApplyPass error = %v, want %v", err, wantErr)
	}
	if len(auditor.attempts) != 1 {
		t.Error("audit row must survive a failed ledger write")
	}
	if len(notifier.sent) != 1 {
		t.Error("notification must survive a failed ledger write")
	}
}

func TestApplyPassEmptyLedgerIsNoOp(t *testing.T) {
	ledger := &fakeLedger{}
	auditor := &fakeAudit{}
	o := New(testConfig(), ledger, auditor, &fakeNotifier{}, fakeLetters{}, realRegistry(t))

	if err := o.ApplyPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("ApplyPass: %v", err)
	}
	if len(auditor.attempts) != 0 || len(ledger.writes) != 0 {
		t.Error("empty ledger must be a no-op")
	}
}

func TestPassSkippedWhileAnotherRuns(t *testing.T) {
	ledger := &fakeLedger{jobs: notApplied(1)}
	strat := &stubStrategy{name: "linkedin", apply: platform.ApplyOutcome{Success: true, ApplicationID: "AUTO-1"}}
	o := New(testConfig(), ledger, &fakeAudit{}, &fakeNotifier{}, fakeLetters{}, stubRegistry{strat})

	guard := NewRunGuard()
	if !guard.TryAcquire() {
		t.Fatal("fresh guard must be acquirable")
	}

	// Guard is held: both passes must skip without touching the ledger.
	if err := o.ApplyPass(context.Background(), guard); err != nil {
		t.Fatalf("ApplyPass: %v", err)
	}
	if err := o.CheckPass(context.Background(), guard); err != nil {
		t.Fatalf("CheckPass: %v", err)
	}
	if ledger.reads != 0 {
		t.Errorf("skipped pass read the ledger %d times, want 0", ledger.reads)
	}

	guard.Release()
	if err := o.ApplyPass(context.Background(), guard); err != nil {
		t.Fatalf("ApplyPass after release: %v", err)
	}
	if ledger.reads != 1 {
		t.Errorf("released guard must allow the pass, reads = %d", ledger.reads)
	}
}

// --- status-check workflow ---

func appliedJob(st status.Status) models.JobRecord {
	return models.JobRecord{
		RowIndex: 2,
		JobID:    "JOB-1",
		Company:  "Globex",
		Position: "Backend Engineer",
		Status:   st,
		JobURL:   "https://www.linkedin.com/jobs/view/1",
	}
}

func TestCheckPassAcceptedTransition(t *testing.T) {
	ledger := &fakeLedger{jobs: []models.JobRecord{appliedJob(status.Applied)}}
	auditor := &fakeAudit{}
	notifier := &fakeNotifier{}

	strat := &stubStrategy{name: "linkedin", check: platform.CheckOutcome{
		DetectedStatus: status.Rejected,
		Found:          true,
	}}
	o := New(testConfig(), ledger, auditor, notifier, fakeLetters{}, stubRegistry{strat})

	if err := o.CheckPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("CheckPass: %v", err)
	}

	if len(auditor.events) != 1 {
		t.Fatalf("got %d status change events, want 1", len(auditor.events))
	}
	e := auditor.events[0]
	if e.OldStatus != string(status.Applied) || e.NewStatus != string(status.Rejected) {
		t.Errorf("event = %s -> %s, want Applied -> Rejected", e.OldStatus, e.NewStatus)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].kind != "status" {
		t.Errorf("unexpected notifications: %+v", notifier.sent)
	}

	update := ledger.writes[0][0]
	if update.Fields[sheets.ColStatus] != string(status.Rejected) {
		t.Errorf("status cell = %q, want Rejected", update.Fields[sheets.ColStatus])
	}
	if update.Fields[sheets.ColLastChecked] == "" {
		t.Error("last checked must always be updated")
	}
}

func TestCheckPassInvalidTransitionStillTouchesLastChecked(t *testing.T) {
	// A backward move (InterviewScheduled -> UnderReview) is rejected:
	// no event, no notification, but Last_Checked still refreshes.
	ledger := &fakeLedger{jobs: []models.JobRecord{appliedJob(status.InterviewScheduled)}}
	auditor := &fakeAudit{}
	notifier := &fakeNotifier{}

	strat := &stubStrategy{name: "linkedin", check: platform.CheckOutcome{
		DetectedStatus: status.UnderReview,
		Found:          true,
	}}
	o := New(testConfig(), ledger, auditor, notifier, fakeLetters{}, stubRegistry{strat})

	if err := o.CheckPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("CheckPass: %v", err)
	}

	if len(auditor.events) != 0 {
		t.Errorf("rejected transition produced %d events", len(auditor.events))
	}
	if len(notifier.sent) != 0 {
		t.Errorf("rejected transition produced %d notifications", len(notifier.sent))
	}

	update := ledger.writes[0][0]
	if _, ok := update.Fields[sheets.ColStatus]; ok {
		t.Error("rejected transition must not touch the status cell")
	}
	if update.Fields[sheets.ColLastChecked] == "" {
		t.Error("last checked must still be updated")
	}
}

func TestCheckPassNoDetectionOnlyUpdatesLastChecked(t *testing.T) {
	ledger := &fakeLedger{jobs: []models.JobRecord{appliedJob(status.Applied)}}
	auditor := &fakeAudit{}

	strat := &stubStrategy{name: "linkedin", check: platform.CheckOutcome{
		Notes: "Application entry for Globex not found",
	}}
	o := New(testConfig(), ledger, auditor, &fakeNotifier{}, fakeLetters{}, stubRegistry{strat})

	if err := o.CheckPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("CheckPass: %v", err)
	}
	if len(auditor.events) != 0 {
		t.Error("no detection must not emit events")
	}
	update := ledger.writes[0][0]
	if len(update.Fields) != 1 || update.Fields[sheets.ColLastChecked] == "" {
		t.Errorf("want only a last-checked update, got %+v", update.Fields)
	}
}

func TestCheckPassReadsNonTerminalPostApplyStatuses(t *testing.T) {
	ledger := &fakeLedger{jobs: []models.JobRecord{
		{RowIndex: 2, JobID: "J1", Status: status.Applied, JobURL: "https://x.example.com"},
		{RowIndex: 3, JobID: "J2", Status: status.UnderReview, JobURL: "https://x.example.com"},
		{RowIndex: 4, JobID: "J3", Status: status.InterviewScheduled, JobURL: "https://x.example.com"},
		{RowIndex: 5, JobID: "J4", Status: status.Rejected, JobURL: "https://x.example.com"},
		{RowIndex: 6, JobID: "J5", Status: status.NotApplied, JobURL: "https://x.example.com"},
	}}
	o := New(testConfig(), ledger, &fakeAudit{}, &fakeNotifier{}, fakeLetters{}, realRegistry(t))

	if err := o.CheckPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("CheckPass: %v", err)
	}
	if len(ledger.writes) != 1 || len(ledger.writes[0]) != 3 {
		t.Fatalf("checked rows = %v, want the 3 non-terminal post-apply jobs", ledger.writes)
	}
}

func TestCheckPassDryRunWritesNothing(t *testing.T) {
	ledger := &fakeLedger{jobs: []models.JobRecord{appliedJob(status.Applied)}}
	cfg := testConfig()
	cfg.DryRun = true

	strat := &stubStrategy{name: "linkedin", check: platform.CheckOutcome{DetectedStatus: status.Rejected, Found: true}}
	o := New(cfg, ledger, &fakeAudit{}, &fakeNotifier{}, fakeLetters{}, stubRegistry{strat})

	if err := o.CheckPass(context.Background(), NewRunGuard()); err != nil {
		t.Fatalf("CheckPass: %v", err)
	}
	if strat.calls != 0 {
		t.Errorf("dry run hit the live platform %d times", strat.calls)
	}
	if len(ledger.writes) != 0 {
		t.Errorf("dry run wrote %d batches", len(ledger.writes))
	}
}
