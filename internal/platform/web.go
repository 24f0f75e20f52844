package platform

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
)

const (
	// maxFormSteps bounds the multi-step apply form walker.
	maxFormSteps = 10
	// checkpointWait bounds the manual CAPTCHA/2FA solve window.
	checkpointWait = 2 * time.Minute
)

// webStrategy drives a real job board through a browser session. One
// instance per platforms.yaml entry; behaviour differences live in the
// selector table, not in code.
type webStrategy struct {
	name  string
	sel   Selectors
	creds Credentials
}

func (w *webStrategy) Name() string { return w.name }

// Apply logs in (reusing the pass's session when one is already open),
// navigates to the job posting and walks the apply form. Expected
// failures come back as outcomes; only a browser launch failure is an
// error.
func (w *webStrategy) Apply(ctx context.Context, pool *SessionPool, job models.JobRecord, coverLetter, resumePath string) (ApplyOutcome, error) {
	if err := ctx.Err(); err != nil {
		return ApplyOutcome{}, err
	}

	sess, err := pool.Get(w.name, w.sel.Headless)
	if err != nil {
		return ApplyOutcome{}, err
	}

	if err := w.ensureLogin(sess); err != nil {
		log.Printf("Login failed on %s: %v", w.name, err)
		return ApplyOutcome{Notes: fmt.Sprintf("Login failed: %v", err)}, nil
	}

	if err := sess.Run(30*time.Second, chromedp.Navigate(job.JobURL)); err != nil {
		log.Printf("Navigation failed for %s: %v", job.JobURL, err)
		return ApplyOutcome{Notes: fmt.Sprintf("Navigation failed: %v", err)}, nil
	}

	if !sess.visible(w.sel.ApplyButton, 8*time.Second) {
		return ApplyOutcome{Notes: "No apply button found - may require external application"}, nil
	}
	if err := sess.Run(10*time.Second, chromedp.Click(w.sel.ApplyButton, by(w.sel.ApplyButton))); err != nil {
		return ApplyOutcome{Notes: fmt.Sprintf("Could not click apply button: %v", err)}, nil
	}

	// Some boards open the apply flow in a fresh tab (Indeed pattern).
	sess.switchToNewTab()

	return w.walkForm(sess, job, coverLetter, resumePath), nil
}

// walkForm works through the multi-step form: upload resume and fill a
// cover letter where inputs are present, submit when a submit button
// shows up, advance on next/continue, bail out after maxFormSteps.
func (w *webStrategy) walkForm(sess *Session, job models.JobRecord, coverLetter, resumePath string) ApplyOutcome {
	for i := 0; i < maxFormSteps; i++ {
		if resumePath != "" && fileExists(resumePath) && sess.visible("input[type=file]", 2*time.Second) {
			if err := sess.Run(5*time.Second, chromedp.SetUploadFiles("input[type=file]", []string{resumePath}, chromedp.ByQuery)); err != nil {
				log.Printf("Resume upload failed (continuing): %v", err)
			}
		}

		if coverLetter != "" && sess.visible("textarea", 2*time.Second) {
			if err := sess.Run(5*time.Second, chromedp.SendKeys("textarea", coverLetter, chromedp.ByQuery)); err != nil {
				log.Printf("Cover letter fill failed (continuing): %v", err)
			}
		}

		if sess.visible(w.sel.FormSubmit, 2*time.Second) {
			if err := sess.Run(10*time.Second,
				chromedp.Click(w.sel.FormSubmit, by(w.sel.FormSubmit)),
				chromedp.Sleep(3*time.Second),
			); err != nil {
				return ApplyOutcome{Notes: fmt.Sprintf("Submit click failed: %v", err)}
			}
			log.Printf("Application submitted for %s @ %s", job.Position, job.Company)
			return ApplyOutcome{Success: true, ApplicationID: syntheticID(), Notes: w.sel.AppliedNote}
		}

		if sess.visible(w.sel.FormNext, 2*time.Second) {
			if err := sess.Run(8*time.Second, chromedp.Click(w.sel.FormNext, by(w.sel.FormNext))); err != nil {
				break
			}
			continue
		}

		// No recognisable button on this step.
		break
	}
	return ApplyOutcome{Notes: "Could not complete apply form - check job manually"}
}

// CheckStatus opens the platform's applied-jobs view and looks for an
// entry matching the job's company/position, mapping its text to a
// status via the ordered keyword table.
func (w *webStrategy) CheckStatus(ctx context.Context, pool *SessionPool, job models.JobRecord) (CheckOutcome, error) {
	if err := ctx.Err(); err != nil {
		return CheckOutcome{}, err
	}
	if w.sel.AppliedJobsURL == "" {
		return CheckOutcome{Notes: "No automated status check available for this platform"}, nil
	}

	sess, err := pool.Get(w.name, w.sel.Headless)
	if err != nil {
		return CheckOutcome{}, err
	}
	if err := w.ensureLogin(sess); err != nil {
		log.Printf("Login failed on %s: %v", w.name, err)
		return CheckOutcome{Notes: fmt.Sprintf("Login failed: %v", err)}, nil
	}

	if err := sess.Run(30*time.Second,
		chromedp.Navigate(w.sel.AppliedJobsURL),
		chromedp.Sleep(3*time.Second),
	); err != nil {
		return CheckOutcome{Notes: fmt.Sprintf("Could not open applied jobs page: %v", err)}, nil
	}

	// Each application renders as a list item; scope keyword matching
	// to the card for this company to avoid unrelated jobs on the page.
	var cards []string
	if err := sess.Run(10*time.Second,
		chromedp.Evaluate(`Array.from(document.querySelectorAll('li')).map(n => n.innerText)`, &cards),
	); err != nil {
		return CheckOutcome{Notes: fmt.Sprintf("Could not read applied jobs list: %v", err)}, nil
	}

	card, ok := matchCard(cards, job.Company, job.Position)
	if !ok {
		log.Printf("Could not find application card for %s on %s - keeping current status", job.Company, w.name)
		return CheckOutcome{Notes: fmt.Sprintf("Application entry for %s not found", job.Company)}, nil
	}

	detected, ok := DetectStatus(card)
	if !ok {
		return CheckOutcome{Notes: "Entry found but no status keywords matched"}, nil
	}
	return CheckOutcome{
		DetectedStatus: detected,
		Found:          true,
		Notes:          fmt.Sprintf("Status checked via %s applied jobs. Application ID: %s", w.name, job.ApplicationID),
	}, nil
}

// ensureLogin authenticates once per session per pass.
func (w *webStrategy) ensureLogin(sess *Session) error {
	if sess.LoggedIn {
		return nil
	}
	if w.creds.Email == "" || w.creds.Password == "" {
		return fmt.Errorf("no credentials configured for %s", w.name)
	}

	sel := w.sel
	if err := sess.Run(30*time.Second, chromedp.Navigate(sel.LoginURL)); err != nil {
		return fmt.Errorf("opening login page: %w", err)
	}

	if sel.TwoStepLogin {
		// Email first, then continue, then password.
		if err := sess.Run(15*time.Second,
			chromedp.WaitVisible(sel.UsernameField, by(sel.UsernameField)),
			chromedp.SendKeys(sel.UsernameField, w.creds.Email, by(sel.UsernameField)),
			chromedp.Click(sel.ContinueButton, by(sel.ContinueButton)),
		); err != nil {
			return fmt.Errorf("email step: %w", err)
		}
		if err := sess.Run(15*time.Second,
			chromedp.WaitVisible(sel.PasswordField, by(sel.PasswordField)),
			chromedp.SendKeys(sel.PasswordField, w.creds.Password, by(sel.PasswordField)),
			chromedp.Click(sel.LoginSubmit, by(sel.LoginSubmit)),
		); err != nil {
			return fmt.Errorf("password step: %w", err)
		}
	} else {
		if err := sess.Run(15*time.Second,
			chromedp.WaitVisible(sel.UsernameField, by(sel.UsernameField)),
			chromedp.SendKeys(sel.UsernameField, w.creds.Email, by(sel.UsernameField)),
			chromedp.SendKeys(sel.PasswordField, w.creds.Password, by(sel.PasswordField)),
			chromedp.Click(sel.LoginSubmit, by(sel.LoginSubmit)),
		); err != nil {
			return fmt.Errorf("login form: %w", err)
		}
	}

	_ = sess.Run(15*time.Second, chromedp.Sleep(3*time.Second))

	if err := w.clearCheckpoint(sess); err != nil {
		return err
	}
	sess.LoggedIn = true
	return nil
}

// clearCheckpoint waits (bounded) for the user to solve a security
// challenge in the visible browser window.
func (w *webStrategy) clearCheckpoint(sess *Session) error {
	if len(w.sel.CheckpointPatterns) == 0 {
		return nil
	}
	loc := sess.location()
	hit := false
	for _, p := range w.sel.CheckpointPatterns {
		if strings.Contains(loc, p) {
			hit = true
			break
		}
	}
	if !hit {
		return nil
	}

	log.Printf("Security check detected on %s. Please complete it in the browser window.", w.name)
	deadline := time.Now().Add(checkpointWait)
	for time.Now().Before(deadline) {
		time.Sleep(2 * time.Second)
		if strings.Contains(sess.location(), w.sel.CheckpointDoneURL) {
			return nil
		}
	}
	return fmt.Errorf("security checkpoint not cleared within %s", checkpointWait)
}

// switchToNewTab attaches the session to a freshly opened page target,
// if any. Returns quietly when the flow stayed in the same tab.
func (s *Session) switchToNewTab() {
	infos, err := chromedp.Targets(s.ctx)
	if err != nil {
		return
	}
	c := chromedp.FromContext(s.ctx)
	for _, t := range infos {
		if t.Type != "page" || t.Attached {
			continue
		}
		if c.Target != nil && t.TargetID == c.Target.TargetID {
			continue
		}
		tabCtx, cancel := chromedp.NewContext(s.ctx, chromedp.WithTargetID(t.TargetID))
		s.ctx = tabCtx
		s.cancels = append(s.cancels, cancel)
		return
	}
}

// matchCard finds the first card containing the company name (or, as a
// fallback, the position) as a case-insensitive substring. Very short
// company names are skipped to avoid false positives.
func matchCard(cards []string, company, position string) (string, bool) {
	company = strings.ToLower(strings.TrimSpace(company))
	position = strings.ToLower(strings.TrimSpace(position))

	if len(company) >= 3 {
		for _, c := range cards {
			if strings.Contains(strings.ToLower(c), company) {
				return c, true
			}
		}
	}
	if len(position) >= 3 {
		for _, c := range cards {
			if strings.Contains(strings.ToLower(c), position) {
				return c, true
			}
		}
	}
	return "", false
}

// SyntheticID builds an application ID when the platform does not hand
// one back.
func syntheticID() string {
	return "AUTO-" + strings.ToUpper(uuid.NewString()[:8])
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
