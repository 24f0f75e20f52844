package platform

import (
	"context"
	"net/url"
	"strings"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

// Unsupported is the strategy name for job URLs no automation covers.
const Unsupported = "unsupported"

// ApplyOutcome is the structured result of one apply attempt. Expected
// failures (bad login, missing form, blocked flow) come back as
// Success=false with a readable note, never as an error.
type ApplyOutcome struct {
	Success       bool
	ApplicationID string
	Notes         string
}

// CheckOutcome is the structured result of one status check. Found is
// false when no matching application entry could be located, in which
// case no transition is attempted.
type CheckOutcome struct {
	DetectedStatus status.Status
	Found          bool
	Notes          string
}

// Strategy is the per-job-board automation contract. Implementations
// return an error only for environment-level faults (browser missing);
// everything expected lands in the outcome.
type Strategy interface {
	Name() string
	Apply(ctx context.Context, pool *SessionPool, job models.JobRecord, coverLetter, resumePath string) (ApplyOutcome, error)
	CheckStatus(ctx context.Context, pool *SessionPool, job models.JobRecord) (CheckOutcome, error)
}

// Registry resolves a job's URL to its Strategy.
type Registry struct {
	strategies []*webStrategy
	fallback   Strategy
}

// NewRegistry builds one web strategy per entry in the embedded
// selector tables, wiring in the matching credentials from config.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	sels, err := loadSelectors()
	if err != nil {
		return nil, err
	}

	creds := map[string]Credentials{
		"linkedin": {Email: cfg.LinkedInEmail, Password: cfg.LinkedInPassword},
		"indeed":   {Email: cfg.IndeedEmail, Password: cfg.IndeedPassword},
	}

	r := &Registry{fallback: unsupportedStrategy{}}
	for name, sel := range sels {
		r.strategies = append(r.strategies, &webStrategy{
			name:  name,
			sel:   sel,
			creds: creds[name],
		})
	}
	return r, nil
}

// ForURL selects the strategy whose canonical domain matches the job
// URL's host. Unmatched domains select the Unsupported strategy.
func (r *Registry) ForURL(jobURL string) Strategy {
	host := hostOf(jobURL)
	for _, s := range r.strategies {
		if matchDomain(host, s.sel.Domain) {
			return s
		}
	}
	return r.fallback
}

func hostOf(jobURL string) string {
	u, err := url.Parse(strings.TrimSpace(jobURL))
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// matchDomain accepts the domain itself and any subdomain of it.
func matchDomain(host, domain string) bool {
	if host == "" || domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}
