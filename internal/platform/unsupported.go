package platform

import (
	"context"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
)

// unsupportedStrategy handles job URLs no automation covers. It never
// touches the network or opens a browser session.
type unsupportedStrategy struct{}

func (unsupportedStrategy) Name() string { return Unsupported }

func (unsupportedStrategy) Apply(_ context.Context, _ *SessionPool, _ models.JobRecord, _, _ string) (ApplyOutcome, error) {
	return ApplyOutcome{Notes: "Unsupported platform - apply manually via Job_URL"}, nil
}

func (unsupportedStrategy) CheckStatus(_ context.Context, _ *SessionPool, _ models.JobRecord) (CheckOutcome, error) {
	return CheckOutcome{Notes: "No automated status check available for this platform"}, nil
}
