package platform

import (
	"strings"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

// statusRules maps page-text keywords to statuses, evaluated in fixed
// priority order: an offer beats an interview invite beats a rejection
// beats a viewed/under-review marker when a card mentions several.
var statusRules = []struct {
	keywords []string
	target   status.Status
}{
	{[]string{"offer"}, status.OfferReceived},
	{[]string{"interview", "assessment"}, status.InterviewScheduled},
	{[]string{"rejected"}, status.Rejected},
	{[]string{"under review", "viewed"}, status.UnderReview},
}

// DetectStatus scans card text for status keywords. ok is false when
// nothing matched, meaning the current status should be kept.
func DetectStatus(text string) (status.Status, bool) {
	lower := strings.ToLower(text)
	for _, rule := range statusRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.target, true
			}
		}
	}
	return "", false
}
