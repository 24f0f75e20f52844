package scheduler

import (
	"testing"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/robfig/cron/v3"
)

func TestCronSpecs(t *testing.T) {
	s := New(&config.Config{
		ApplyHour:               9,
		ApplyMinute:             30,
		StatusCheckIntervalDays: 2,
		StatusCheckHour:         10,
	}, nil)

	if got := s.ApplySpec(); got != "30 9 * * 1-5" {
		t.Errorf("ApplySpec = %q, want weekday trigger at 9:30", got)
	}
	if got := s.CheckSpec(); got != "0 10 */2 * *" {
		t.Errorf("CheckSpec = %q, want every-2-days trigger at 10:00", got)
	}
}

func TestCronSpecsParse(t *testing.T) {
	s := New(&config.Config{
		ApplyHour:               23,
		ApplyMinute:             59,
		StatusCheckIntervalDays: 7,
		StatusCheckHour:         0,
	}, nil)

	for _, spec := range []string{s.ApplySpec(), s.CheckSpec()} {
		if _, err := cron.ParseStandard(spec); err != nil {
			t.Errorf("spec %q does not parse: %v", spec, err)
		}
	}
}
