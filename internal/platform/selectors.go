package platform

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed platforms.yaml
var rawPlatforms []byte

// Selectors describes how to drive one job board: where to log in and
// which elements identify the apply/submit/next buttons. Adding a new
// platform is a matter of adding an entry to platforms.yaml rather
// than duplicating the apply flow.
type Selectors struct {
	Domain   string `yaml:"domain"`
	LoginURL string `yaml:"login_url"`

	UsernameField string `yaml:"username_field"`
	PasswordField string `yaml:"password_field"`
	LoginSubmit   string `yaml:"login_submit"`
	// Two-step login splits email and password across two screens.
	TwoStepLogin   bool   `yaml:"two_step_login"`
	ContinueButton string `yaml:"continue_button"`

	CheckpointPatterns []string `yaml:"checkpoint_patterns"`
	CheckpointDoneURL  string   `yaml:"checkpoint_done_url"`

	ApplyButton string `yaml:"apply_button"`
	FormSubmit  string `yaml:"form_submit"`
	FormNext    string `yaml:"form_next"`

	AppliedJobsURL string `yaml:"applied_jobs_url"`
	AppliedNote    string `yaml:"applied_note"`

	Headless bool `yaml:"headless"`
}

type selectorFile struct {
	Platforms map[string]Selectors `yaml:"platforms"`
}

func loadSelectors() (map[string]Selectors, error) {
	var f selectorFile
	if err := yaml.Unmarshal(rawPlatforms, &f); err != nil {
		return nil, fmt.Errorf("parsing platforms.yaml: %w", err)
	}
	for name, sel := range f.Platforms {
		if sel.Domain == "" || sel.LoginURL == "" {
			return nil, fmt.Errorf("platforms.yaml: %s is missing domain or login_url", name)
		}
	}
	return f.Platforms, nil
}
