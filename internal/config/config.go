package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// ErrMissingEnv marks a required setting that was absent at startup.
var ErrMissingEnv = errors.New("missing required environment variable")

// Config carries every runtime setting. Loaded once at startup; a
// malformed or incomplete environment is fatal before any pass runs.
type Config struct {
	// Google
	GoogleSheetID   string
	UserEmail       string
	CredentialsPath string
	TokenPath       string

	// Resume / cover letter
	ResumeLocalPath     string
	CoverLetterTemplate string
	ApplicantName       string
	ApplicantSkills     string

	// Platform credentials
	LinkedInEmail    string
	LinkedInPassword string
	IndeedEmail      string
	IndeedPassword   string

	// Scheduler
	ApplyHour               int
	ApplyMinute             int
	StatusCheckIntervalDays int
	StatusCheckHour         int

	// Behaviour
	DryRun                bool
	MaxApplicationsPerRun int
	MaxStatusChecksPerRun int

	// Audit store: SQLite file by default, Postgres when a DSN is set.
	AuditDBPath string
	AuditDBDSN  string

	// Optional extras
	GeminiAPIKey string
	APIAddr      string
}

// Load reads .env (if present) and the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := &Config{
		CredentialsPath:     envStr("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
		TokenPath:           envStr("GOOGLE_TOKEN_PATH", "token.json"),
		ResumeLocalPath:     os.Getenv("RESUME_LOCAL_PATH"),
		CoverLetterTemplate: os.Getenv("COVER_LETTER_TEMPLATE"),
		ApplicantName:       envStr("APPLICANT_NAME", "Your Name"),
		ApplicantSkills:     envStr("APPLICANT_SKILLS", "software development"),
		LinkedInEmail:       os.Getenv("LINKEDIN_EMAIL"),
		LinkedInPassword:    os.Getenv("LINKEDIN_PASSWORD"),
		IndeedEmail:         os.Getenv("INDEED_EMAIL"),
		IndeedPassword:      os.Getenv("INDEED_PASSWORD"),
		DryRun:              envBool("DRY_RUN"),
		AuditDBPath:         envStr("AUDIT_DB_PATH", "job_history.db"),
		AuditDBDSN:          os.Getenv("AUDIT_DB_DSN"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		APIAddr:             envStr("API_ADDR", ":8080"),
	}

	var err error
	if cfg.GoogleSheetID, err = require("GOOGLE_SHEET_ID"); err != nil {
		return nil, err
	}
	if cfg.UserEmail, err = require("USER_EMAIL"); err != nil {
		return nil, err
	}

	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"APPLY_HOUR", 9, &cfg.ApplyHour},
		{"APPLY_MINUTE", 0, &cfg.ApplyMinute},
		{"STATUS_CHECK_INTERVAL_DAYS", 2, &cfg.StatusCheckIntervalDays},
		{"STATUS_CHECK_HOUR", 10, &cfg.StatusCheckHour},
		{"MAX_APPLICATIONS_PER_RUN", 5, &cfg.MaxApplicationsPerRun},
		{"MAX_STATUS_CHECKS_PER_RUN", 10, &cfg.MaxStatusChecksPerRun},
	}
	for _, e := range ints {
		if *e.dst, err = envInt(e.key, e.def); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func require(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%w: %s (copy .env.example to .env and fill in your values)", ErrMissingEnv, key)
	}
	return v, nil
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q", key, v)
	}
	return n, nil
}

func envBool(key string) bool {
	v := os.Getenv(key)
	return v == "true" || v == "1" || v == "yes"
}
