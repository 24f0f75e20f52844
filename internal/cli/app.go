package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/audit"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/auth"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/database"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/letter"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/notify"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/orchestrator"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/platform"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/sheets"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// app holds the wired services every command draws from.
type app struct {
	cfg    *config.Config
	audit  *audit.Store
	ledger *sheets.Ledger
	mailer *notify.Mailer
	orch   *orchestrator.Orchestrator
}

// initApp loads config, connects the audit store, authenticates with
// Google and verifies the sheet schema. Any failure here is a
// configuration error: surfaced before a single workflow runs.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dryRun {
		cfg.DryRun = true
	}
	if cfg.DryRun {
		log.Println("DRY RUN mode active - no applications will be submitted.")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	auditStore := audit.New(db)

	httpClient, err := auth.Client(ctx, cfg.CredentialsPath, cfg.TokenPath)
	if err != nil {
		return nil, err
	}

	sheetsSvc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	ledger := sheets.New(sheetsSvc, cfg.GoogleSheetID)
	if err := ledger.VerifySchema(ctx); err != nil {
		return nil, err
	}

	// Gmail is best-effort: a broken notifier must never stop the
	// workflows, so the mailer degrades to log-only.
	var gmailSvc *gmail.Service
	if gmailSvc, err = gmail.NewService(ctx, option.WithHTTPClient(httpClient)); err != nil {
		log.Printf("Failed to create Gmail service, notifications disabled: %v", err)
		gmailSvc = nil
	}
	mailer := notify.New(gmailSvc, cfg.UserEmail)

	registry, err := platform.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	letters, err := letter.NewRenderer(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:    cfg,
		audit:  auditStore,
		ledger: ledger,
		mailer: mailer,
		orch:   orchestrator.New(cfg, ledger, auditStore, mailer, letters, registry),
	}, nil
}
