package database

import (
	"fmt"
	"log"

	"github.com/glebarez/sqlite"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/config"
	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the audit database and runs migrations. SQLite is the
// default so the agent works with zero infrastructure; set AUDIT_DB_DSN
// to use Postgres instead.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.AuditDBDSN != "" {
		dialector = postgres.Open(cfg.AuditDBDSN)
	} else {
		dialector = sqlite.Open(cfg.AuditDBPath)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	log.Println("Audit database connection established")

	if err := db.AutoMigrate(&models.ApplicationAttempt{}, &models.StatusChangeEvent{}); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}
