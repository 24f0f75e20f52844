package audit

import (
	"log"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/models"
	"gorm.io/gorm"
)

// Store is the append-only local history of everything the agent did.
// It never enforces idempotency: the orchestrator calls each method
// exactly once per logical event, and a retried pass after a failed
// ledger write intentionally produces a duplicate row.
type Store struct {
	DB *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{DB: db}
}

// LogApplication records one apply attempt, success or failure.
func (s *Store) LogApplication(a *models.ApplicationAttempt) error {
	if err := s.DB.Create(a).Error; err != nil {
		return err
	}
	log.Printf("Logged application for %s @ %s", a.Position, a.Company)
	return nil
}

// LogStatusChange records one accepted status transition.
func (s *Store) LogStatusChange(e *models.StatusChangeEvent) error {
	if err := s.DB.Create(e).Error; err != nil {
		return err
	}
	log.Printf("Status change logged for %s @ %s: %s -> %s", e.Position, e.Company, e.OldStatus, e.NewStatus)
	return nil
}

// RecentApplications returns attempts ordered most recent first.
func (s *Store) RecentApplications(limit int) ([]models.ApplicationAttempt, error) {
	var out []models.ApplicationAttempt
	err := s.DB.Order("applied_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

// RecentStatusChanges returns transitions ordered most recent first.
func (s *Store) RecentStatusChanges(limit int) ([]models.StatusChangeEvent, error) {
	var out []models.StatusChangeEvent
	err := s.DB.Order("changed_at DESC").Limit(limit).Find(&out).Error
	return out, err
}
