package models

import (
	"time"

	"github.com/justsurfingit/Agentic-Job-Applier/internal/status"
)

// JobRecord is one row of the Jobs sheet. The sheet is the source of
// truth; this struct is only an in-memory view for one workflow pass.
type JobRecord struct {
	// RowIndex is the 1-based sheet row (header row is 1), used to
	// address batch updates back to the right row.
	RowIndex int `json:"-"`

	JobID         string        `json:"job_id"`
	Company       string        `json:"company"`
	Position      string        `json:"position"`
	Status        status.Status `json:"status"`
	AppliedDate   string        `json:"applied_date"`
	LastChecked   string        `json:"last_checked"`
	ApplicationID string        `json:"application_id"`
	Notes         string        `json:"notes"`
	JobURL        string        `json:"job_url"`
	Priority      string        `json:"priority"`
}

// ApplicationAttempt is the audit record written after every apply
// attempt, success or failure. Append-only.
type ApplicationAttempt struct {
	ID uint `gorm:"primaryKey" json:"id"`

	JobID         string    `gorm:"index;not null" json:"job_id"`
	Company       string    `json:"company"`
	Position      string    `json:"position"`
	Platform      string    `json:"platform"`
	ResultStatus  string    `gorm:"not null" json:"result_status"`
	ApplicationID string    `json:"application_id"`
	Notes         string    `gorm:"type:text" json:"notes"`
	AppliedAt     time.Time `json:"applied_at"`
	RecordedAt    time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}

// StatusChangeEvent is the audit record written when the state machine
// accepts a transition to a different status. Append-only.
type StatusChangeEvent struct {
	ID uint `gorm:"primaryKey" json:"id"`

	JobID      string    `gorm:"index;not null" json:"job_id"`
	Company    string    `json:"company"`
	Position   string    `json:"position"`
	OldStatus  string    `gorm:"not null" json:"old_status"`
	NewStatus  string    `gorm:"not null" json:"new_status"`
	ChangedAt  time.Time `json:"changed_at"`
	RecordedAt time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}
