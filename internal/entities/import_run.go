package entities

import (
	"time"
)

type ImportRunStatus string

const (
	ImportRunStatusPending   ImportRunStatus = "pending"
	ImportRunStatusRunning   ImportRunStatus = "running"
	ImportRunStatusCompleted ImportRunStatus = "completed"
	ImportRunStatusFailed    ImportRunStatus = "failed"
)

type ImportRun struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Token       string          `gorm:"size:64;uniqueIndex" json:"token"`
	Status      ImportRunStatus `gorm:"size:20" json:"status"`
	TotalItems  int             `json:"total_items"`
	Processed   int             `json:"processed"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	Created     int             `json:"created"`
	Updated     int             `json:"updated"`
	Unchanged   int             `json:"unchanged"`
	CurrentItem string          `gorm:"size:512" json:"current_item,omitempty"`
	Error       string          `gorm:"type:text" json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}
