package entities

import "time"

type AuditEventType string

const (
	AuditEventStage    AuditEventType = "stage"
	AuditEventImport   AuditEventType = "import"
	AuditEventSchedule AuditEventType = "schedule"
	AuditEventPrune    AuditEventType = "prune"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "cli_import", "http_confirm"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	Token       string         `gorm:"index;size:64" json:"token,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON counters
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
