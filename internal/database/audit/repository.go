// Package audit persists the audit trail of staged and executed imports.
package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	return r.db.Create(event).Error
}

// GetEvents retrieves paginated audit events, most recent first.
func (r *Repository) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := r.db.Model(&entities.AuditEvent{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// GetEventsByToken retrieves every event recorded for one staged import.
func (r *Repository) GetEventsByToken(token string) ([]entities.AuditEvent, error) {
	var events []entities.AuditEvent
	err := r.db.Where("token = ?", token).Order("created_at ASC").Find(&events).Error
	return events, err
}

// DeleteOldEvents removes audit events older than the specified time.
// Returns the number of deleted events.
func (r *Repository) DeleteOldEvents(olderThan time.Time) (int64, error) {
	result := r.db.Where("created_at < ?", olderThan).Delete(&entities.AuditEvent{})
	return result.RowsAffected, result.Error
}
