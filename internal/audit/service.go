// Package audit records what each import did so operators can trace a run
// back to the file that produced it.
package audit

import (
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/database/audit"
	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo   *audit.Repository
	logger logrus.FieldLogger
	async  bool
}

// NewService creates a new audit service. Events are written in the background.
func NewService(repo *audit.Repository, logger logrus.FieldLogger) *Service {
	return &Service{repo: repo, logger: logger, async: true}
}

// SetAsync controls whether events are written in the background.
func (s *Service) SetAsync(async bool) {
	s.async = async
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

func (s *Service) record(event *entities.AuditEvent) {
	if !s.async {
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.WithError(err).Warn("failed to log audit event")
		}
		return
	}
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			s.logger.WithError(err).Warn("failed to log audit event")
		}
	}()
}

// LogStage records a file being parsed and staged under token.
func (s *Service) LogStage(origin, token string, rows int, problems []string) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventStage,
		Action:      origin + "_stage",
		Description: "Staged import file",
		Token:       token,
		Status:      entities.AuditStatusSuccess,
	}
	if mdBytes, e := json.Marshal(map[string]any{"rows": rows}); e == nil {
		event.Metadata = string(mdBytes)
	}
	if len(problems) > 0 {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(problems[0], 500)
	}

	s.record(event)
}

// LogImport records the outcome of executing a staged import.
func (s *Service) LogImport(origin, token string, summary tracker.Summary, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      origin + "_import",
		Description: summary.String(),
		Token:       token,
		Status:      entities.AuditStatusSuccess,
	}

	if mdBytes, e := json.Marshal(summary); e == nil {
		event.Metadata = string(mdBytes)
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.record(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

// DeleteEventsBefore removes events recorded before cutoff.
func (s *Service) DeleteEventsBefore(cutoff time.Time) (int64, error) {
	return s.repo.DeleteOldEvents(cutoff)
}

// LogPrune records a history prune. Tokens of the removed runs are kept in
// the metadata.
func (s *Service) LogPrune(events int64, tokens []string, err error) {
	if tokens == nil {
		tokens = []string{}
	}
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventPrune,
		Action:      "prune_history",
		Description: fmt.Sprintf("Removed %d import runs and %d audit events", len(tokens), events),
		Status:      entities.AuditStatusSuccess,
	}
	if mdBytes, e := json.Marshal(map[string]any{"events": events, "tokens": tokens}); e == nil {
		event.Metadata = string(mdBytes)
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.record(event)
}

// truncate shortens s to at most maxLen characters, never splitting one.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}
