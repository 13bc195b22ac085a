// Package scheduler runs course imports from a configured file on a cron
// schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/services"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// ErrAlreadyImporting is returned by RunOnce while a scheduled import is in progress.
var ErrAlreadyImporting = errors.New("scheduled import already running")

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Importer stages and executes an import in one step.
type Importer interface {
	Import(ctx context.Context, req services.StageRequest, category *string, downloadThumbnails *bool, origin string, mode tracker.OutputMode, out io.Writer) (*services.ExecuteResult, error)
}

// EventLogger records scheduler events.
type EventLogger interface {
	Log(event *entities.AuditEvent) error
}

// Settings describe what a scheduled run imports.
type Settings struct {
	Enabled   bool
	Schedule  string
	Source    string
	Encoding  string
	Delimiter importers.Delimiter
	Category  string
	Timeout   time.Duration
}

// ValidateSchedule checks a five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// ImportScheduler manages periodic imports of a CSV file.
type ImportScheduler struct {
	importer Importer
	events   EventLogger
	settings Settings
	logger   logrus.FieldLogger

	cron        *cron.Cron
	entryID     cron.EntryID
	mu          sync.RWMutex
	isRunning   bool
	isImporting bool
	lastResult  *services.ExecuteResult
	cancelFunc  context.CancelFunc
}

// NewImportScheduler creates a new scheduler instance.
func NewImportScheduler(importer Importer, events EventLogger, settings Settings, logger logrus.FieldLogger) *ImportScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 30 * time.Minute
	}
	return &ImportScheduler{
		importer: importer,
		events:   events,
		settings: settings,
		logger:   logger.WithField("component", "scheduler"),
		cron:     cron.New(cron.WithParser(cronParser)),
	}
}

// Start begins the scheduler if scheduled imports are enabled.
func (s *ImportScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.settings.Enabled {
		s.logger.Info("Scheduled import disabled")
		return nil
	}

	if s.settings.Source == "" {
		s.logger.Warn("Scheduled import source not configured, skipping")
		return nil
	}

	if err := ValidateSchedule(s.settings.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.settings.Schedule, err)
	}

	entryID, err := s.cron.AddFunc(s.settings.Schedule, func() {
		if err := s.RunOnce(context.Background()); err != nil && !errors.Is(err, ErrAlreadyImporting) {
			s.logger.WithError(err).Error("Scheduled import failed")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule import job: %w", err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	s.logger.WithFields(logrus.Fields{
		"schedule": s.settings.Schedule,
		"source":   s.settings.Source,
		"next_run": s.nextRunLocked(),
	}).Info("Scheduled import started")

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running import.
func (s *ImportScheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.cron.Remove(s.entryID)
	cancel := s.cancelFunc
	s.cancelFunc = nil
	s.mu.Unlock()

	// the running job takes the lock when it finishes
	<-s.cron.Stop().Done()
	if cancel != nil {
		cancel()
	}

	s.logger.Info("Scheduled import stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *ImportScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// IsImporting returns whether an import is currently in progress.
func (s *ImportScheduler) IsImporting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isImporting
}

// LastResult returns the report of the latest successful run.
func (s *ImportScheduler) LastResult() *services.ExecuteResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastResult
}

// GetNextRunTime returns when the next import will occur.
func (s *ImportScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	return s.nextRunLocked()
}

func (s *ImportScheduler) nextRunLocked() *time.Time {
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// RunOnce imports the configured source now. Ticks that arrive while an
// import is still running are skipped.
func (s *ImportScheduler) RunOnce(ctx context.Context) error {
	s.mu.Lock()
	if s.isImporting {
		s.mu.Unlock()
		s.logger.Info("Scheduled import skipped, previous run still in progress")
		return ErrAlreadyImporting
	}
	s.isImporting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isImporting = false
		s.mu.Unlock()
	}()

	startTime := time.Now()
	source := s.settings.Source

	content, err := os.ReadFile(source)
	if err != nil {
		err = fmt.Errorf("read %s: %w", source, err)
		s.logEvent("Failed to read import source", err)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.settings.Timeout)
	defer cancel()

	var category *string
	if s.settings.Category != "" {
		c := s.settings.Category
		category = &c
	}

	result, err := s.importer.Import(ctx, services.StageRequest{
		Content:   content,
		Encoding:  s.settings.Encoding,
		Delimiter: s.settings.Delimiter,
		Source:    filepath.Base(source),
	}, category, nil, services.OriginScheduler, tracker.ModeNone, nil)
	if err != nil {
		s.logEvent("Scheduled import failed", err)
		return err
	}

	s.mu.Lock()
	s.lastResult = result
	s.mu.Unlock()

	message := fmt.Sprintf("Imported %s: %s in %v", filepath.Base(source), result.Summary.String(),
		time.Since(startTime).Round(time.Millisecond))
	s.logger.Info(message)
	s.logEvent(message, nil)
	return nil
}

func (s *ImportScheduler) logEvent(description string, err error) {
	if s.events == nil {
		return
	}
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventSchedule,
		Action:      "scheduled_import",
		Description: description,
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = err.Error()
	}
	if logErr := s.events.Log(event); logErr != nil {
		s.logger.WithError(logErr).Warn("Failed to log scheduler event")
	}
}
