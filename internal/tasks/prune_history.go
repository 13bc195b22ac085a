package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"
)

// DefaultRetentionDays applies when a prune task carries no retention.
const DefaultRetentionDays = 30

// EventPruner deletes audit events and records each prune it takes part in.
type EventPruner interface {
	DeleteEventsBefore(cutoff time.Time) (int64, error)
	LogPrune(events int64, tokens []string, err error)
}

// RunPruner deletes finished import runs and returns their tokens.
type RunPruner interface {
	DeleteFinishedBefore(cutoff time.Time) ([]string, error)
}

// PruneHistoryTask drops import history older than RetentionDays: finished
// runs, then the audit events of the same period. Pending and running
// imports are never touched.
type PruneHistoryTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for history pruning.
func (t PruneHistoryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "prune_import_history",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration: 24 * time.Hour,
			Data:     &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// Cutoff is the instant before which history is removed.
func (t PruneHistoryTask) Cutoff(now time.Time) time.Time {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultRetentionDays
	}
	return now.AddDate(0, 0, -days)
}

// PruneHistoryProcessor creates a processor function for PruneHistoryTask.
func PruneHistoryProcessor(events EventPruner, runs RunPruner, logger logrus.FieldLogger) backlite.QueueProcessor[PruneHistoryTask] {
	return func(ctx context.Context, task PruneHistoryTask) error {
		if events == nil || runs == nil {
			return errors.New("import history store not configured")
		}
		cutoff := task.Cutoff(time.Now())

		tokens, err := runs.DeleteFinishedBefore(cutoff)
		if err != nil {
			events.LogPrune(0, nil, err)
			return fmt.Errorf("prune import runs: %w", err)
		}

		deleted, err := events.DeleteEventsBefore(cutoff)
		// written after the delete, so this pass keeps it
		events.LogPrune(deleted, tokens, err)
		if err != nil {
			return fmt.Errorf("prune audit events: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"runs":   len(tokens),
			"events": deleted,
			"cutoff": cutoff.Format(time.RFC3339),
		}).Info("Pruned import history")
		return nil
	}
}

// NewPruneHistoryQueue creates a backlite queue for history pruning.
func NewPruneHistoryQueue(events EventPruner, runs RunPruner, logger logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(PruneHistoryProcessor(events, runs, logger))
}
