package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/services"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// ImportExecutor runs a staged import.
type ImportExecutor interface {
	Execute(ctx context.Context, req services.ExecuteRequest) (*services.ExecuteResult, error)
}

// ExecuteImportTask runs a confirmed import in the background.
type ExecuteImportTask struct {
	Token              string         `json:"token"`
	Category           *string        `json:"category,omitempty"`
	DownloadThumbnails *bool          `json:"download_thumbnails,omitempty"`
	Mapping            map[string]int `json:"mapping,omitempty"`
}

// Config returns the queue configuration for import tasks. An import is
// not retried: its staged rows are consumed by the first attempt.
func (t ExecuteImportTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "execute_import",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ExecuteImportProcessor creates a processor function for ExecuteImportTask.
func ExecuteImportProcessor(executor ImportExecutor, logger logrus.FieldLogger) backlite.QueueProcessor[ExecuteImportTask] {
	return func(ctx context.Context, task ExecuteImportTask) error {
		if executor == nil {
			return fmt.Errorf("import executor not configured")
		}

		mapping, err := importers.NormalizeMapping(task.Mapping)
		if err != nil {
			return fmt.Errorf("execute import %s: %w", task.Token, err)
		}

		result, err := executor.Execute(ctx, services.ExecuteRequest{
			Token:              task.Token,
			Category:           task.Category,
			DownloadThumbnails: task.DownloadThumbnails,
			Mapping:            mapping,
			Mode:               tracker.ModeNone,
			Origin:             services.OriginTask,
		})
		if err != nil {
			return fmt.Errorf("execute import %s: %w", task.Token, err)
		}

		logger.WithFields(logrus.Fields{
			"token":  task.Token,
			"result": result.Summary.String(),
		}).Info("Background import finished")
		return nil
	}
}

// NewExecuteImportQueue creates a backlite queue for import tasks.
func NewExecuteImportQueue(executor ImportExecutor, logger logrus.FieldLogger) backlite.Queue {
	return backlite.NewQueue(ExecuteImportProcessor(executor, logger))
}
