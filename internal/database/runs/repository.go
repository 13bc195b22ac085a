// Package runs provides database operations for import run progress.
//
// A Repository bound to a staging token implements tracker.ProgressReporter.
//
// # Usage
//
//	repo := runs.NewRepository(db).ForToken(token)
//	t := tracker.New(tracker.ModeNone, nil)
//	t.SetProgressReporter(repo)
package runs

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// StaleAfter is how long a running import may go without progress before
// it is considered interrupted.
const StaleAfter = 10 * time.Minute

// Repository handles all import run database operations.
type Repository struct {
	db    *gorm.DB
	token string
}

// NewRepository creates a new runs repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ForToken returns a repository bound to the run of one staged import.
func (r *Repository) ForToken(token string) *Repository {
	return &Repository{db: r.db, token: token}
}

// GetByToken retrieves the run recorded for token.
func (r *Repository) GetByToken(token string) (*entities.ImportRun, error) {
	var run entities.ImportRun
	if err := r.db.Where("token = ?", token).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun retrieves the run of the bound token.
func (r *Repository) GetRun() (*entities.ImportRun, error) {
	return r.GetByToken(r.token)
}

// GetRecent returns the latest runs, newest first.
func (r *Repository) GetRecent(limit int) ([]entities.ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []entities.ImportRun
	err := r.db.Order("started_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// DeleteFinishedBefore removes completed and failed runs that finished
// before cutoff and returns their tokens.
func (r *Repository) DeleteFinishedBefore(cutoff time.Time) ([]string, error) {
	finished := []entities.ImportRunStatus{entities.ImportRunStatusCompleted, entities.ImportRunStatusFailed}

	var tokens []string
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.ImportRun{}).
			Where("status IN ? AND completed_at < ?", finished, cutoff).
			Pluck("token", &tokens).Error; err != nil {
			return err
		}
		if len(tokens) == 0 {
			return nil
		}
		return tx.Where("token IN ?", tokens).Delete(&entities.ImportRun{}).Error
	})
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// MarkPending records that the bound import was queued for background execution.
func (r *Repository) MarkPending() error {
	return r.reset(entities.ImportRunStatusPending, 0)
}

// StartRun creates or resets the run record.
// Implements tracker.ProgressReporter.
func (r *Repository) StartRun(totalItems int) error {
	return r.reset(entities.ImportRunStatusRunning, totalItems)
}

func (r *Repository) reset(status entities.ImportRunStatus, totalItems int) error {
	var run entities.ImportRun
	result := r.db.Where("token = ?", r.token).First(&run)

	now := time.Now()
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		run = entities.ImportRun{
			Token:      r.token,
			Status:     status,
			TotalItems: totalItems,
			StartedAt:  now,
			UpdatedAt:  now,
		}
		return r.db.Create(&run).Error
	} else if result.Error != nil {
		return result.Error
	}

	run.Status = status
	run.TotalItems = totalItems
	run.Processed = 0
	run.Succeeded = 0
	run.Failed = 0
	run.Created = 0
	run.Updated = 0
	run.Unchanged = 0
	run.CurrentItem = ""
	run.Error = ""
	run.StartedAt = now
	run.UpdatedAt = now
	run.CompletedAt = nil

	return r.db.Save(&run).Error
}

// UpdateProgress updates the counters of an ongoing run.
// Implements tracker.ProgressReporter.
func (r *Repository) UpdateProgress(processed int, summary tracker.Summary, currentItem string) error {
	return r.db.Model(&entities.ImportRun{}).
		Where("token = ?", r.token).
		Updates(map[string]any{
			"processed":    processed,
			"succeeded":    summary.Succeeded(),
			"failed":       summary.Failed,
			"created":      summary.Created,
			"updated":      summary.Updated,
			"unchanged":    summary.Unchanged,
			"current_item": currentItem,
			"updated_at":   time.Now(),
		}).Error
}

// CompleteRun marks a run as completed, or failed when errorMsg is set.
// Implements tracker.ProgressReporter.
func (r *Repository) CompleteRun(summary tracker.Summary, errorMsg string) error {
	now := time.Now()
	status := entities.ImportRunStatusCompleted
	if errorMsg != "" {
		status = entities.ImportRunStatusFailed
	}

	updates := map[string]any{
		"status":       status,
		"processed":    summary.Total,
		"succeeded":    summary.Succeeded(),
		"failed":       summary.Failed,
		"created":      summary.Created,
		"updated":      summary.Updated,
		"unchanged":    summary.Unchanged,
		"current_item": "",
		"updated_at":   now,
		"completed_at": now,
	}
	if errorMsg != "" {
		updates["error"] = errorMsg
	}
	return r.db.Model(&entities.ImportRun{}).
		Where("token = ?", r.token).
		Updates(updates).Error
}

// IsRunning checks whether the bound run is in progress. A run that has
// not been updated within StaleAfter is marked failed and reported idle.
func (r *Repository) IsRunning() (bool, error) {
	var run entities.ImportRun
	err := r.db.Where("token = ? AND status = ?", r.token, entities.ImportRunStatusRunning).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if run.UpdatedAt.Before(time.Now().Add(-StaleAfter)) {
		_ = r.CompleteRun(tracker.Summary{}, "import was interrupted")
		return false, nil
	}

	return true, nil
}
