package services

import (
	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// RunStore persists import progress keyed by staging token.
type RunStore interface {
	ForToken(token string) RunTracker
	GetByToken(token string) (*entities.ImportRun, error)
	GetRecent(limit int) ([]entities.ImportRun, error)
}

// RunTracker is the progress record of a single import.
type RunTracker interface {
	tracker.ProgressReporter
	MarkPending() error
	IsRunning() (bool, error)
}

// AuditLogger records staging and import events.
type AuditLogger interface {
	LogStage(origin, token string, rows int, problems []string)
	LogImport(origin, token string, summary tracker.Summary, err error)
}
