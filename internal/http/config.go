package http

import (
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/database"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Imports  ImportService
	Database *database.Database
	Logger   logrus.FieldLogger

	// Task queue (optional); without it confirm only runs synchronously
	TaskQueue          TaskQueue
	AuditRetentionDays int

	// Upload limits
	MaxUploadBytes int64

	// Thumbnail directory checked by /health
	ThumbnailsDir string

	// CSRF protection is enabled when a secret is set
	CSRFSecret    []byte
	SecureCookies bool

	// Application info
	Version string
}
