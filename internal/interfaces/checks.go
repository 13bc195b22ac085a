package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/courseimport/internal/audit"
	"github.com/mrlokans/courseimport/internal/categories"
	"github.com/mrlokans/courseimport/internal/database/activities"
	categoryrepo "github.com/mrlokans/courseimport/internal/database/categories"
	"github.com/mrlokans/courseimport/internal/database/completion"
	"github.com/mrlokans/courseimport/internal/database/courses"
	"github.com/mrlokans/courseimport/internal/database/runs"
	"github.com/mrlokans/courseimport/internal/database/tags"
	thumbnailrepo "github.com/mrlokans/courseimport/internal/database/thumbnails"
	"github.com/mrlokans/courseimport/internal/http"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/reconcile"
	"github.com/mrlokans/courseimport/internal/richtext"
	"github.com/mrlokans/courseimport/internal/scheduler"
	"github.com/mrlokans/courseimport/internal/services"
	"github.com/mrlokans/courseimport/internal/tasks"
	"github.com/mrlokans/courseimport/internal/thumbnails"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ reconcile.CourseStore = (*courses.Repository)(nil)
var _ reconcile.ActivityStore = (*activities.Repository)(nil)
var _ reconcile.CompletionStore = (*completion.Repository)(nil)
var _ categories.Store = (*categoryrepo.Repository)(nil)
var _ thumbnails.Store = (*thumbnailrepo.Repository)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ importers.RowProcessor = (*reconcile.Engine)(nil)
var _ importers.CategoryResolver = (*categories.Resolver)(nil)
var _ importers.Reporter = (*tracker.Tracker)(nil)
var _ reconcile.CategoryResolver = (*categories.Resolver)(nil)
var _ reconcile.Formatter = (*richtext.Formatter)(nil)
var _ reconcile.ThumbnailFetcher = (*thumbnails.Fetcher)(nil)

// =============================================================================
// Progress Tracking & Audit
// =============================================================================

var _ tracker.ProgressReporter = (*runs.Repository)(nil)
var _ services.RunTracker = (*runs.Repository)(nil)
var _ services.AuditLogger = (*audit.Service)(nil)
var _ scheduler.EventLogger = (*audit.Service)(nil)

// =============================================================================
// Entry Points
// =============================================================================

var _ http.ImportService = (*services.ImportService)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ tasks.ImportExecutor = (*services.ImportService)(nil)
var _ scheduler.Importer = (*services.ImportService)(nil)
var _ tasks.EventPruner = (*audit.Service)(nil)
var _ tasks.RunPruner = (*runs.Repository)(nil)
var _ tasks.OrphanTagsCleaner = (*tags.Repository)(nil)
