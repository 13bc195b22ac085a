// Package interfaces documents the core abstractions used throughout the application.
//
// This package consolidates interface documentation to help code agents understand
// extension points and how to implement new functionality.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - CourseStore, ActivityStore, CompletionStore: course persistence (internal/reconcile/engine.go)
//   - categories.Store: category lookup and creation (internal/categories/resolver.go)
//   - thumbnails.Store: overview file records (internal/thumbnails/fetcher.go)
//
// ## Import Pipeline Interfaces
//
//   - RowProcessor: persists one valid record (internal/importers/session.go)
//   - CategoryResolver: resolves the default category of a session (internal/importers/session.go)
//   - Reporter: receives row outcomes (internal/importers/session.go)
//   - Formatter, ThumbnailFetcher: used by the engine (internal/reconcile)
//
// ## Progress Tracking Interfaces
//
//   - ProgressReporter: persisted run counters (internal/tracker/tracker.go)
//   - RunStore, RunTracker, AuditLogger: service sinks (internal/services/interfaces.go)
//
// ## Entry Point Interfaces
//
//   - http.ImportService, http.TaskQueue: HTTP API dependencies (internal/http)
//   - tasks.ImportExecutor: background execution (internal/tasks/execute_import.go)
//   - scheduler.Importer, scheduler.EventLogger: cron imports (internal/scheduler)
//
// # Adding a New Entry Point
//
// Every entry point goes through services.ImportService so staging, audit
// and progress tracking stay identical:
//
//	result, err := imports.Import(ctx, services.StageRequest{
//	    Content: content,
//	    Source:  "nightly.csv",
//	}, nil, nil, "my_origin", tracker.ModePlain, os.Stdout)
//
// Two-phase callers use Stage and then Execute with the returned token.
//
// # Adding a New Row Processor
//
// A RowProcessor receives validated records. Return an error only when the
// row could not be persisted; validation problems never reach it.
//
//	type DryRun struct{}
//
//	func (DryRun) Process(ctx context.Context, row int, record importers.ImportRecord) (tracker.Outcome, error) {
//	    return tracker.Outcome{Row: row, Success: true, Actions: []tracker.Action{tracker.ActionUnchanged}}, nil
//	}
//
//	var _ importers.RowProcessor = DryRun{}
package interfaces
