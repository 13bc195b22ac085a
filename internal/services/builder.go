package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/audit"
	"github.com/mrlokans/courseimport/internal/categories"
	"github.com/mrlokans/courseimport/internal/config"
	"github.com/mrlokans/courseimport/internal/database"
	"github.com/mrlokans/courseimport/internal/database/activities"
	auditrepo "github.com/mrlokans/courseimport/internal/database/audit"
	categoryrepo "github.com/mrlokans/courseimport/internal/database/categories"
	"github.com/mrlokans/courseimport/internal/database/completion"
	"github.com/mrlokans/courseimport/internal/database/courses"
	"github.com/mrlokans/courseimport/internal/database/runs"
	thumbnailrepo "github.com/mrlokans/courseimport/internal/database/thumbnails"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/reconcile"
	"github.com/mrlokans/courseimport/internal/richtext"
	"github.com/mrlokans/courseimport/internal/thumbnails"
)

// Components are the services built on top of one database.
type Components struct {
	Imports *ImportService
	Audit   *audit.Service
	Staging *importers.Staging
	Runs    *runs.Repository
}

// Build wires the import pipeline from configuration. Staged imports are
// kept in the application database.
func Build(db *database.Database, cfg *config.Config, logger logrus.FieldLogger) (*Components, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	sqlDB, err := db.SQLDB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	store, err := importers.NewSQLiteStore(sqlDB)
	if err != nil {
		return nil, fmt.Errorf("create staging store: %w", err)
	}
	staging := importers.NewStaging(store, cfg.Import.StagingLifetime)

	fetcher, err := thumbnails.NewFetcher(thumbnails.Config{
		Dir:                cfg.Thumbnails.Dir,
		AllowedExtensions:  cfg.Thumbnails.AllowedExtensions,
		DialTimeout:        cfg.Thumbnails.DialTimeout,
		Timeout:            cfg.Thumbnails.Timeout,
		MaxSize:            cfg.Thumbnails.MaxSize,
		InsecureSkipVerify: cfg.Thumbnails.InsecureSkipVerify,
	}, thumbnailrepo.NewRepository(db.DB), logger.WithField("component", "thumbnails"))
	if err != nil {
		return nil, err
	}

	resolver := categories.NewResolver(categoryrepo.NewRepository(db.DB))

	engine := reconcile.NewEngine(reconcile.Config{
		Courses:    courses.NewRepository(db.DB),
		Activities: activities.NewRepository(db.DB),
		Completion: completion.NewRepository(db.DB),
		Categories: resolver,
		Formatter:  richtext.NewFormatter(),
		Thumbnails: fetcher,
		Defaults: reconcile.ActivityDefaults{
			PrintHeading:      cfg.Activity.PrintHeading,
			PrintIntro:        cfg.Activity.PrintIntro,
			PrintLastModified: cfg.Activity.PrintLastModified,
		},
		Logger: logger.WithField("component", "reconcile"),
	})

	runRepo := runs.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB), logger.WithField("component", "audit"))

	imports := NewImportService(resolver, staging, engine, NewRunStore(runRepo), auditService, ImportOptions{
		DefaultDelimiter:   importers.Delimiter(cfg.Import.DefaultDelimiter),
		DefaultEncoding:    cfg.Import.DefaultEncoding,
		DefaultCategory:    cfg.Import.DefaultCategory,
		DownloadThumbnails: cfg.Import.DownloadThumbnails,
		HaltOnError:        cfg.Import.HaltOnError,
		PreviewRows:        cfg.Import.PreviewRows,
	}, logger.WithField("component", "import"))

	return &Components{
		Imports: imports,
		Audit:   auditService,
		Staging: staging,
		Runs:    runRepo,
	}, nil
}
