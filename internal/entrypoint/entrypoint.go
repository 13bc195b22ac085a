package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/config"
	"github.com/mrlokans/courseimport/internal/database"
	"github.com/mrlokans/courseimport/internal/database/tags"
	http_controllers "github.com/mrlokans/courseimport/internal/http"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/scheduler"
	"github.com/mrlokans/courseimport/internal/services"
	"github.com/mrlokans/courseimport/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT or SIGTERM.
func Serve(router *gin.Engine, cfg *config.Config, logger logrus.FieldLogger, onShutdown ShutdownFunc) {
	if err := os.MkdirAll(cfg.Thumbnails.Dir, 0o755); err != nil {
		logger.WithError(err).Fatalf("Thumbnail directory %s is not usable", cfg.Thumbnails.Dir)
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	// kill -9 cannot be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server Shutdown")
	}

	logger.Info("Server exiting")
}

// Run wires every component and serves the HTTP API.
func Run(cfg *config.Config, version string, logger *logrus.Logger) {
	logger.Infof("Starting course importer v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.WithError(err).Error("Error closing database")
		}
	}()

	components, err := services.Build(db, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize import services")
	}

	if cfg.Thumbnails.InsecureSkipVerify {
		logger.Warn("Thumbnail downloads skip TLS certificate verification")
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to initialize task queue")
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				logger.WithError(err).Error("Error closing task client")
			}
		}()

		taskClient.Register(
			tasks.NewExecuteImportQueue(components.Imports, logger),
			tasks.NewPruneHistoryQueue(components.Audit, components.Runs, logger),
			tasks.NewCleanupOrphanTagsQueue(tags.NewRepository(db.DB), logger),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		if _, err := taskClient.Enqueue(taskCtx, tasks.PruneHistoryTask{RetentionDays: cfg.Audit.RetentionDays}); err != nil {
			logger.WithError(err).Warn("Failed to enqueue history prune")
		}
	} else {
		logger.Info("Task queue disabled, confirmed imports run synchronously")
	}

	importScheduler := scheduler.NewImportScheduler(components.Imports, components.Audit, scheduler.Settings{
		Enabled:   cfg.ScheduledImport.Enabled,
		Schedule:  cfg.ScheduledImport.Schedule,
		Source:    cfg.ScheduledImport.Source,
		Encoding:  cfg.Import.DefaultEncoding,
		Delimiter: importers.Delimiter(cfg.Import.DefaultDelimiter),
		Category:  cfg.Import.DefaultCategory,
		Timeout:   cfg.Tasks.TaskTimeout,
	}, logger)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	if err := importScheduler.Start(schedulerCtx); err != nil {
		logger.WithError(err).Error("Failed to start scheduled import")
	}

	csrfSecret, generated, err := http_controllers.CSRFSecret(cfg.Security.CSRFSecret)
	if err != nil {
		logger.WithError(err).Fatal("Invalid CSRF secret")
	}
	if generated {
		logger.Info("Generated CSRF secret (set CSRF_SECRET to persist)")
	}

	routerCfg := http_controllers.RouterConfig{
		Imports:            components.Imports,
		Database:           db,
		Logger:             logger,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		MaxUploadBytes:     cfg.HTTP.MaxUploadBytes,
		ThumbnailsDir:      cfg.Thumbnails.Dir,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Security.SecureCookies,
		Version:            version,
	}
	if taskClient != nil {
		routerCfg.TaskQueue = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		schedulerCancel()
		importScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, logger, onShutdown)
}
