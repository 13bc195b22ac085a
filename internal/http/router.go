package http

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/logging"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	router := gin.New()
	router.Use(logging.GinLogger(logger))
	router.Use(gin.Recovery())
	router.Use(SecurityHeadersMiddleware())

	health := NewHealthController(cfg.Database, cfg.Version).
		WithTaskQueue(cfg.TaskQueue != nil).
		WithThumbnailDir(cfg.ThumbnailsDir)
	router.GET("/health", health.Status)

	api := router.Group("/api")
	if len(cfg.CSRFSecret) > 0 {
		api.Use(CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
		api.GET("/csrf", CSRFToken)
	}

	imports := NewImportsController(cfg.Imports, cfg.TaskQueue, cfg.MaxUploadBytes, logger)
	api.POST("/imports", imports.Upload)
	api.POST("/imports/:token/confirm", imports.Confirm)
	api.GET("/imports/runs", imports.ListRuns)
	api.GET("/imports/runs/:token", imports.GetRun)

	if cfg.TaskQueue != nil {
		tasksController := NewTasksController(cfg.TaskQueue, cfg.AuditRetentionDays)
		api.GET("/tasks/types", tasksController.ListTaskTypes)
		api.GET("/tasks/:id", tasksController.GetTaskStatus)
		api.POST("/tasks/:type/run", tasksController.RunTask)
	}

	return router
}
