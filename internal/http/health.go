package http

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/courseimport/internal/database"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

type HealthController struct {
	db         *database.Database
	version    string
	tasks      bool
	thumbnails string
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
	}
}

// WithTaskQueue marks the background import queue as available.
func (h *HealthController) WithTaskQueue(enabled bool) *HealthController {
	h.tasks = enabled
	return h
}

// WithThumbnailDir adds a writability check of the thumbnail directory.
func (h *HealthController) WithThumbnailDir(dir string) *HealthController {
	h.thumbnails = dir
	return h
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		sqlDB, err := h.db.SQLDB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.tasks {
		checks["task_queue"] = "ok"
	} else {
		checks["task_queue"] = "disabled"
	}

	if h.thumbnails != "" {
		if err := checkDirWritable(h.thumbnails); err != nil {
			checks["thumbnails"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["thumbnails"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}

func checkDirWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
