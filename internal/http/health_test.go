package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/courseimport/internal/database"
)

func setupHealthTestDB(t *testing.T) *database.Database {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "health.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getHealth(t *testing.T, controller *HealthController) (int, HealthResponse) {
	t.Helper()
	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return w.Code, response
}

func TestHealthController_Status(t *testing.T) {
	t.Run("returns healthy when database is connected", func(t *testing.T) {
		db := setupHealthTestDB(t)

		code, response := getHealth(t, NewHealthController(db, "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", response.Status)
		assert.Equal(t, "1.0.0", response.Version)
		assert.Equal(t, "ok", response.Checks["database"])
		assert.Equal(t, "disabled", response.Checks["task_queue"])
		assert.Contains(t, response.Time, "T")
	})

	t.Run("returns healthy when database is nil", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		code, response := getHealth(t, NewHealthController(nil, "1.0.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "not configured", response.Checks["database"])
	})

	t.Run("returns unhealthy when database connection is closed", func(t *testing.T) {
		db := setupHealthTestDB(t)
		require.NoError(t, db.Close())

		code, response := getHealth(t, NewHealthController(db, "1.0.0"))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", response.Status)
		assert.Contains(t, response.Checks["database"], "error")
	})

	t.Run("reports task queue and thumbnail directory", func(t *testing.T) {
		db := setupHealthTestDB(t)
		controller := NewHealthController(db, "2.5.3").WithTaskQueue(true).WithThumbnailDir(t.TempDir())

		code, response := getHealth(t, controller)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", response.Checks["task_queue"])
		assert.Equal(t, "ok", response.Checks["thumbnails"])
		assert.Equal(t, "2.5.3", response.Version)
	})

	t.Run("returns unhealthy when thumbnail directory is missing", func(t *testing.T) {
		db := setupHealthTestDB(t)
		controller := NewHealthController(db, "1.0.0").WithThumbnailDir(filepath.Join(t.TempDir(), "absent"))

		code, response := getHealth(t, controller)

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Contains(t, response.Checks["thumbnails"], "error")
	})
}
