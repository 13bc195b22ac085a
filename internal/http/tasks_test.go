package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/courseimport/internal/tasks"
)

func setupTasksRouter(queue TaskQueue) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	tc := NewTasksController(queue, 14)
	router.GET("/api/tasks/types", tc.ListTaskTypes)
	router.GET("/api/tasks/:id", tc.GetTaskStatus)
	router.POST("/api/tasks/:type/run", tc.RunTask)
	return router
}

func TestTasksController_ListTaskTypes(t *testing.T) {
	router := setupTasksRouter(&fakeQueue{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/types", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		TaskTypes []TaskTypeInfo `json:"task_types"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.TaskTypes, 2)
	assert.Equal(t, "prune_import_history", resp.TaskTypes[0].Type)
	assert.Equal(t, "prune_import_history", resp.TaskTypes[0].Queue)
	assert.Equal(t, "cleanup_orphan_tags", resp.TaskTypes[1].Type)
}

func TestTasksController_RunTask(t *testing.T) {
	queue := &fakeQueue{}
	router := setupTasksRouter(queue)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tasks/prune_import_history/run", nil))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	require.Len(t, queue.tasks, 1)
	assert.Equal(t, tasks.PruneHistoryTask{RetentionDays: 14}, queue.tasks[0])

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tasks/cleanup_audit_events/run", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, queue.tasks, 1)
}

func TestTasksController_GetTaskStatus(t *testing.T) {
	queue := &fakeQueue{status: backlite.TaskStatusRunning}
	router := setupTasksRouter(queue)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/task-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"running"`)

	queue.status = backlite.TaskStatusNotFound
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
