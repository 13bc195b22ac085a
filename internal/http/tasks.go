package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/courseimport/internal/tasks"
)

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// TasksController handles task queue management endpoints.
type TasksController struct {
	queue         TaskQueue
	retentionDays int
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue, retentionDays int) *TasksController {
	return &TasksController{queue: queue, retentionDays: retentionDays}
}

// TaskTypeInfo describes an available task type.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// ListTaskTypes handles GET /api/tasks/types
// Returns the maintenance tasks that can be triggered manually.
func (tc *TasksController) ListTaskTypes(c *gin.Context) {
	types := []TaskTypeInfo{
		{
			Type:        "prune_import_history",
			Description: "Remove finished import runs and audit events older than the retention period",
			Queue:       tasks.PruneHistoryTask{}.Config().Name,
		},
		{
			Type:        "cleanup_orphan_tags",
			Description: "Remove tags no course uses",
			Queue:       tasks.CleanupOrphanTagsTask{}.Config().Name,
		},
	}

	c.JSON(http.StatusOK, gin.H{
		"task_types": types,
	})
}

// GetTaskStatus handles GET /api/tasks/:id
// Returns the status of a specific task.
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		respondBadRequest(c, "task ID is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondError(c, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	statusStr := taskStatusToString(status)
	if statusStr == "not_found" {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": statusStr,
	})
}

// RunTask handles POST /api/tasks/:type/run
// Manually triggers a maintenance task of the specified type.
func (tc *TasksController) RunTask(c *gin.Context) {
	taskType := c.Param("type")

	var task backlite.Task
	switch taskType {
	case "prune_import_history":
		task = tasks.PruneHistoryTask{RetentionDays: tc.retentionDays}
	case "cleanup_orphan_tags":
		task = tasks.CleanupOrphanTagsTask{}
	default:
		respondBadRequest(c, fmt.Sprintf("unknown task type: %s", taskType))
		return
	}

	id, err := tc.queue.Enqueue(c.Request.Context(), task)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"task_id": id,
		"type":    taskType,
		"message": "task enqueued",
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
