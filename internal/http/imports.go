package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/services"
	"github.com/mrlokans/courseimport/internal/tasks"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// ImportService is the part of the import service used by the HTTP API.
type ImportService interface {
	Stage(req services.StageRequest) (*services.StageResult, error)
	Execute(ctx context.Context, req services.ExecuteRequest) (*services.ExecuteResult, error)
	Queue(token string) error
	GetRun(token string) (*entities.ImportRun, error)
	RecentRuns(limit int) ([]entities.ImportRun, error)
}

// ImportsController handles the upload, preview and confirm flow.
type ImportsController struct {
	service        ImportService
	queue          TaskQueue
	maxUploadBytes int64
	logger         logrus.FieldLogger
}

// NewImportsController creates a new ImportsController. queue may be nil,
// in which case background execution is refused.
func NewImportsController(service ImportService, queue TaskQueue, maxUploadBytes int64, logger logrus.FieldLogger) *ImportsController {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportsController{
		service:        service,
		queue:          queue,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.WithField("component", "http_imports"),
	}
}

// ConfirmRequest is the body of a confirm call. Form posts carry the
// mapping as a JSON object string.
type ConfirmRequest struct {
	Category          *string        `json:"category" form:"category"`
	DownloadThumbnail *bool          `json:"download_thumbnail" form:"download_thumbnail"`
	Mapping           map[string]int `json:"mapping" form:"-"`
	MappingJSON       string         `json:"-" form:"mapping"`
	Async             bool           `json:"async" form:"async"`
}

// QueuedResponse is returned when an import was handed to the task queue.
type QueuedResponse struct {
	Token  string `json:"token"`
	TaskID string `json:"task_id"`
	RunURL string `json:"run_url"`
}

// Upload handles POST /api/imports.
// Accepts a multipart file with optional encoding and delimiter fields and
// returns a preview of the staged rows.
func (ic *ImportsController) Upload(c *gin.Context) {
	if ic.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ic.maxUploadBytes)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, http.StatusRequestEntityTooLarge, ErrorResponse{Error: "import file too large"})
			return
		}
		respondBadRequest(c, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondInternalError(c, ic.logger, err, "open upload")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondInternalError(c, ic.logger, err, "read upload")
		return
	}

	staged, err := ic.service.Stage(services.StageRequest{
		Content:   content,
		Encoding:  c.PostForm("encoding"),
		Delimiter: importers.Delimiter(c.PostForm("delimiter")),
		Source:    fileHeader.Filename,
	})
	if err != nil {
		ic.respondImportError(c, err, nil)
		return
	}

	c.JSON(http.StatusOK, staged)
}

// Confirm handles POST /api/imports/:token/confirm.
// Runs the staged import and returns the table report, or queues it when
// async is set.
func (ic *ImportsController) Confirm(c *gin.Context) {
	token := c.Param("token")

	var req ConfirmRequest
	if err := c.ShouldBind(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBadRequest(c, "invalid confirm request: "+err.Error())
		return
	}

	mapping, err := req.mapping()
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.Async {
		ic.enqueue(c, token, req, mapping)
		return
	}

	result, err := ic.service.Execute(c.Request.Context(), services.ExecuteRequest{
		Token:              token,
		Category:           req.Category,
		DownloadThumbnails: req.DownloadThumbnail,
		Mapping:            mapping,
		Mode:               tracker.ModeTable,
		Origin:             services.OriginUpload,
	})
	if err != nil {
		ic.respondImportError(c, err, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (ic *ImportsController) enqueue(c *gin.Context, token string, req ConfirmRequest, mapping importers.Mapping) {
	if ic.queue == nil {
		respondError(c, http.StatusServiceUnavailable, ErrorResponse{Error: "background imports are not enabled", Code: "tasks_disabled"})
		return
	}

	if err := ic.service.Queue(token); err != nil {
		ic.respondImportError(c, err, nil)
		return
	}

	taskID, err := ic.queue.Enqueue(c.Request.Context(), tasks.ExecuteImportTask{
		Token:              token,
		Category:           req.Category,
		DownloadThumbnails: req.DownloadThumbnail,
		Mapping:            mapping,
	})
	if err != nil {
		respondInternalError(c, ic.logger, err, "enqueue import")
		return
	}

	respondAccepted(c, "import queued", QueuedResponse{
		Token:  token,
		TaskID: taskID,
		RunURL: "/api/imports/runs/" + token,
	})
}

// GetRun handles GET /api/imports/runs/:token.
func (ic *ImportsController) GetRun(c *gin.Context) {
	run, err := ic.service.GetRun(c.Param("token"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "import run")
		return
	}
	if err != nil {
		respondInternalError(c, ic.logger, err, "get run")
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListRuns handles GET /api/imports/runs?limit=N.
func (ic *ImportsController) ListRuns(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			respondBadRequest(c, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := ic.service.RecentRuns(limit)
	if err != nil {
		respondInternalError(c, ic.logger, err, "list runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (ic *ImportsController) respondImportError(c *gin.Context, err error, partial *services.ExecuteResult) {
	var sessionErr *importers.SessionError
	isSessionErr := errors.As(err, &sessionErr)
	switch {
	case isSessionErr && len(sessionErr.Messages) == 1 && sessionErr.Messages[0] == importers.MsgSessionExpired,
		errors.Is(err, importers.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, ErrorResponse{
			Error: importers.MsgSessionExpired,
			Code:  "session_expired",
		})
	case isSessionErr:
		respondError(c, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "import file rejected",
			Code:    "invalid_import",
			Details: sessionErr.Messages,
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusServiceUnavailable, ErrorResponse{
			Error:   "import interrupted",
			Code:    "interrupted",
			Details: partial,
		})
	default:
		ic.logger.WithError(err).Error("Import failed")
		respondError(c, http.StatusInternalServerError, ErrorResponse{
			Error:   "import failed",
			Code:    "import_failed",
			Details: partial,
		})
	}
}

func (r ConfirmRequest) mapping() (importers.Mapping, error) {
	if len(r.Mapping) > 0 {
		return importers.NormalizeMapping(r.Mapping)
	}
	raw := strings.TrimSpace(r.MappingJSON)
	if raw == "" {
		return nil, nil
	}
	var m map[string]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	return importers.NormalizeMapping(m)
}
