package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/database/runs"
	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/tracker"
)

// Origins recorded in audit events.
const (
	OriginUpload    = "upload"
	OriginCLI       = "cli"
	OriginScheduler = "scheduler"
	OriginTask      = "task"
)

// ImportOptions are the defaults applied to every import.
type ImportOptions struct {
	DefaultDelimiter   importers.Delimiter
	DefaultEncoding    string
	DefaultCategory    string
	DownloadThumbnails bool
	HaltOnError        bool
	PreviewRows        int
}

// StageRequest is an uploaded import file.
type StageRequest struct {
	Content   []byte
	Encoding  string
	Delimiter importers.Delimiter
	Source    string
}

// StageResult is the preview shown before an import is confirmed.
type StageResult struct {
	Token   string                   `json:"token"`
	Source  string                   `json:"source"`
	Headers []string                 `json:"headers"`
	Total   int                      `json:"total"`
	Rows    []importers.ImportRecord `json:"rows"`
}

// ExecuteRequest confirms a staged import. Nil fields fall back to the
// configured defaults.
type ExecuteRequest struct {
	Token              string
	Category           *string
	DownloadThumbnails *bool
	Mapping            importers.Mapping
	Mode               tracker.OutputMode
	Origin             string
}

// ExecuteResult is the report of a finished import.
type ExecuteResult struct {
	Token   string          `json:"token"`
	Summary tracker.Summary `json:"summary"`
	Rows    []tracker.Row   `json:"rows"`
	Report  string          `json:"report,omitempty"`
}

// ImportService runs the stage and execute phases of course imports and
// records their progress and audit trail.
type ImportService struct {
	categories importers.CategoryResolver
	staging    *importers.Staging
	processor  importers.RowProcessor
	runs       RunStore
	audit      AuditLogger
	opts       ImportOptions
	logger     logrus.FieldLogger
}

func NewImportService(
	categories importers.CategoryResolver,
	staging *importers.Staging,
	processor importers.RowProcessor,
	progress RunStore,
	auditor AuditLogger,
	opts ImportOptions,
	logger logrus.FieldLogger,
) *ImportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &ImportService{
		categories: categories,
		staging:    staging,
		processor:  processor,
		runs:       progress,
		audit:      auditor,
		opts:       opts,
		logger:     logger,
	}
}

// Stage parses content and keeps the rows for a later Execute. Fatal
// problems are returned as *importers.SessionError.
func (s *ImportService) Stage(req StageRequest) (*StageResult, error) {
	session := importers.NewSession(s.input(req.Content, req.Encoding, req.Delimiter, req.Source), s.options(nil, nil, nil))

	if s.audit != nil {
		s.audit.LogStage(OriginUpload, session.Token(), len(session.Records()), session.Errors())
	}
	if err := session.Err(); err != nil {
		return nil, err
	}

	return &StageResult{
		Token:   session.Token(),
		Source:  session.Source(),
		Headers: session.Headers(),
		Total:   len(session.Records()),
		Rows:    session.Preview(s.opts.PreviewRows),
	}, nil
}

// Execute imports the rows staged under req.Token.
func (s *ImportService) Execute(ctx context.Context, req ExecuteRequest) (*ExecuteResult, error) {
	session := importers.ResumeSession(req.Token, s.options(req.Category, req.DownloadThumbnails, req.Mapping))
	origin := req.Origin
	if origin == "" {
		origin = OriginUpload
	}
	return s.run(ctx, session, req.Token, origin, req.Mode, nil)
}

// Import stages and executes content in one step, writing the report to out.
func (s *ImportService) Import(ctx context.Context, req StageRequest, category *string, downloadThumbnails *bool, origin string, mode tracker.OutputMode, out io.Writer) (*ExecuteResult, error) {
	opts := s.options(category, downloadThumbnails, nil)
	opts.Staging = nil
	session := importers.NewSession(s.input(req.Content, req.Encoding, req.Delimiter, req.Source), opts)
	return s.run(ctx, session, uuid.NewString(), origin, mode, out)
}

// Queue marks the run of a staged import as pending before it is handed to
// a background worker.
func (s *ImportService) Queue(token string) error {
	if _, err := s.staging.Load(token); err != nil {
		return err
	}
	return s.runs.ForToken(token).MarkPending()
}

// IsRunning reports whether the import under token is in progress.
func (s *ImportService) IsRunning(token string) (bool, error) {
	return s.runs.ForToken(token).IsRunning()
}

// GetRun returns the persisted progress of the import under token.
func (s *ImportService) GetRun(token string) (*entities.ImportRun, error) {
	return s.runs.GetByToken(token)
}

// RecentRuns returns the latest imports, newest first.
func (s *ImportService) RecentRuns(limit int) ([]entities.ImportRun, error) {
	return s.runs.GetRecent(limit)
}

func (s *ImportService) run(ctx context.Context, session *importers.Session, token, origin string, mode tracker.OutputMode, out io.Writer) (*ExecuteResult, error) {
	if err := session.Err(); err != nil {
		if s.audit != nil {
			s.audit.LogImport(origin, token, tracker.Summary{}, err)
		}
		if s.runs != nil {
			// a queued run would otherwise stay pending
			_ = s.runs.ForToken(token).CompleteRun(tracker.Summary{}, err.Error())
		}
		return nil, err
	}

	tr := tracker.New(mode, out)
	if s.runs != nil {
		tr.SetProgressReporter(s.runs.ForToken(token))
	}

	summary, err := session.Execute(ctx, s.processor, tr)
	if s.audit != nil {
		s.audit.LogImport(origin, token, summary, err)
	}

	result := &ExecuteResult{
		Token:   token,
		Summary: summary,
		Rows:    tr.Rows(),
		Report:  tr.Buffer(),
	}
	if err != nil {
		return result, fmt.Errorf("import %s: %w", token, err)
	}

	s.logger.WithFields(logrus.Fields{
		"token":  token,
		"origin": origin,
		"result": summary.String(),
	}).Info("Import completed")
	return result, nil
}

func (s *ImportService) input(content []byte, encoding string, delimiter importers.Delimiter, source string) importers.Input {
	if encoding == "" {
		encoding = s.opts.DefaultEncoding
	}
	return importers.Input{Content: content, Encoding: encoding, Delimiter: delimiter, Source: source}
}

func (s *ImportService) options(category *string, downloadThumbnails *bool, mapping importers.Mapping) importers.Options {
	if category == nil && s.opts.DefaultCategory != "" {
		def := s.opts.DefaultCategory
		category = &def
	}
	download := s.opts.DownloadThumbnails
	if downloadThumbnails != nil {
		download = *downloadThumbnails
	}
	return importers.Options{
		Categories:         s.categories,
		Staging:            s.staging,
		Category:           category,
		DefaultDelimiter:   s.opts.DefaultDelimiter,
		Mapping:            mapping,
		DownloadThumbnails: download,
		HaltOnError:        s.opts.HaltOnError,
		Logger:             s.logger,
	}
}

// runStore adapts the runs repository to RunStore.
type runStore struct {
	repo *runs.Repository
}

// NewRunStore wraps the runs repository.
func NewRunStore(repo *runs.Repository) RunStore {
	return runStore{repo: repo}
}

func (r runStore) ForToken(token string) RunTracker {
	return r.repo.ForToken(token)
}

func (r runStore) GetByToken(token string) (*entities.ImportRun, error) {
	return r.repo.GetByToken(token)
}

func (r runStore) GetRecent(limit int) ([]entities.ImportRun, error) {
	return r.repo.GetRecent(limit)
}

// IsSessionError reports whether err carries the fatal messages of an
// import session.
func IsSessionError(err error) bool {
	var sessionErr *importers.SessionError
	return errors.As(err, &sessionErr)
}
