package importers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/tracker"
)

var (
	// ErrAlreadyExecuted is returned by a second call to Session.Execute.
	ErrAlreadyExecuted = errors.New("import session already executed")
	// ErrNotStaged is returned when Execute is called on a session without staged rows.
	ErrNotStaged = errors.New("import session has no staged rows")
)

type State int

const (
	StateUninitialized State = iota
	StateHeaderValidated
	StateRowsStaged
	StateExecuted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHeaderValidated:
		return "header_validated"
	case StateRowsStaged:
		return "rows_staged"
	case StateExecuted:
		return "executed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// CategoryResolver maps the default category reference of an import to an id.
type CategoryResolver interface {
	Resolve(ref *string) (uint, error)
}

// RowProcessor persists one valid record. An error means the row could not
// be stored; the outcome returned alongside it may carry partial actions.
type RowProcessor interface {
	Process(ctx context.Context, row int, record ImportRecord) (tracker.Outcome, error)
}

// Reporter receives row outcomes as Execute produces them.
type Reporter interface {
	Start(totalItems int)
	Output(o tracker.Outcome)
	Finish()
	Fail(err error)
	Results(s tracker.Summary)
}

// Input is the raw content of an import file.
type Input struct {
	Content   []byte
	Encoding  string
	Delimiter Delimiter
	Source    string
}

// Options configure how a session stages and executes rows.
type Options struct {
	Categories CategoryResolver
	// Staging persists parsed rows between NewSession and ResumeSession.
	// When nil the session is not resumable.
	Staging *Staging
	// Category references the parent category: an id, an idnumber, or nil
	// for the default category.
	Category         *string
	DefaultDelimiter Delimiter
	// Mapping overrides header detection.
	Mapping            Mapping
	DownloadThumbnails bool
	// HaltOnError stops the run at the first row that fails to persist.
	HaltOnError bool
	Logger      logrus.FieldLogger
}

// SessionError carries the fatal messages of a failed session.
type SessionError struct {
	Messages []string
}

func (e *SessionError) Error() string {
	return strings.Join(e.Messages, "; ")
}

// Session is a two-phase CSV import: stage, then execute once.
type Session struct {
	opts       Options
	logger     logrus.FieldLogger
	state      State
	token      string
	source     string
	headers    []string
	records    []ImportRecord
	categoryID uint
	errors     []string
	executed   bool
}

func newSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Session{opts: opts, logger: logger, state: StateUninitialized}
}

// NewSession parses content, validates it and stages the rows.
func NewSession(in Input, opts Options) *Session {
	s := newSession(opts)
	s.source = in.Source

	comma, err := in.Delimiter.Rune(opts.DefaultDelimiter)
	if err != nil {
		s.fail(MsgInvalidDelimiter, err)
		return s
	}

	decoded, err := Decode(in.Content, in.Encoding)
	if err != nil {
		if errors.Is(err, ErrUnsupportedEncoding) {
			s.fail(MsgInvalidEncoding, err)
		} else {
			s.fail(MsgInvalidFile, err)
		}
		return s
	}

	headers, rows, err := ReadCSV(decoded, comma)
	if err != nil {
		s.fail(MsgInvalidFile, err)
		return s
	}

	if !s.load(headers, rows) {
		return s
	}

	if opts.Staging != nil {
		delimiter := in.Delimiter
		if delimiter == "" {
			delimiter = DelimiterConfig
		}
		token, err := opts.Staging.Save(&StagedImport{
			Source:    in.Source,
			Encoding:  in.Encoding,
			Delimiter: delimiter,
			Headers:   headers,
			Rows:      rows,
		})
		if err != nil {
			s.fail(err.Error(), err)
			return s
		}
		s.token = token
	}

	s.logger.WithFields(logrus.Fields{
		"source": in.Source,
		"rows":   len(s.records),
		"token":  s.token,
	}).Info("Import file staged")

	return s
}

// ResumeSession reattaches to rows staged under token without reparsing.
// Options may differ from the staging call: a new category or mapping is
// applied to the staged rows.
func ResumeSession(token string, opts Options) *Session {
	s := newSession(opts)
	s.token = token

	if opts.Staging == nil {
		s.fail(MsgSessionExpired, errors.New("no staging store configured"))
		return s
	}

	staged, err := opts.Staging.Load(token)
	if err != nil {
		s.fail(MsgSessionExpired, err)
		return s
	}
	s.source = staged.Source

	s.load(staged.Headers, staged.Rows)
	return s
}

func (s *Session) load(headers []string, rows [][]string) bool {
	if s.opts.Categories == nil {
		s.fail(MsgInvalidParentCategory, errors.New("no category resolver configured"))
		return false
	}
	categoryID, err := s.opts.Categories.Resolve(s.opts.Category)
	if err != nil {
		s.fail(MsgInvalidParentCategory, err)
		return false
	}
	s.categoryID = categoryID

	if len(headers) < len(RequiredHeaders) {
		s.fail(MsgInvalidHeaders, fmt.Errorf("found %d columns, need %d", len(headers), len(RequiredHeaders)))
		return false
	}
	s.headers = headers
	s.state = StateHeaderValidated

	mapping := s.opts.Mapping
	if mapping == nil {
		var missing []string
		mapping, missing = MappingFromHeaders(headers)
		if len(missing) > 0 {
			s.logger.WithField("missing", missing).Warn("Header names not recognised, using column order")
			mapping = DefaultMapping()
		}
	}

	s.records = make([]ImportRecord, 0, len(rows))
	for _, row := range rows {
		record := MapRow(row, mapping)
		record.ParentCategoryID = categoryID
		record.DownloadThumbnail = s.opts.DownloadThumbnails
		s.records = append(s.records, record)
	}

	if len(s.records) == 0 {
		s.fail(MsgNoRecords, nil)
		return false
	}

	s.state = StateRowsStaged
	return true
}

func (s *Session) fail(message string, cause error) {
	s.state = StateFailed
	s.errors = append(s.errors, message)
	s.records = nil

	entry := s.logger.WithField("source", s.source)
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Warn(message)
}

// Execute runs every staged record through processor in row order and
// reports each outcome. Rows that fail validation are counted as failed
// and skipped. A processor error fails the row; with HaltOnError it also
// ends the run and is returned. The staged copy is discarded afterwards.
func (s *Session) Execute(ctx context.Context, processor RowProcessor, reporter Reporter) (tracker.Summary, error) {
	var summary tracker.Summary
	if s.executed {
		return summary, ErrAlreadyExecuted
	}
	if s.state != StateRowsStaged {
		return summary, ErrNotStaged
	}
	s.executed = true
	if reporter == nil {
		reporter = tracker.New(tracker.ModeNone, nil)
	}

	defer s.discard()

	reporter.Start(len(s.records))
	for i, record := range s.records {
		row := i + 2 // header is row 1

		if err := ctx.Err(); err != nil {
			return s.halt(reporter, summary, fmt.Errorf("import cancelled at row %d: %w", row, err))
		}

		if err := record.Validate(); err != nil {
			outcome := tracker.Outcome{
				Row:            row,
				CourseFullname: record.CourseFullname,
				Messages:       []string{MsgInvalidRecord},
			}
			s.logger.WithError(err).WithField("row", row).Debug("Skipping invalid record")
			summary.Add(outcome)
			reporter.Output(outcome)
			continue
		}

		outcome, err := processor.Process(ctx, row, record)
		if err != nil {
			outcome.Row = row
			outcome.Success = false
			if outcome.CourseFullname == "" {
				outcome.CourseFullname = record.CourseFullname
			}
			outcome.Messages = append(outcome.Messages, err.Error())
			summary.Add(outcome)
			reporter.Output(outcome)

			s.logger.WithError(err).WithFields(logrus.Fields{
				"row":      row,
				"idnumber": record.CourseIDNumber,
			}).Error("Failed to import row")

			if s.opts.HaltOnError {
				return s.halt(reporter, summary, fmt.Errorf("row %d: %w", row, err))
			}
			continue
		}

		summary.Add(outcome)
		reporter.Output(outcome)
	}

	reporter.Finish()
	reporter.Results(summary)
	s.state = StateExecuted

	s.logger.WithFields(logrus.Fields{
		"token":     s.token,
		"total":     summary.Total,
		"created":   summary.Created,
		"updated":   summary.Updated,
		"unchanged": summary.Unchanged,
		"failed":    summary.Failed,
	}).Info("Import finished")

	return summary, nil
}

func (s *Session) halt(reporter Reporter, summary tracker.Summary, err error) (tracker.Summary, error) {
	reporter.Finish()
	reporter.Fail(err)
	s.state = StateFailed
	s.errors = append(s.errors, err.Error())
	return summary, err
}

func (s *Session) discard() {
	if s.opts.Staging == nil || s.token == "" {
		return
	}
	if err := s.opts.Staging.Delete(s.token); err != nil {
		s.logger.WithError(err).WithField("token", s.token).Warn("Failed to discard staged import")
	}
}

func (s *Session) State() State { return s.state }

// Token identifies the staged rows for ResumeSession. It is empty when the
// session has no staging store.
func (s *Session) Token() string { return s.token }

func (s *Session) Source() string { return s.source }

func (s *Session) Headers() []string { return s.headers }

func (s *Session) Records() []ImportRecord { return s.records }

// CategoryID is the resolved parent category.
func (s *Session) CategoryID() uint { return s.categoryID }

func (s *Session) Errors() []string { return s.errors }

func (s *Session) HasErrors() bool { return len(s.errors) > 0 }

// Err returns the fatal messages as a *SessionError, or nil.
func (s *Session) Err() error {
	if len(s.errors) == 0 {
		return nil
	}
	return &SessionError{Messages: append([]string(nil), s.errors...)}
}

// Preview returns up to n staged records.
func (s *Session) Preview(n int) []ImportRecord {
	if n <= 0 || n > len(s.records) {
		n = len(s.records)
	}
	return s.records[:n]
}
