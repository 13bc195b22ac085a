// Package tracker collects per-row import outcomes and renders them as a
// plain-text log or a table, with an optional persistent progress sink.
package tracker

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"
)

type OutputMode int

const (
	ModeNone OutputMode = iota
	ModePlain
	ModeTable
)

// ParseOutputMode maps a configuration value onto an output mode.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return ModeNone, nil
	case "plain", "text":
		return ModePlain, nil
	case "table", "html":
		return ModeTable, nil
	}
	return ModeNone, fmt.Errorf("unknown output mode %q", s)
}

type Action string

const (
	ActionCourseCreated   Action = "course_created"
	ActionCourseUpdated   Action = "course_updated"
	ActionActivityCreated Action = "activity_created"
	ActionActivityUpdated Action = "activity_updated"
	ActionUnchanged       Action = "unchanged"
)

// Outcome is the result of processing one import row.
type Outcome struct {
	Row            int      `json:"row"`
	Success        bool     `json:"success"`
	CourseID       uint     `json:"course_id,omitempty"`
	CourseFullname string   `json:"course_fullname,omitempty"`
	ActivityID     uint     `json:"activity_id,omitempty"`
	Actions        []Action `json:"actions,omitempty"`
	Messages       []string `json:"messages,omitempty"`
}

func (o Outcome) Has(action Action) bool {
	for _, a := range o.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// Message joins the row messages in the order they were added.
func (o Outcome) Message() string {
	return strings.Join(o.Messages, ", ")
}

// Summary holds the counters reported at the end of an import.
type Summary struct {
	Total     int `json:"total"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Add folds a row outcome into the counters. A failed row only counts as failed.
func (s *Summary) Add(o Outcome) {
	s.Total++
	switch {
	case !o.Success:
		s.Failed++
	case o.Has(ActionCourseCreated):
		s.Created++
	case o.Has(ActionUnchanged):
		s.Unchanged++
	default:
		s.Updated++
	}
}

func (s Summary) Succeeded() int {
	return s.Total - s.Failed
}

func (s Summary) String() string {
	return fmt.Sprintf("%d rows: %d created, %d updated, %d unchanged, %d failed",
		s.Total, s.Created, s.Updated, s.Unchanged, s.Failed)
}

// ProgressReporter receives progress updates for long-running imports.
type ProgressReporter interface {
	StartRun(totalItems int) error
	UpdateProgress(processed int, summary Summary, currentItem string) error
	CompleteRun(summary Summary, errorMsg string) error
}

// Row is one rendered line of the results table.
type Row struct {
	Line     int    `json:"line"`
	Result   string `json:"result"`
	CourseID string `json:"course_id"`
	Fullname string `json:"fullname"`
	Message  string `json:"message"`
}

var columns = []string{"row", "result", "course id", "fullname", "message"}

// Tracker renders import progress. It is not safe for concurrent use.
type Tracker struct {
	mode     OutputMode
	out      io.Writer
	buf      strings.Builder
	rows     []Row
	summary  Summary
	progress ProgressReporter
	started  bool
}

// New creates a tracker. When out is non-nil every rendered line is also
// written to it as it is produced.
func New(mode OutputMode, out io.Writer) *Tracker {
	return &Tracker{mode: mode, out: out}
}

// SetProgressReporter attaches a sink that mirrors the counters while rows are processed.
func (t *Tracker) SetProgressReporter(p ProgressReporter) {
	t.progress = p
}

// Start writes the table header.
func (t *Tracker) Start(totalItems int) {
	t.started = true
	if t.progress != nil {
		_ = t.progress.StartRun(totalItems)
	}

	switch t.mode {
	case ModePlain:
		t.write(strings.Join(columns, "\t") + "\n")
	case ModeTable:
		var sb strings.Builder
		sb.WriteString("<table class=\"generaltable\">\n<thead><tr>")
		for _, c := range columns {
			sb.WriteString("<th>" + c + "</th>")
		}
		sb.WriteString("</tr></thead>\n<tbody>\n")
		t.write(sb.String())
	}
}

// Output records a processed row.
func (t *Tracker) Output(o Outcome) {
	t.summary.Add(o)

	row := Row{
		Line:     o.Row,
		Result:   "OK",
		Fullname: o.CourseFullname,
		Message:  o.Message(),
	}
	if !o.Success {
		row.Result = "NOK"
	}
	if o.CourseID != 0 {
		row.CourseID = strconv.FormatUint(uint64(o.CourseID), 10)
	}
	t.rows = append(t.rows, row)

	if t.progress != nil {
		_ = t.progress.UpdateProgress(t.summary.Total, t.summary, o.CourseFullname)
	}

	switch t.mode {
	case ModePlain:
		t.write(strings.Join([]string{
			strconv.Itoa(row.Line), row.Result, row.CourseID, row.Fullname, row.Message,
		}, "\t") + "\n")
	case ModeTable:
		class := "success"
		if !o.Success {
			class = "error"
		}
		t.write(fmt.Sprintf("<tr class=\"%s\"><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>\n",
			class, row.Line, row.Result, row.CourseID, html.EscapeString(row.Fullname), html.EscapeString(row.Message)))
	}
}

// Finish closes the table.
func (t *Tracker) Finish() {
	if t.mode == ModeTable && t.started {
		t.write("</tbody>\n</table>\n")
	}
}

// Fail marks the run as aborted.
func (t *Tracker) Fail(err error) {
	if t.progress != nil {
		_ = t.progress.CompleteRun(t.summary, err.Error())
		t.progress = nil
	}
	if t.mode != ModeNone {
		t.write("Import aborted: " + err.Error() + "\n")
	}
}

// Results writes the final counters and completes the progress record.
func (t *Tracker) Results(s Summary) {
	t.summary = s
	if t.progress != nil {
		_ = t.progress.CompleteRun(s, "")
	}

	lines := []string{
		fmt.Sprintf("Courses total: %d", s.Total),
		fmt.Sprintf("Courses created: %d", s.Created),
		fmt.Sprintf("Courses updated: %d", s.Updated),
		fmt.Sprintf("Courses not updated: %d", s.Unchanged),
		fmt.Sprintf("Courses errors: %d", s.Failed),
	}

	switch t.mode {
	case ModePlain:
		t.write(strings.Join(lines, "\n") + "\n")
	case ModeTable:
		t.write("<ul class=\"import-results\">\n")
		for _, l := range lines {
			t.write("<li>" + l + "</li>\n")
		}
		t.write("</ul>\n")
	}
}

// Buffer returns everything rendered so far.
func (t *Tracker) Buffer() string {
	return t.buf.String()
}

func (t *Tracker) Rows() []Row {
	return t.rows
}

func (t *Tracker) Summary() Summary {
	return t.summary
}

func (t *Tracker) write(s string) {
	t.buf.WriteString(s)
	if t.out != nil {
		_, _ = io.WriteString(t.out, s)
	}
}
