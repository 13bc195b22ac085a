package importers

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/courseimport/internal/tracker"
)

const header = "COURSE_IDNUMBER,COURSE_SHORTNAME,COURSE_FULLNAME,COURSE_SUMMARY,COURSE_TAGS,COURSE_VISIBLE," +
	"COURSE_THUMBNAIL,COURSE_CATEGORYIDNUMBER,COURSE_CATEGORYNAME,EXTERNAL_NAME,EXTERNAL_INTRO," +
	"EXTERNAL_CONTENT,EXTERNAL_MARKCOMPLETEEXTERNALLY\n"

type stubResolver struct {
	id  uint
	err error
	got *string
}

func (r *stubResolver) Resolve(ref *string) (uint, error) {
	r.got = ref
	return r.id, r.err
}

type stubProcessor struct {
	rows    []int
	records []ImportRecord
	failOn  map[int]error
}

func (p *stubProcessor) Process(_ context.Context, row int, rec ImportRecord) (tracker.Outcome, error) {
	p.rows = append(p.rows, row)
	p.records = append(p.records, rec)
	if err := p.failOn[row]; err != nil {
		return tracker.Outcome{}, err
	}
	return tracker.Outcome{
		Row:            row,
		Success:        true,
		CourseID:       uint(row),
		CourseFullname: rec.CourseFullname,
		Actions:        []tracker.Action{tracker.ActionCourseCreated},
	}, nil
}

func quietLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func testOptions(resolver CategoryResolver) Options {
	return Options{
		Categories: resolver,
		Staging:    NewStaging(memstore.New(), time.Minute),
		Logger:     quietLogger(),
	}
}

func csvInput(body string) Input {
	return Input{Content: []byte(header + body), Encoding: "UTF-8", Delimiter: DelimiterComma, Source: "test.csv"}
}

func TestNewSession_Stages(t *testing.T) {
	resolver := &stubResolver{id: 4}
	s := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\nC2,S2,F2,,,0,,,,E2,I2,X2,1\n"), testOptions(resolver))

	require.False(t, s.HasErrors(), s.Errors())
	assert.Equal(t, StateRowsStaged, s.State())
	assert.NotEmpty(t, s.Token())
	assert.Equal(t, uint(4), s.CategoryID())
	assert.Nil(t, resolver.got)

	records := s.Records()
	require.Len(t, records, 2)
	assert.Equal(t, "C1", records[0].CourseIDNumber)
	assert.Equal(t, uint(4), records[0].ParentCategoryID)
	assert.True(t, records[0].CourseVisible)
	assert.True(t, records[1].ExternalMarkCompleteExternally)
	assert.Len(t, s.Preview(1), 1)
}

func TestNewSession_HeadersInAnyOrder(t *testing.T) {
	content := "EXTERNAL_CONTENT,external_name,EXTERNAL_INTRO,COURSE_FULLNAME,COURSE_SHORTNAME,COURSE_IDNUMBER," +
		"COURSE_SUMMARY,COURSE_TAGS,COURSE_VISIBLE,COURSE_THUMBNAIL,COURSE_CATEGORYIDNUMBER,COURSE_CATEGORYNAME," +
		"EXTERNAL_MARKCOMPLETEEXTERNALLY,NOTES\nX1,E1,I1,F1,S1,C1,,,,,,,,ignored\n"

	s := NewSession(Input{Content: []byte(content), Delimiter: DelimiterComma}, testOptions(&stubResolver{id: 1}))
	require.False(t, s.HasErrors(), s.Errors())

	rec := s.Records()[0]
	assert.Equal(t, "C1", rec.CourseIDNumber)
	assert.Equal(t, "X1", rec.ExternalContent)
	assert.Equal(t, "E1", rec.ExternalName)
}

func TestNewSession_FatalConditions(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		resolver *stubResolver
		message  string
	}{
		{
			name:     "not enough columns",
			input:    Input{Content: []byte("A,B,C,D,E,F,G,H,I,J\n1,2,3,4,5,6,7,8,9,10\n")},
			resolver: &stubResolver{id: 1},
			message:  MsgInvalidHeaders,
		},
		{
			name:     "wrong delimiter",
			input:    Input{Content: []byte(header), Delimiter: DelimiterSemicolon},
			resolver: &stubResolver{id: 1},
			message:  MsgInvalidHeaders,
		},
		{
			name:     "no data rows",
			input:    csvInput(""),
			resolver: &stubResolver{id: 1},
			message:  MsgNoRecords,
		},
		{
			name:     "empty file",
			input:    Input{Content: nil},
			resolver: &stubResolver{id: 1},
			message:  MsgInvalidFile,
		},
		{
			name:     "unsupported encoding",
			input:    Input{Content: []byte(header), Encoding: "klingon"},
			resolver: &stubResolver{id: 1},
			message:  MsgInvalidEncoding,
		},
		{
			name:     "unknown delimiter",
			input:    Input{Content: []byte(header), Delimiter: "pipe"},
			resolver: &stubResolver{id: 1},
			message:  MsgInvalidDelimiter,
		},
		{
			name:     "category unresolvable",
			input:    csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\n"),
			resolver: &stubResolver{err: errors.New("category not found")},
			message:  MsgInvalidParentCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(tt.input, testOptions(tt.resolver))
			assert.Equal(t, StateFailed, s.State())
			assert.Equal(t, []string{tt.message}, s.Errors())
			assert.Empty(t, s.Records())
			assert.Empty(t, s.Token())

			var sessionErr *SessionError
			require.ErrorAs(t, s.Err(), &sessionErr)
			assert.Equal(t, []string{tt.message}, sessionErr.Messages)

			_, err := s.Execute(context.Background(), &stubProcessor{}, nil)
			assert.ErrorIs(t, err, ErrNotStaged)
		})
	}
}

func TestNewSession_TenOfThirteenColumns(t *testing.T) {
	cols := strings.Split(strings.TrimSpace(header), ",")[:10]
	content := strings.Join(cols, ",") + "\nC1,S1,F1,,,1,,,,E1\n"

	processor := &stubProcessor{}
	s := NewSession(Input{Content: []byte(content)}, testOptions(&stubResolver{id: 1}))

	assert.Equal(t, StateFailed, s.State())
	assert.Contains(t, s.Errors(), MsgInvalidHeaders)
	assert.Empty(t, s.Records())
	assert.Empty(t, processor.rows)
}

func TestSession_Execute(t *testing.T) {
	opts := testOptions(&stubResolver{id: 1})
	s := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\nC2,S2,F2,,,1,,,,E2,I2,,0\nC3,S3,F3,,,1,,,,E3,I3,X3,0\n"), opts)
	require.False(t, s.HasErrors(), s.Errors())

	processor := &stubProcessor{}
	tr := tracker.New(tracker.ModeNone, nil)
	summary, err := s.Execute(context.Background(), processor, tr)
	require.NoError(t, err)

	assert.Equal(t, tracker.Summary{Total: 3, Created: 2, Failed: 1}, summary)
	assert.Equal(t, []int{2, 4}, processor.rows)
	assert.Equal(t, StateExecuted, s.State())

	rows := tr.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, "NOK", rows[1].Result)
	assert.Equal(t, MsgInvalidRecord, rows[1].Message)

	t.Run("second execute is rejected", func(t *testing.T) {
		_, err := s.Execute(context.Background(), processor, nil)
		assert.ErrorIs(t, err, ErrAlreadyExecuted)
		assert.Len(t, processor.rows, 2)
	})

	t.Run("staged copy discarded", func(t *testing.T) {
		_, err := opts.Staging.Load(s.Token())
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestSession_ExecuteContinuesAfterPersistenceFault(t *testing.T) {
	s := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\nC2,S2,F2,,,1,,,,E2,I2,X2,0\n"), testOptions(&stubResolver{id: 1}))
	require.False(t, s.HasErrors())

	processor := &stubProcessor{failOn: map[int]error{2: errors.New("database is locked")}}
	tr := tracker.New(tracker.ModeNone, nil)
	summary, err := s.Execute(context.Background(), processor, tr)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []int{2, 3}, processor.rows)
	assert.Equal(t, "database is locked", tr.Rows()[0].Message)
}

func TestSession_ExecuteHaltsOnPersistenceFault(t *testing.T) {
	opts := testOptions(&stubResolver{id: 1})
	opts.HaltOnError = true
	s := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\nC2,S2,F2,,,1,,,,E2,I2,X2,0\n"), opts)
	require.False(t, s.HasErrors())

	fault := errors.New("database is locked")
	processor := &stubProcessor{failOn: map[int]error{2: fault}}
	summary, err := s.Execute(context.Background(), processor, nil)

	assert.ErrorIs(t, err, fault)
	assert.Equal(t, []int{2}, processor.rows)
	assert.Equal(t, tracker.Summary{Total: 1, Failed: 1}, summary)
	assert.Equal(t, StateFailed, s.State())

	_, err = s.Execute(context.Background(), processor, nil)
	assert.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestSession_ExecuteCancelled(t *testing.T) {
	s := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\n"), testOptions(&stubResolver{id: 1}))
	require.False(t, s.HasErrors())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := &stubProcessor{}
	_, err := s.Execute(ctx, processor, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, processor.rows)
}

func TestResumeSession(t *testing.T) {
	opts := testOptions(&stubResolver{id: 1})
	staged := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\n"), opts)
	require.False(t, staged.HasErrors())

	category := "CAT"
	resumeResolver := &stubResolver{id: 9}
	resumeOpts := opts
	resumeOpts.Categories = resumeResolver
	resumeOpts.Category = &category
	resumeOpts.DownloadThumbnails = true

	resumed := ResumeSession(staged.Token(), resumeOpts)
	require.False(t, resumed.HasErrors(), resumed.Errors())
	assert.Equal(t, StateRowsStaged, resumed.State())
	assert.Equal(t, "test.csv", resumed.Source())
	assert.Equal(t, &category, resumeResolver.got)

	rec := resumed.Records()[0]
	assert.Equal(t, uint(9), rec.ParentCategoryID)
	assert.True(t, rec.DownloadThumbnail)

	t.Run("explicit mapping", func(t *testing.T) {
		mapping := DefaultMapping()
		mapping[HeaderCourseFullname] = 1
		mappedOpts := opts
		mappedOpts.Mapping = mapping

		mapped := ResumeSession(staged.Token(), mappedOpts)
		require.False(t, mapped.HasErrors())
		assert.Equal(t, "S1", mapped.Records()[0].CourseFullname)
	})

	t.Run("unknown token", func(t *testing.T) {
		missing := ResumeSession("nope", opts)
		assert.Equal(t, StateFailed, missing.State())
		assert.Equal(t, []string{MsgSessionExpired}, missing.Errors())
	})
}

func TestNewSession_WithoutStaging(t *testing.T) {
	opts := testOptions(&stubResolver{id: 1})
	opts.Staging = nil

	s := NewSession(csvInput("C1,S1,F1,,,1,,,,E1,I1,X1,0\n"), opts)
	require.False(t, s.HasErrors())
	assert.Empty(t, s.Token())

	summary, err := s.Execute(context.Background(), &stubProcessor{}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "rows_staged", StateRowsStaged.String())
	assert.Equal(t, "failed", StateFailed.String())
}
