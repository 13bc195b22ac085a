package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/courseimport/internal/config"
	"github.com/mrlokans/courseimport/internal/importers"
)

const csvHeader = "COURSE_IDNUMBER,COURSE_SHORTNAME,COURSE_FULLNAME,COURSE_SUMMARY,COURSE_TAGS,COURSE_VISIBLE," +
	"COURSE_THUMBNAIL,COURSE_CATEGORYIDNUMBER,COURSE_CATEGORYNAME,EXTERNAL_NAME,EXTERNAL_INTRO," +
	"EXTERNAL_CONTENT,EXTERNAL_MARKCOMPLETEEXTERNALLY\n"

func newTestCommand(t *testing.T) (*CourseImportCommand, *bytes.Buffer, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		Import: config.Import{
			DefaultDelimiter: "comma",
			DefaultEncoding:  "UTF-8",
			StagingLifetime:  time.Hour,
		},
		Thumbnails: config.Thumbnails{Dir: filepath.Join(dir, "thumbnails")},
	}
	cfg.Database.Path = filepath.Join(dir, "cli.db")

	logger, _ := test.NewNullLogger()
	cmd := NewCourseImportCommand(cfg, logger)
	var out bytes.Buffer
	cmd.SetOutput(&out, &bytes.Buffer{})
	return cmd, &out, dir
}

func writeFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "courses.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCourseImportCommand_ParseFlags(t *testing.T) {
	cmd, _, dir := newTestCommand(t)

	require.NoError(t, cmd.ParseFlags([]string{"-source", "x.csv", "-delimiter", "semicolon", "-thumbnails=false"}))

	assert.Equal(t, "x.csv", cmd.Source)
	assert.Equal(t, "semicolon", cmd.Delimiter)
	assert.Equal(t, "UTF-8", cmd.Encoding)
	assert.False(t, cmd.Thumbnails)
	assert.Equal(t, filepath.Join(dir, "cli.db"), cmd.DatabasePath)
}

func TestCourseImportCommand_ParseFlagsRequiresSource(t *testing.T) {
	cmd, _, _ := newTestCommand(t)

	err := cmd.ParseFlags([]string{"-delimiter", "tab"})

	assert.EqualError(t, err, "-source is required")
}

func TestCourseImportCommand_Run(t *testing.T) {
	cmd, out, dir := newTestCommand(t)
	source := writeFile(t, dir, csvHeader+
		"C1,S1,F1,,,1,,,,E1,I1,X1,0\n"+
		"C2,S2,F2,,,1,,,,E2,I2,,0\n")
	require.NoError(t, cmd.ParseFlags([]string{"-source", source, "-thumbnails=false"}))

	err := cmd.Run(context.Background())

	require.NoError(t, err)
	report := out.String()
	assert.Contains(t, report, "row\tresult\tcourse id\tfullname\tmessage\n")
	assert.Contains(t, report, "3\tNOK\t\tF2\t"+importers.MsgInvalidRecord)
	assert.Contains(t, report, "Courses created: 1")
	assert.Contains(t, report, "Courses errors: 1")
}

func TestCourseImportCommand_RunErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		args    []string
		want    string
	}{
		{
			name:    "not enough columns",
			content: "A,B,C,D,E,F,G,H,I,J\n1,2,3,4,5,6,7,8,9,10\n",
			want:    importers.MsgInvalidHeaders,
		},
		{
			name:    "unsupported encoding",
			content: csvHeader + "C1,S1,F1,,,1,,,,E1,I1,X1,0\n",
			args:    []string{"-encoding", "klingon"},
			want:    importers.MsgInvalidEncoding,
		},
		{
			name:    "unresolvable category",
			content: csvHeader + "C1,S1,F1,,,1,,,,E1,I1,X1,0\n",
			args:    []string{"-category", "no-such-category"},
			want:    importers.MsgInvalidParentCategory,
		},
		{
			name:    "no records",
			content: csvHeader,
			want:    importers.MsgNoRecords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, out, dir := newTestCommand(t)
			source := writeFile(t, dir, tt.content)
			require.NoError(t, cmd.ParseFlags(append([]string{"-source", source}, tt.args...)))

			err := cmd.Run(context.Background())

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.NotContains(t, out.String(), "Courses total")
		})
	}
}

func TestCourseImportCommand_RunMissingFile(t *testing.T) {
	cmd, _, dir := newTestCommand(t)
	require.NoError(t, cmd.ParseFlags([]string{"-source", filepath.Join(dir, "absent.csv")}))

	err := cmd.Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read import file")
}
