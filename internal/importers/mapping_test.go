package importers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMapping(t *testing.T) {
	m := DefaultMapping()
	require.Len(t, m, 13)
	assert.Equal(t, 0, m[HeaderCourseIDNumber])
	assert.Equal(t, 12, m[HeaderExternalMarkCompleteExternally])
}

func TestMappingFromHeaders(t *testing.T) {
	t.Run("any order and case", func(t *testing.T) {
		headers := []string{
			"extra", "external_content", "COURSE_IDNUMBER", "course_shortname", "Course_Fullname",
			"COURSE_SUMMARY", "COURSE_TAGS", "COURSE_VISIBLE", "COURSE_THUMBNAIL",
			"COURSE_CATEGORYIDNUMBER", "COURSE_CATEGORYNAME", " EXTERNAL_NAME ", "EXTERNAL_INTRO",
			"EXTERNAL_MARKCOMPLETEEXTERNALLY",
		}
		m, missing := MappingFromHeaders(headers)
		assert.Empty(t, missing)
		assert.Equal(t, 1, m[HeaderExternalContent])
		assert.Equal(t, 2, m[HeaderCourseIDNumber])
		assert.Equal(t, 11, m[HeaderExternalName])
	})

	t.Run("reports missing headers", func(t *testing.T) {
		m, missing := MappingFromHeaders([]string{"COURSE_IDNUMBER", "COURSE_FULLNAME"})
		assert.Len(t, missing, 11)
		assert.Contains(t, missing, HeaderExternalContent)
		assert.Equal(t, -1, m[HeaderExternalContent])
	})
}

func TestNormalizeMapping(t *testing.T) {
	t.Run("keys ignore case and whitespace", func(t *testing.T) {
		m, err := NormalizeMapping(map[string]int{"course_idnumber": 2, " External_Content ": 5})
		require.NoError(t, err)
		assert.Equal(t, Mapping{HeaderCourseIDNumber: 2, HeaderExternalContent: 5}, m)

		row := []string{"x", "y", "C7", "z", "w", "body"}
		rec := MapRow(row, m)
		assert.Equal(t, "C7", rec.CourseIDNumber)
		assert.Equal(t, "body", rec.ExternalContent)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := NormalizeMapping(map[string]int{"course_id": 0})
		assert.ErrorIs(t, err, ErrUnknownHeader)
		assert.Contains(t, err.Error(), "course_id")
	})

	t.Run("empty", func(t *testing.T) {
		m, err := NormalizeMapping(nil)
		require.NoError(t, err)
		assert.Nil(t, m)
	})
}

func TestMapRow(t *testing.T) {
	row := []string{
		" C1 ", "S1", "F1", "Summary", "go|sql", "yes",
		"https://example.com/a b.png", "CAT", "Category",
		"E1", "I1", "X1", "0",
	}

	rec := MapRow(row, DefaultMapping())

	assert.Equal(t, "C1", rec.CourseIDNumber)
	assert.Equal(t, "S1", rec.CourseShortname)
	assert.Equal(t, "F1", rec.CourseFullname)
	assert.Equal(t, "Summary", rec.CourseSummary)
	assert.Equal(t, "go|sql", rec.CourseTags)
	assert.True(t, rec.CourseVisible)
	assert.Equal(t, "https://example.com/a%20b.png", rec.CourseThumbnail)
	assert.Equal(t, "CAT", rec.CategoryIDNumber)
	assert.Equal(t, "Category", rec.CategoryName)
	assert.Equal(t, "E1", rec.ExternalName)
	assert.Equal(t, "I1", rec.ExternalIntro)
	assert.Equal(t, "X1", rec.ExternalContent)
	assert.False(t, rec.ExternalMarkCompleteExternally)
}

func TestMapRow_MissingColumns(t *testing.T) {
	m := DefaultMapping()
	m[HeaderCourseSummary] = -1
	m[HeaderExternalContent] = 40

	rec := MapRow([]string{"C1", "S1", "F1", "summary"}, m)
	assert.Equal(t, "C1", rec.CourseIDNumber)
	assert.Empty(t, rec.CourseSummary)
	assert.Empty(t, rec.ExternalContent)
	assert.Empty(t, rec.ExternalName)
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "true", "TRUE", "yes", "on", " Y "} {
		assert.True(t, ParseBool(s), s)
	}
	for _, s := range []string{"", "0", "false", "no", "off", "maybe", "2"} {
		assert.False(t, ParseBool(s), s)
	}
}
