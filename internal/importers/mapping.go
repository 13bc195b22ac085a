package importers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/courseimport/internal/utils"
)

// ErrUnknownHeader is returned for a mapping key that names no required header.
var ErrUnknownHeader = errors.New("unknown header")

// Required CSV headers, in default column order.
const (
	HeaderCourseIDNumber                 = "COURSE_IDNUMBER"
	HeaderCourseShortname                = "COURSE_SHORTNAME"
	HeaderCourseFullname                 = "COURSE_FULLNAME"
	HeaderCourseSummary                  = "COURSE_SUMMARY"
	HeaderCourseTags                     = "COURSE_TAGS"
	HeaderCourseVisible                  = "COURSE_VISIBLE"
	HeaderCourseThumbnail                = "COURSE_THUMBNAIL"
	HeaderCategoryIDNumber               = "COURSE_CATEGORYIDNUMBER"
	HeaderCategoryName                   = "COURSE_CATEGORYNAME"
	HeaderExternalName                   = "EXTERNAL_NAME"
	HeaderExternalIntro                  = "EXTERNAL_INTRO"
	HeaderExternalContent                = "EXTERNAL_CONTENT"
	HeaderExternalMarkCompleteExternally = "EXTERNAL_MARKCOMPLETEEXTERNALLY"
)

// RequiredHeaders lists every column an import file must provide.
var RequiredHeaders = []string{
	HeaderCourseIDNumber,
	HeaderCourseShortname,
	HeaderCourseFullname,
	HeaderCourseSummary,
	HeaderCourseTags,
	HeaderCourseVisible,
	HeaderCourseThumbnail,
	HeaderCategoryIDNumber,
	HeaderCategoryName,
	HeaderExternalName,
	HeaderExternalIntro,
	HeaderExternalContent,
	HeaderExternalMarkCompleteExternally,
}

// Mapping assigns a column index to each required header. A header that is
// absent or mapped to a negative index reads as an empty string.
type Mapping map[string]int

// DefaultMapping maps the required headers to columns in their default order.
func DefaultMapping() Mapping {
	m := make(Mapping, len(RequiredHeaders))
	for i, h := range RequiredHeaders {
		m[h] = i
	}
	return m
}

// NormalizeMapping builds a Mapping from caller-supplied header names.
// Names are matched ignoring case and surrounding whitespace; a name that
// is not a required header is rejected.
func NormalizeMapping(raw map[string]int) (Mapping, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	known := make(map[string]bool, len(RequiredHeaders))
	for _, h := range RequiredHeaders {
		known[h] = true
	}

	m := make(Mapping, len(raw))
	for name, i := range raw {
		key := strings.ToUpper(strings.TrimSpace(name))
		if !known[key] {
			return nil, fmt.Errorf("%w: %q", ErrUnknownHeader, name)
		}
		m[key] = i
	}
	return m, nil
}

// MappingFromHeaders locates each required header in a file's header row,
// ignoring case and surrounding whitespace. It also returns the required
// headers that were not found.
func MappingFromHeaders(headers []string) (Mapping, []string) {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := strings.ToUpper(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	m := make(Mapping, len(RequiredHeaders))
	var missing []string
	for _, h := range RequiredHeaders {
		i, ok := index[h]
		if !ok {
			missing = append(missing, h)
			i = -1
		}
		m[h] = i
	}
	return m, missing
}

func (m Mapping) value(row []string, header string) string {
	i, ok := m[header]
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// MapRow builds an ImportRecord from raw column values. The thumbnail URL
// is sanitized; booleans go through ParseBool.
func MapRow(row []string, m Mapping) ImportRecord {
	return ImportRecord{
		CourseIDNumber:   m.value(row, HeaderCourseIDNumber),
		CourseShortname:  m.value(row, HeaderCourseShortname),
		CourseFullname:   m.value(row, HeaderCourseFullname),
		CourseSummary:    m.value(row, HeaderCourseSummary),
		CourseTags:       m.value(row, HeaderCourseTags),
		CourseVisible:    ParseBool(m.value(row, HeaderCourseVisible)),
		CourseThumbnail:  utils.SanitizeURL(m.value(row, HeaderCourseThumbnail)),
		CategoryIDNumber: m.value(row, HeaderCategoryIDNumber),
		CategoryName:     m.value(row, HeaderCategoryName),

		ExternalName:                   m.value(row, HeaderExternalName),
		ExternalIntro:                  m.value(row, HeaderExternalIntro),
		ExternalContent:                m.value(row, HeaderExternalContent),
		ExternalMarkCompleteExternally: ParseBool(m.value(row, HeaderExternalMarkCompleteExternally)),
	}
}

// ParseBool accepts the usual spellings of true and false. Anything else,
// including the empty string, is false.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on", "y", "t":
		return true
	}
	return false
}
