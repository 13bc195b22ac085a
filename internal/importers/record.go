package importers

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned by ImportRecord.Validate.
var ErrInvalidRecord = errors.New("invalid import record")

// ImportRecord is one CSV row normalized for reconciliation.
type ImportRecord struct {
	CourseIDNumber   string `json:"course_idnumber" validate:"required,max=100"`
	CourseShortname  string `json:"course_shortname" validate:"required,max=255"`
	CourseFullname   string `json:"course_fullname" validate:"required,max=254"`
	CourseSummary    string `json:"course_summary"`
	CourseTags       string `json:"course_tags"`
	CourseVisible    bool   `json:"course_visible"`
	CourseThumbnail  string `json:"course_thumbnail,omitempty"`
	CategoryIDNumber string `json:"category_idnumber,omitempty" validate:"max=100"`
	CategoryName     string `json:"category_name,omitempty" validate:"max=255"`
	ParentCategoryID uint   `json:"parent_category_id,omitempty"`

	ExternalName                   string `json:"external_name" validate:"required,max=255"`
	ExternalIntro                  string `json:"external_intro" validate:"required"`
	ExternalContent                string `json:"external_content" validate:"required"`
	ExternalMarkCompleteExternally bool   `json:"external_markcompleteexternally"`

	DownloadThumbnail bool `json:"download_thumbnail"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks that every required field is present. The returned error
// wraps ErrInvalidRecord and names the offending fields.
func (r ImportRecord) Validate() error {
	err := recordValidator().Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fieldHeader(fe.Field())+" "+fe.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidRecord, strings.Join(problems, ", "))
}

var recordFieldHeaders = map[string]string{
	"CourseIDNumber":   HeaderCourseIDNumber,
	"CourseShortname":  HeaderCourseShortname,
	"CourseFullname":   HeaderCourseFullname,
	"CategoryIDNumber": HeaderCategoryIDNumber,
	"CategoryName":     HeaderCategoryName,
	"ExternalName":     HeaderExternalName,
	"ExternalIntro":    HeaderExternalIntro,
	"ExternalContent":  HeaderExternalContent,
}

func fieldHeader(field string) string {
	if h, ok := recordFieldHeaders[field]; ok {
		return h
	}
	return field
}
