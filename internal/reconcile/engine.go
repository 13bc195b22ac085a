// Package reconcile decides, row by row, whether an imported course and its
// external content activity are created, updated or left alone, and
// persists the result.
package reconcile

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/importers"
	"github.com/mrlokans/courseimport/internal/thumbnails"
	"github.com/mrlokans/courseimport/internal/tracker"
	"github.com/mrlokans/courseimport/internal/utils"
)

const (
	MsgCourseCreated    = "Course created."
	MsgCourseUpdated    = "Course updated."
	MsgCourseNotUpdated = "Course not updated."
	MsgActivityCreated  = "External content created."
	MsgActivityUpdated  = "External content updated."
)

// CourseStore persists courses keyed by their idnumber. FindByIDNumber
// returns nil without error when no course matches.
type CourseStore interface {
	FindByIDNumber(idnumber string) (*entities.Course, error)
	Create(course *entities.Course) error
	Update(course *entities.Course) error
}

// ActivityStore persists the external content activity of a course together
// with the course module that places it.
type ActivityStore interface {
	FindByCourse(courseID uint, idnumber string) (*entities.Activity, *entities.CourseModule, error)
	Create(activity *entities.Activity, idnumber string) (*entities.CourseModule, error)
	Update(activity *entities.Activity, module *entities.CourseModule, idnumber string) error
}

// CompletionStore keeps the activity completion criterion of a course. It
// reports whether a criterion was added.
type CompletionStore interface {
	EnsureActivityCriterion(courseID, moduleID uint) (bool, error)
}

// CategoryResolver maps a record's category idnumber to a category id,
// falling back to parentID.
type CategoryResolver interface {
	ResolveOrCreate(parentID uint, name, idnumber string) (uint, error)
}

// ThumbnailFetcher downloads a course overview image.
type ThumbnailFetcher interface {
	Fetch(ctx context.Context, courseID uint, url string) thumbnails.Response
}

// ActivityDefaults are the presentation flags given to new activities.
type ActivityDefaults struct {
	PrintHeading      bool
	PrintIntro        bool
	PrintLastModified bool
}

// Config holds the stores and collaborators an Engine works with.
type Config struct {
	Courses    CourseStore
	Activities ActivityStore
	Completion CompletionStore
	Categories CategoryResolver
	Formatter  Formatter
	// Thumbnails may be nil, in which case thumbnail URLs are ignored.
	Thumbnails ThumbnailFetcher
	Defaults   ActivityDefaults
	Logger     logrus.FieldLogger
}

// Engine reconciles import records with stored courses.
type Engine struct {
	courses    CourseStore
	activities ActivityStore
	completion CompletionStore
	categories CategoryResolver
	formatter  Formatter
	thumbnails ThumbnailFetcher
	defaults   ActivityDefaults
	logger     logrus.FieldLogger
}

func NewEngine(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		courses:    cfg.Courses,
		activities: cfg.Activities,
		completion: cfg.Completion,
		categories: cfg.Categories,
		formatter:  cfg.Formatter,
		thumbnails: cfg.Thumbnails,
		defaults:   cfg.Defaults,
		logger:     logger,
	}
}

// Process reconciles one record. The returned error is a persistence
// fault; the outcome then lists the actions completed before it.
func (e *Engine) Process(ctx context.Context, row int, record importers.ImportRecord) (tracker.Outcome, error) {
	outcome := tracker.Outcome{Row: row, CourseFullname: record.CourseFullname}
	log := e.logger.WithFields(logrus.Fields{"row": row, "idnumber": record.CourseIDNumber})

	categoryID, err := e.categories.ResolveOrCreate(record.ParentCategoryID, record.CategoryName, record.CategoryIDNumber)
	if err != nil {
		return outcome, fmt.Errorf("resolve category: %w", err)
	}

	candidate := e.candidateCourse(record, categoryID)

	existing, err := e.courses.FindByIDNumber(record.CourseIDNumber)
	if err != nil {
		return outcome, fmt.Errorf("find course %q: %w", record.CourseIDNumber, err)
	}

	var course *entities.Course
	if existing == nil {
		candidate.Summary = e.formatter.Format(candidate.Summary)
		if err := e.courses.Create(&candidate); err != nil {
			return outcome, fmt.Errorf("create course %q: %w", record.CourseIDNumber, err)
		}
		course = &candidate
		outcome.Actions = append(outcome.Actions, tracker.ActionCourseCreated)
		outcome.Messages = append(outcome.Messages, MsgCourseCreated)
		log.WithField("course_id", course.ID).Info("Course created")
	} else {
		merged, changed := DiffCourse(*existing, candidate, e.formatter)
		if len(changed) > 0 {
			if err := e.courses.Update(&merged); err != nil {
				return outcome, fmt.Errorf("update course %q: %w", record.CourseIDNumber, err)
			}
			outcome.Actions = append(outcome.Actions, tracker.ActionCourseUpdated)
			outcome.Messages = append(outcome.Messages, MsgCourseUpdated)
			log.WithFields(logrus.Fields{"course_id": merged.ID, "changed": changed}).Info("Course updated")
		} else {
			outcome.Messages = append(outcome.Messages, MsgCourseNotUpdated)
		}
		course = &merged
	}
	outcome.CourseID = course.ID
	outcome.CourseFullname = course.FullName

	if record.CourseThumbnail != "" && record.DownloadThumbnail && e.thumbnails != nil {
		resp := e.thumbnails.Fetch(ctx, course.ID, record.CourseThumbnail)
		outcome.Messages = append(outcome.Messages, resp.Message)
	}

	activityID, action, err := e.reconcileActivity(course, record)
	if err != nil {
		return outcome, err
	}
	outcome.ActivityID = activityID
	switch action {
	case tracker.ActionActivityCreated:
		outcome.Actions = append(outcome.Actions, action)
		outcome.Messages = append(outcome.Messages, MsgActivityCreated)
	case tracker.ActionActivityUpdated:
		outcome.Actions = append(outcome.Actions, action)
		outcome.Messages = append(outcome.Messages, MsgActivityUpdated)
	}

	if len(outcome.Actions) == 0 {
		outcome.Actions = []tracker.Action{tracker.ActionUnchanged}
	}
	outcome.Success = true
	return outcome, nil
}

// reconcileActivity creates or updates the activity of course. An empty
// action means the stored activity already matches the record.
func (e *Engine) reconcileActivity(course *entities.Course, record importers.ImportRecord) (uint, tracker.Action, error) {
	candidate := entities.Activity{
		CourseID:             course.ID,
		Name:                 record.ExternalName,
		Intro:                record.ExternalIntro,
		IntroFormat:          entities.TextFormatHTML,
		Content:              record.ExternalContent,
		ContentFormat:        entities.TextFormatHTML,
		CompletionExternally: record.ExternalMarkCompleteExternally,
		PrintHeading:         e.defaults.PrintHeading,
		PrintIntro:           e.defaults.PrintIntro,
		PrintLastModified:    e.defaults.PrintLastModified,
	}

	existing, module, err := e.activities.FindByCourse(course.ID, course.IDNumber)
	if err != nil {
		return 0, "", fmt.Errorf("find activity for %q: %w", course.IDNumber, err)
	}

	if existing == nil {
		candidate.Intro = e.formatter.Format(candidate.Intro)
		candidate.Content = e.formatter.Format(candidate.Content)
		module, err := e.activities.Create(&candidate, course.IDNumber)
		if err != nil {
			return 0, "", fmt.Errorf("create activity for %q: %w", course.IDNumber, err)
		}
		if _, err := e.completion.EnsureActivityCriterion(course.ID, module.ID); err != nil {
			return candidate.ID, tracker.ActionActivityCreated, fmt.Errorf("create completion criterion for %q: %w", course.IDNumber, err)
		}
		return candidate.ID, tracker.ActionActivityCreated, nil
	}

	merged, changed := DiffActivity(*existing, candidate, e.formatter)
	if len(changed) == 0 {
		return existing.ID, "", nil
	}
	if err := e.activities.Update(&merged, module, course.IDNumber); err != nil {
		return existing.ID, "", fmt.Errorf("update activity for %q: %w", course.IDNumber, err)
	}
	return merged.ID, tracker.ActionActivityUpdated, nil
}

// candidateCourse builds the course an import record describes. Summary
// is left unformatted.
func (e *Engine) candidateCourse(record importers.ImportRecord, categoryID uint) entities.Course {
	course := entities.Course{
		IDNumber:         record.CourseIDNumber,
		ShortName:        record.CourseShortname,
		FullName:         record.CourseFullname,
		Summary:          record.CourseSummary,
		SummaryFormat:    entities.TextFormatHTML,
		Visible:          record.CourseVisible,
		CategoryID:       categoryID,
		Format:           entities.CourseFormatSingleActivity,
		ActivityType:     entities.ModuleExternalContent,
		EnableCompletion: true,
	}
	for _, name := range utils.SplitTags(record.CourseTags) {
		course.Tags = append(course.Tags, entities.Tag{Name: name})
	}
	return course
}
