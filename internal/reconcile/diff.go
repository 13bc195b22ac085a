package reconcile

import (
	"html"
	"strings"

	"github.com/mrlokans/courseimport/internal/entities"
)

// Field names reported by the diff functions.
const (
	FieldFullName   = "fullname"
	FieldShortName  = "shortname"
	FieldIDNumber   = "idnumber"
	FieldSummary    = "summary"
	FieldVisible    = "visible"
	FieldTags       = "tags"
	FieldCategory   = "category"
	FieldName       = "name"
	FieldIntro      = "intro"
	FieldContent    = "content"
	FieldCompletion = "completion_externally"
)

// Formatter converts rich text to the HTML form it is stored in.
type Formatter interface {
	Format(text string) string
}

// DiffCourse compares a stored course with a candidate built from an
// import record. Summary is compared against the formatted candidate and
// tags as case-insensitive sets. The merged course is existing with every
// changed field taken from the candidate.
func DiffCourse(existing, candidate entities.Course, f Formatter) (entities.Course, []string) {
	merged := existing
	var changed []string

	if existing.FullName != candidate.FullName {
		merged.FullName = candidate.FullName
		changed = append(changed, FieldFullName)
	}
	if existing.ShortName != candidate.ShortName {
		merged.ShortName = candidate.ShortName
		changed = append(changed, FieldShortName)
	}
	if existing.IDNumber != candidate.IDNumber {
		merged.IDNumber = candidate.IDNumber
		changed = append(changed, FieldIDNumber)
	}
	if summary := f.Format(candidate.Summary); existing.Summary != summary {
		merged.Summary = summary
		merged.SummaryFormat = entities.TextFormatHTML
		changed = append(changed, FieldSummary)
	}
	if existing.Visible != candidate.Visible {
		merged.Visible = candidate.Visible
		changed = append(changed, FieldVisible)
	}
	if !sameTags(existing.TagNames(), candidate.TagNames()) {
		merged.Tags = candidate.Tags
		changed = append(changed, FieldTags)
	}
	if existing.CategoryID != candidate.CategoryID {
		merged.CategoryID = candidate.CategoryID
		changed = append(changed, FieldCategory)
	}

	return merged, changed
}

// DiffActivity compares a stored activity with a candidate. Intro and
// content are compared against their formatted candidate values.
func DiffActivity(existing, candidate entities.Activity, f Formatter) (entities.Activity, []string) {
	merged := existing
	var changed []string

	if existing.Name != candidate.Name {
		merged.Name = candidate.Name
		changed = append(changed, FieldName)
	}
	if intro := f.Format(candidate.Intro); existing.Intro != intro {
		merged.Intro = intro
		merged.IntroFormat = entities.TextFormatHTML
		changed = append(changed, FieldIntro)
	}
	if content := f.Format(candidate.Content); existing.Content != content {
		merged.Content = content
		merged.ContentFormat = entities.TextFormatHTML
		changed = append(changed, FieldContent)
	}
	if existing.CompletionExternally != candidate.CompletionExternally {
		merged.CompletionExternally = candidate.CompletionExternally
		changed = append(changed, FieldCompletion)
	}

	return merged, changed
}

// sameTags reports whether both lists hold the same tags, ignoring order
// and case. Both sides are entity-decoded so a tag written as R&amp;D
// matches itself on the next import.
func sameTags(stored, incoming []string) bool {
	a := tagSet(stored)
	b := tagSet(incoming)
	if len(a) != len(b) {
		return false
	}
	for name := range a {
		if !b[name] {
			return false
		}
	}
	return true
}

func tagSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		name = html.UnescapeString(name)
		set[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return set
}
