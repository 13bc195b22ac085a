package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/courseimport/internal/entities"
	"github.com/mrlokans/courseimport/internal/richtext"
)

func storedCourse() entities.Course {
	return entities.Course{
		ID:         10,
		IDNumber:   "C1",
		ShortName:  "S1",
		FullName:   "F1",
		Summary:    "<p>Intro to Go</p>",
		Visible:    true,
		CategoryID: 1,
		Tags:       []entities.Tag{{ID: 1, Name: "go"}, {ID: 2, Name: "R&amp;D"}},
	}
}

func TestDiffCourse(t *testing.T) {
	f := richtext.NewFormatter()

	tests := []struct {
		name    string
		mutate  func(c *entities.Course)
		changed []string
	}{
		{name: "identical", mutate: func(c *entities.Course) {}},
		{name: "plain summary matches formatted", mutate: func(c *entities.Course) { c.Summary = "Intro to Go" }},
		{name: "tags in other order and case", mutate: func(c *entities.Course) {
			c.Tags = []entities.Tag{{Name: "r&d"}, {Name: "Go"}}
		}},
		{name: "fullname", mutate: func(c *entities.Course) { c.FullName = "F2" }, changed: []string{FieldFullName}},
		{name: "shortname", mutate: func(c *entities.Course) { c.ShortName = "S2" }, changed: []string{FieldShortName}},
		{name: "summary", mutate: func(c *entities.Course) { c.Summary = "Advanced Go" }, changed: []string{FieldSummary}},
		{name: "visible", mutate: func(c *entities.Course) { c.Visible = false }, changed: []string{FieldVisible}},
		{name: "encoded and decoded tag match", mutate: func(c *entities.Course) {
			c.Tags = []entities.Tag{{Name: "go"}, {Name: "R&D"}}
		}},
		{name: "tag removed", mutate: func(c *entities.Course) { c.Tags = c.Tags[:1] }, changed: []string{FieldTags}},
		{name: "category", mutate: func(c *entities.Course) { c.CategoryID = 2 }, changed: []string{FieldCategory}},
		{name: "several", mutate: func(c *entities.Course) {
			c.FullName = "F2"
			c.CategoryID = 3
		}, changed: []string{FieldFullName, FieldCategory}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			existing := storedCourse()
			candidate := storedCourse()
			candidate.ID = 0
			tt.mutate(&candidate)

			merged, changed := DiffCourse(existing, candidate, f)
			assert.Equal(t, tt.changed, changed)
			if len(tt.changed) == 0 {
				assert.Equal(t, existing, merged)
			}
			assert.Equal(t, existing.ID, merged.ID)
		})
	}
}

func TestDiffCourse_MergeKeepsUnchangedFields(t *testing.T) {
	existing := storedCourse()
	candidate := storedCourse()
	candidate.FullName = "Renamed"

	merged, changed := DiffCourse(existing, candidate, richtext.NewFormatter())
	assert.Equal(t, []string{FieldFullName}, changed)

	want := existing
	want.FullName = "Renamed"
	assert.Equal(t, want, merged)
}

func TestDiffCourse_SummaryStoredFormatted(t *testing.T) {
	existing := storedCourse()
	candidate := storedCourse()
	candidate.Summary = "Line one\nLine two"

	merged, _ := DiffCourse(existing, candidate, richtext.NewFormatter())
	assert.Equal(t, "<p>Line one<br>Line two</p>", merged.Summary)
}

func TestDiffActivity(t *testing.T) {
	f := richtext.NewFormatter()
	existing := entities.Activity{
		ID:      4,
		Name:    "E1",
		Intro:   "<p>I1</p>",
		Content: "<p>X1</p>",
	}

	tests := []struct {
		name    string
		mutate  func(a *entities.Activity)
		changed []string
	}{
		{name: "plain text matches stored html", mutate: func(a *entities.Activity) {
			a.Intro = "I1"
			a.Content = "X1"
		}},
		{name: "name", mutate: func(a *entities.Activity) { a.Name = "E2" }, changed: []string{FieldName}},
		{name: "intro", mutate: func(a *entities.Activity) { a.Intro = "I2" }, changed: []string{FieldIntro}},
		{name: "content", mutate: func(a *entities.Activity) { a.Content = "<b>X1</b>" }, changed: []string{FieldContent}},
		{name: "completion", mutate: func(a *entities.Activity) { a.CompletionExternally = true }, changed: []string{FieldCompletion}},
		{name: "presentation flags ignored", mutate: func(a *entities.Activity) { a.PrintHeading = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := existing
			candidate.ID = 0
			tt.mutate(&candidate)

			merged, changed := DiffActivity(existing, candidate, f)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, existing.ID, merged.ID)
			assert.False(t, merged.PrintHeading)
		})
	}
}
