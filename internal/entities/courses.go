package entities

import (
	"time"
)

type TextFormat string

const (
	TextFormatHTML  TextFormat = "html"
	TextFormatPlain TextFormat = "plain"
)

const (
	// CourseFormatSingleActivity is the only course format the importer creates.
	CourseFormatSingleActivity = "singleactivity"

	// ModuleExternalContent names the activity module backing every imported course.
	ModuleExternalContent = "externalcontent"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ParentID    uint      `gorm:"index" json:"parent_id"`
	Name        string    `gorm:"size:255" json:"name"`
	IDNumber    string    `gorm:"column:idnumber;size:100;uniqueIndex:idx_categories_idnumber,where:idnumber <> ''" json:"idnumber,omitempty"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Course struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	IDNumber         string     `gorm:"column:idnumber;uniqueIndex;size:100" json:"idnumber"`
	ShortName        string     `gorm:"index;size:255" json:"shortname"`
	FullName         string     `gorm:"size:254" json:"fullname"`
	Summary          string     `gorm:"type:text" json:"summary,omitempty"`
	SummaryFormat    TextFormat `gorm:"size:10;default:'html'" json:"summary_format"`
	Visible          bool       `json:"visible"`
	CategoryID       uint       `gorm:"index" json:"category_id"`
	Category         Category   `gorm:"foreignKey:CategoryID" json:"-"`
	Format           string     `gorm:"size:30" json:"format"`
	ActivityType     string     `gorm:"size:30" json:"activity_type"`
	EnableCompletion bool       `json:"enable_completion"`
	Tags             []Tag      `gorm:"many2many:course_tags;" json:"tags,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TagNames returns the names of the course tags in stored order.
func (c Course) TagNames() []string {
	names := make([]string, 0, len(c.Tags))
	for _, tag := range c.Tags {
		names = append(names, tag.Name)
	}
	return names
}

type Activity struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	CourseID             uint       `gorm:"index" json:"course_id"`
	Name                 string     `gorm:"size:255" json:"name"`
	Intro                string     `gorm:"type:text" json:"intro"`
	IntroFormat          TextFormat `gorm:"size:10;default:'html'" json:"intro_format"`
	Content              string     `gorm:"type:text" json:"content"`
	ContentFormat        TextFormat `gorm:"size:10;default:'html'" json:"content_format"`
	CompletionExternally bool       `json:"completion_externally"`
	PrintHeading         bool       `json:"print_heading"`
	PrintIntro           bool       `json:"print_intro"`
	PrintLastModified    bool       `json:"print_last_modified"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

func (Activity) TableName() string {
	return "external_contents"
}

// CourseModule places an activity instance inside a course.
type CourseModule struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"index" json:"course_id"`
	Module    string    `gorm:"size:30;index" json:"module"`
	Instance  uint      `gorm:"index" json:"instance"`
	IDNumber  string    `gorm:"column:idnumber;index;size:100" json:"idnumber"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
