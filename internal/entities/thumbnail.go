package entities

import "time"

// Thumbnail is the overview image attached to a course. Source keeps the
// URL it was downloaded from so repeated imports can skip the fetch.
type Thumbnail struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CourseID  uint      `gorm:"uniqueIndex" json:"course_id"`
	Filename  string    `gorm:"size:255" json:"filename"`
	Path      string    `gorm:"size:1024" json:"-"`
	Source    string    `gorm:"size:2048" json:"source"`
	MimeType  string    `gorm:"size:100" json:"mime_type"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Thumbnail) TableName() string {
	return "course_thumbnails"
}
