// Package thumbnails provides database operations for course overview images.
package thumbnails

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
)

// Repository handles all thumbnail database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new thumbnails repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCourseID returns the thumbnail attached to courseID, or nil.
func (r *Repository) FindByCourseID(courseID uint) (*entities.Thumbnail, error) {
	var thumbnail entities.Thumbnail
	err := r.db.Where("course_id = ?", courseID).First(&thumbnail).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &thumbnail, nil
}

// Save inserts thumbnail or updates it when it already has an ID.
func (r *Repository) Save(thumbnail *entities.Thumbnail) error {
	return r.db.Save(thumbnail).Error
}

// Delete removes the thumbnail record.
func (r *Repository) Delete(thumbnail *entities.Thumbnail) error {
	return r.db.Delete(&entities.Thumbnail{}, thumbnail.ID).Error
}
