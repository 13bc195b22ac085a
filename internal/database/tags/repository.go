// Package tags provides database operations for course tags.
//
// # Usage
//
//	repo := tags.NewRepository(db)
//	tag, err := repo.GetOrCreateTag("golang")
package tags

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
)

// Repository handles all tag database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new tags repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// CreateTag creates a new tag.
func (r *Repository) CreateTag(name string) (*entities.Tag, error) {
	tag := &entities.Tag{Name: name}
	if err := r.db.Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

// GetOrCreateTag retrieves or creates a tag (case-insensitive).
func (r *Repository) GetOrCreateTag(name string) (*entities.Tag, error) {
	var tag entities.Tag
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.CreateTag(name)
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// GetOrCreateTags resolves every name to a tag, keeping the input order.
func (r *Repository) GetOrCreateTags(names []string) ([]entities.Tag, error) {
	tags := make([]entities.Tag, 0, len(names))
	for _, name := range names {
		tag, err := r.GetOrCreateTag(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tag)
	}
	return tags, nil
}

// GetAllTags retrieves all tags ordered by name.
func (r *Repository) GetAllTags() ([]entities.Tag, error) {
	var tags []entities.Tag
	err := r.db.Order("name").Find(&tags).Error
	return tags, err
}

// DeleteOrphanTags removes tags no course refers to.
func (r *Repository) DeleteOrphanTags() (int64, error) {
	result := r.db.Exec(`DELETE FROM tags WHERE id NOT IN (SELECT tag_id FROM course_tags)`)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
