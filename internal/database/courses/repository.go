// Package courses provides database operations for imported courses.
//
// # Usage
//
//	repo := courses.NewRepository(db)
//	course, err := repo.FindByIDNumber("C1")
package courses

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/database/tags"
	"github.com/mrlokans/courseimport/internal/entities"
)

// Repository handles all course database operations.
type Repository struct {
	db   *gorm.DB
	tags *tags.Repository
}

// NewRepository creates a new courses repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, tags: tags.NewRepository(db)}
}

// FindByIDNumber returns the course with the external identifier and its
// tags, or nil when no course carries it.
func (r *Repository) FindByIDNumber(idnumber string) (*entities.Course, error) {
	var course entities.Course
	err := r.db.Preload("Tags").Where("idnumber = ?", idnumber).First(&course).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// GetByID retrieves a course by ID with its tags.
func (r *Repository) GetByID(id uint) (*entities.Course, error) {
	var course entities.Course
	if err := r.db.Preload("Tags").First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// Create inserts course. Tags are matched to existing tags by name and
// created when missing.
func (r *Repository) Create(course *entities.Course) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := r.tags.WithTx(tx).GetOrCreateTags(course.TagNames())
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}
		course.Tags = resolved
		return tx.Omit("Category").Create(course).Error
	})
}

// Update saves every course field and replaces its tag set.
func (r *Repository) Update(course *entities.Course) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		resolved, err := r.tags.WithTx(tx).GetOrCreateTags(course.TagNames())
		if err != nil {
			return fmt.Errorf("resolve tags: %w", err)
		}
		if err := tx.Omit("Tags", "Category").Save(course).Error; err != nil {
			return err
		}
		association := tx.Model(course).Association("Tags")
		if len(resolved) == 0 {
			err = association.Clear()
		} else {
			err = association.Replace(resolved)
		}
		if err != nil {
			return fmt.Errorf("replace tags: %w", err)
		}
		course.Tags = resolved
		return nil
	})
}

// GetCoursesInCategory returns the courses filed under categoryID.
func (r *Repository) GetCoursesInCategory(categoryID uint) ([]entities.Course, error) {
	var courses []entities.Course
	err := r.db.Preload("Tags").Where("category_id = ?", categoryID).Order("id").Find(&courses).Error
	return courses, err
}

// Count returns the number of stored courses.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Course{}).Count(&count).Error
	return count, err
}
