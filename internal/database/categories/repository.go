// Package categories provides database operations for the course category tree.
package categories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
)

// Repository handles all category database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new categories repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID returns the category with id, or nil when none exists.
func (r *Repository) FindByID(id uint) (*entities.Category, error) {
	var category entities.Category
	err := r.db.First(&category, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByIDNumber returns the category carrying idnumber, or nil when none exists.
func (r *Repository) FindByIDNumber(idnumber string) (*entities.Category, error) {
	if idnumber == "" {
		return nil, nil
	}
	var category entities.Category
	err := r.db.Where("idnumber = ?", idnumber).First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindByName returns the first category named name under parentID, or nil.
func (r *Repository) FindByName(parentID uint, name string) (*entities.Category, error) {
	var category entities.Category
	err := r.db.Where("parent_id = ? AND name = ?", parentID, name).Order("id").First(&category).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// GetDefault returns the category with the lowest id.
func (r *Repository) GetDefault() (*entities.Category, error) {
	var category entities.Category
	if err := r.db.Order("id").First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Create inserts a new category.
func (r *Repository) Create(category *entities.Category) error {
	return r.db.Create(category).Error
}

// GetChildren returns the direct children of parentID ordered by name.
func (r *Repository) GetChildren(parentID uint) ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.Where("parent_id = ?", parentID).Order("name").Find(&categories).Error
	return categories, err
}
