// Package activities provides database operations for external content
// activities and the course modules that place them in a course.
package activities

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
)

// Repository handles all activity database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new activities repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByCourse returns the external content activity of courseID whose
// module carries idnumber. Both results are nil when there is none.
func (r *Repository) FindByCourse(courseID uint, idnumber string) (*entities.Activity, *entities.CourseModule, error) {
	var module entities.CourseModule
	err := r.db.Where("course_id = ? AND module = ? AND idnumber = ?",
		courseID, entities.ModuleExternalContent, idnumber).
		Order("id").First(&module).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var activity entities.Activity
	err = r.db.First(&activity, module.Instance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return &activity, &module, nil
}

// Create inserts activity and a course module linking it to its course
// under idnumber.
func (r *Repository) Create(activity *entities.Activity, idnumber string) (*entities.CourseModule, error) {
	var module entities.CourseModule
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(activity).Error; err != nil {
			return err
		}
		module = entities.CourseModule{
			CourseID: activity.CourseID,
			Module:   entities.ModuleExternalContent,
			Instance: activity.ID,
			IDNumber: idnumber,
		}
		return tx.Create(&module).Error
	})
	if err != nil {
		return nil, err
	}
	return &module, nil
}

// Update saves activity and relinks its module to idnumber.
func (r *Repository) Update(activity *entities.Activity, module *entities.CourseModule, idnumber string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(activity).Error; err != nil {
			return err
		}
		if module == nil || module.IDNumber == idnumber {
			return nil
		}
		module.IDNumber = idnumber
		return tx.Model(module).Update("idnumber", idnumber).Error
	})
}

// GetModulesForCourse returns every module placed in courseID.
func (r *Repository) GetModulesForCourse(courseID uint) ([]entities.CourseModule, error) {
	var modules []entities.CourseModule
	err := r.db.Where("course_id = ?", courseID).Order("id").Find(&modules).Error
	return modules, err
}
