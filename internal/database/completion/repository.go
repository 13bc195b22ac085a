// Package completion provides database operations for course completion
// criteria and their aggregation methods.
package completion

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/courseimport/internal/entities"
)

// Repository handles all completion database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new completion repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// EnsureActivityCriterion registers moduleID as an activity completion
// criterion of courseID and makes sure every criteria dimension aggregates
// with method ALL. It reports whether the criterion was newly created.
// Calling it again for the same pair changes nothing.
func (r *Repository) EnsureActivityCriterion(courseID, moduleID uint) (bool, error) {
	created := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var criterion entities.CompletionCriterion
		err := tx.Where("course_id = ? AND module_id = ?", courseID, moduleID).First(&criterion).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			criterion = entities.CompletionCriterion{
				CourseID:     courseID,
				ModuleID:     moduleID,
				CriteriaType: entities.CriteriaTypeActivity,
				Module:       entities.ModuleExternalContent,
			}
			if err := tx.Create(&criterion).Error; err != nil {
				return err
			}
			created = true
		case err != nil:
			return err
		}

		for _, criteriaType := range entities.CompletionCriteriaTypes {
			var aggregation entities.CompletionAggregation
			err := tx.Where("course_id = ? AND criteria_type = ?", courseID, criteriaType).First(&aggregation).Error
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				aggregation = entities.CompletionAggregation{
					CourseID:     courseID,
					CriteriaType: criteriaType,
					Method:       entities.AggregationMethodAll,
				}
				if err := tx.Create(&aggregation).Error; err != nil {
					return err
				}
			case err != nil:
				return err
			case aggregation.Method != entities.AggregationMethodAll:
				if err := tx.Model(&aggregation).Update("method", entities.AggregationMethodAll).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	return created, err
}

// GetCriteria returns the completion criteria of courseID.
func (r *Repository) GetCriteria(courseID uint) ([]entities.CompletionCriterion, error) {
	var criteria []entities.CompletionCriterion
	err := r.db.Where("course_id = ?", courseID).Order("id").Find(&criteria).Error
	return criteria, err
}

// GetAggregations returns the aggregation methods of courseID.
func (r *Repository) GetAggregations(courseID uint) ([]entities.CompletionAggregation, error) {
	var aggregations []entities.CompletionAggregation
	err := r.db.Where("course_id = ?", courseID).Order("id").Find(&aggregations).Error
	return aggregations, err
}
