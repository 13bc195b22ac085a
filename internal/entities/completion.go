package entities

import "time"

type CriteriaType string

const (
	CriteriaTypeActivity CriteriaType = "activity"
	CriteriaTypeCourse   CriteriaType = "course"
	CriteriaTypeRole     CriteriaType = "role"
)

type AggregationMethod string

const (
	AggregationMethodAll AggregationMethod = "all"
	AggregationMethodAny AggregationMethod = "any"
)

// CompletionCriteriaTypes lists the dimensions that get an aggregation row
// whenever an activity criterion is registered.
var CompletionCriteriaTypes = []CriteriaType{
	CriteriaTypeActivity,
	CriteriaTypeCourse,
	CriteriaTypeRole,
}

type CompletionCriterion struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	CourseID     uint         `gorm:"uniqueIndex:idx_completion_criteria_course_module" json:"course_id"`
	ModuleID     uint         `gorm:"uniqueIndex:idx_completion_criteria_course_module" json:"module_id"`
	CriteriaType CriteriaType `gorm:"size:20" json:"criteria_type"`
	Module       string       `gorm:"size:30" json:"module"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (CompletionCriterion) TableName() string {
	return "course_completion_criteria"
}

type CompletionAggregation struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	CourseID     uint              `gorm:"uniqueIndex:idx_completion_aggr_course_type" json:"course_id"`
	CriteriaType CriteriaType      `gorm:"size:20;uniqueIndex:idx_completion_aggr_course_type" json:"criteria_type"`
	Method       AggregationMethod `gorm:"size:10" json:"method"`
	CreatedAt    time.Time         `json:"created_at"`
}

func (CompletionAggregation) TableName() string {
	return "course_completion_aggr_methd"
}
