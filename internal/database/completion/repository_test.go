package completion

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/courseimport/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, *gorm.DB, func()) {
	dbPath := "./test_completion_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.CompletionCriterion{}, &entities.CompletionAggregation{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db), db, cleanup
}

func TestRepository_EnsureActivityCriterion(t *testing.T) {
	repo, _, cleanup := setupTestDB(t)
	defer cleanup()

	created, err := repo.EnsureActivityCriterion(3, 11)
	require.NoError(t, err)
	assert.True(t, created)

	criteria, err := repo.GetCriteria(3)
	require.NoError(t, err)
	require.Len(t, criteria, 1)
	assert.Equal(t, uint(11), criteria[0].ModuleID)
	assert.Equal(t, entities.CriteriaTypeActivity, criteria[0].CriteriaType)

	aggregations, err := repo.GetAggregations(3)
	require.NoError(t, err)
	require.Len(t, aggregations, 3)
	for _, aggregation := range aggregations {
		assert.Equal(t, entities.AggregationMethodAll, aggregation.Method)
	}

	t.Run("second call is a no-op", func(t *testing.T) {
		created, err := repo.EnsureActivityCriterion(3, 11)
		require.NoError(t, err)
		assert.False(t, created)

		criteria, err := repo.GetCriteria(3)
		require.NoError(t, err)
		assert.Len(t, criteria, 1)

		aggregations, err := repo.GetAggregations(3)
		require.NoError(t, err)
		assert.Len(t, aggregations, 3)
	})
}

func TestRepository_EnsureActivityCriterion_ResetsMethod(t *testing.T) {
	repo, db, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, db.Create(&entities.CompletionAggregation{
		CourseID: 5, CriteriaType: entities.CriteriaTypeRole, Method: entities.AggregationMethodAny,
	}).Error)

	_, err := repo.EnsureActivityCriterion(5, 1)
	require.NoError(t, err)

	aggregations, err := repo.GetAggregations(5)
	require.NoError(t, err)
	require.Len(t, aggregations, 3)
	for _, aggregation := range aggregations {
		assert.Equal(t, entities.AggregationMethodAll, aggregation.Method)
	}
}
