package activities

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

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_activities_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Activity{}, &entities.CourseModule{}))

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}
	return NewRepository(db), cleanup
}

func TestRepository_CreateAndFind(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	activity := &entities.Activity{CourseID: 7, Name: "Watch", Intro: "<p>i</p>", Content: "<p>c</p>"}
	module, err := repo.Create(activity, "C1")
	require.NoError(t, err)
	assert.NotZero(t, activity.ID)
	assert.Equal(t, activity.ID, module.Instance)
	assert.Equal(t, entities.ModuleExternalContent, module.Module)
	assert.Equal(t, "C1", module.IDNumber)

	found, foundModule, err := repo.FindByCourse(7, "C1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Watch", found.Name)
	assert.Equal(t, module.ID, foundModule.ID)

	t.Run("other course", func(t *testing.T) {
		found, module, err := repo.FindByCourse(8, "C1")
		require.NoError(t, err)
		assert.Nil(t, found)
		assert.Nil(t, module)
	})

	t.Run("other idnumber", func(t *testing.T) {
		found, _, err := repo.FindByCourse(7, "C2")
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestRepository_Update(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	activity := &entities.Activity{CourseID: 7, Name: "Watch", CompletionExternally: true}
	module, err := repo.Create(activity, "C1")
	require.NoError(t, err)

	activity.Name = "Read"
	activity.CompletionExternally = false
	require.NoError(t, repo.Update(activity, module, "C1"))

	found, _, err := repo.FindByCourse(7, "C1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Read", found.Name)
	assert.False(t, found.CompletionExternally)

	modules, err := repo.GetModulesForCourse(7)
	require.NoError(t, err)
	assert.Len(t, modules, 1)
}
