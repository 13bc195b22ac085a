package database

import (
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/courseimport/internal/entities"
)

// DefaultCategory is the root category courses fall back to when an import
// names no parent.
var DefaultCategory = entities.Category{ID: 1, Name: "Miscellaneous"}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.AutoMigrate(
		&entities.Category{},
		&entities.Tag{},
		&entities.Course{},
		&entities.Activity{},
		&entities.CourseModule{},
		&entities.CompletionCriterion{},
		&entities.CompletionAggregation{},
		&entities.Thumbnail{},
		&entities.ImportRun{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedDefaultCategory(); err != nil {
		return nil, fmt.Errorf("failed to seed default category: %w", err)
	}

	logrus.WithField("path", dbPath).Info("Database initialized")

	return database, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SQLDB exposes the underlying connection pool for stores that work on
// database/sql directly.
func (d *Database) SQLDB() (*sql.DB, error) {
	return d.DB.DB()
}

func (d *Database) seedDefaultCategory() error {
	var count int64
	if err := d.DB.Model(&entities.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	category := DefaultCategory
	if err := d.DB.Create(&category).Error; err != nil {
		return fmt.Errorf("failed to create category %s: %w", category.Name, err)
	}
	logrus.WithField("category", category.Name).Info("Created default category")
	return nil
}
