// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, default category seeding
//	├── categories/      # Category lookup and creation
//	├── courses/         # Course CRUD and tag association
//	├── tags/            # Tag lookup and creation
//	├── activities/      # External content activities and their course modules
//	├── completion/      # Completion criteria and aggregation rows
//	├── thumbnails/      # Course overview image records
//	├── runs/            # Import run progress tracking
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./courses.db")
//
//	coursesRepo := courses.NewRepository(db.DB)
//	course, err := coursesRepo.FindByIDNumber("C1")
//
// Find* methods return (nil, nil) when no row matches; Get* methods return
// gorm.ErrRecordNotFound.
//
// # Adding a New Domain
//
// To add a new domain:
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check in internal/interfaces
package database
