package config

// Default paths for local storage
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./courseimport.db"

	// DefaultThumbnailsDir is where downloaded course thumbnails are kept
	DefaultThumbnailsDir = "./thumbnails"
)
