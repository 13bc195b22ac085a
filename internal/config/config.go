package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Import
		Thumbnails
		Activity
		ScheduledImport
		Audit
		Global
		Database
		Tasks
		Logging
		Security
	}

	HTTP struct {
		Port int32
		Host string
		// MaxUploadBytes bounds the size of an uploaded import file.
		MaxUploadBytes int64
	}
	Import struct {
		DefaultDelimiter   string // comma, semicolon, tab or colon; used for the "cfg" delimiter
		DefaultEncoding    string
		DefaultCategory    string // Category id or idnumber; empty selects the first category
		DownloadThumbnails bool
		HaltOnError        bool // Abort the run at the first row that fails to persist
		StagingLifetime    time.Duration
		PreviewRows        int
	}
	Thumbnails struct {
		Dir                string
		AllowedExtensions  []string
		DialTimeout        time.Duration
		Timeout            time.Duration
		MaxSize            int64
		InsecureSkipVerify bool
	}
	Activity struct {
		PrintHeading      bool
		PrintIntro        bool
		PrintLastModified bool
	}
	ScheduledImport struct {
		Enabled  bool
		Schedule string // Cron format: "0 2 * * *" = daily at 02:00
		Source   string // CSV file imported on every tick
	}
	Audit struct {
		RetentionDays int // Days to keep audit events (default: 30)
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
	Logging struct {
		Level  string
		Format string // text or json
	}
	Security struct {
		CSRFSecret    string // Auto-generated if empty
		SecureCookies bool   // Set to false for local dev without HTTPS
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("max_upload_bytes", 32<<20)
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("audit_retention_days", 30)

	// Import defaults
	v.SetDefault("import_default_delimiter", "comma")
	v.SetDefault("import_default_encoding", "UTF-8")
	v.SetDefault("import_default_category", "")
	v.SetDefault("import_download_thumbnails", true)
	v.SetDefault("import_halt_on_error", false)
	v.SetDefault("import_staging_lifetime", "1h")
	v.SetDefault("import_preview_rows", 10)

	// Thumbnail defaults
	v.SetDefault("thumbnails_dir", DefaultThumbnailsDir)
	v.SetDefault("thumbnail_allowed_extensions", ".jpg,.jpeg,.png,.gif,.webp,.svg")
	v.SetDefault("thumbnail_dial_timeout", "5s")
	v.SetDefault("thumbnail_timeout", "10s")
	v.SetDefault("thumbnail_max_size", 10<<20)
	v.SetDefault("thumbnail_insecure_skip_verify", false)

	// Activity presentation defaults
	v.SetDefault("activity_print_heading", true)
	v.SetDefault("activity_print_intro", true)
	v.SetDefault("activity_print_last_modified", true)

	v.SetDefault("scheduled_import_enabled", false)
	v.SetDefault("scheduled_import_schedule", "0 2 * * *") // Daily at 02:00
	v.SetDefault("scheduled_import_source", "")

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	v.SetDefault("csrf_secret", "")
	v.SetDefault("secure_cookies", true)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 0)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "30m")
	v.SetDefault("task_release_after", "45m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port:           v.GetInt32("PORT"),
			Host:           v.GetString("HOST"),
			MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		},
		Import: Import{
			DefaultDelimiter:   v.GetString("IMPORT_DEFAULT_DELIMITER"),
			DefaultEncoding:    v.GetString("IMPORT_DEFAULT_ENCODING"),
			DefaultCategory:    v.GetString("IMPORT_DEFAULT_CATEGORY"),
			DownloadThumbnails: v.GetBool("IMPORT_DOWNLOAD_THUMBNAILS"),
			HaltOnError:        v.GetBool("IMPORT_HALT_ON_ERROR"),
			StagingLifetime:    v.GetDuration("IMPORT_STAGING_LIFETIME"),
			PreviewRows:        v.GetInt("IMPORT_PREVIEW_ROWS"),
		},
		Thumbnails: Thumbnails{
			Dir:                v.GetString("THUMBNAILS_DIR"),
			AllowedExtensions:  splitList(v.GetString("THUMBNAIL_ALLOWED_EXTENSIONS")),
			DialTimeout:        v.GetDuration("THUMBNAIL_DIAL_TIMEOUT"),
			Timeout:            v.GetDuration("THUMBNAIL_TIMEOUT"),
			MaxSize:            v.GetInt64("THUMBNAIL_MAX_SIZE"),
			InsecureSkipVerify: v.GetBool("THUMBNAIL_INSECURE_SKIP_VERIFY"),
		},
		Activity: Activity{
			PrintHeading:      v.GetBool("ACTIVITY_PRINT_HEADING"),
			PrintIntro:        v.GetBool("ACTIVITY_PRINT_INTRO"),
			PrintLastModified: v.GetBool("ACTIVITY_PRINT_LAST_MODIFIED"),
		},
		ScheduledImport: ScheduledImport{
			Enabled:  v.GetBool("SCHEDULED_IMPORT_ENABLED"),
			Schedule: v.GetString("SCHEDULED_IMPORT_SCHEDULE"),
			Source:   v.GetString("SCHEDULED_IMPORT_SOURCE"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Logging: Logging{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Security: Security{
			CSRFSecret:    v.GetString("CSRF_SECRET"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
	}
}

// splitList parses a comma-separated setting, dropping blank entries.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
