package tasks

import "time"

// Config holds configuration for the task queue system.
type Config struct {
	// Workers is the number of concurrent task workers. Default: 1, so
	// queued imports never overlap
	Workers int

	// MaxRetries is the maximum retry attempts for a failed import. Default: 0
	MaxRetries int

	// RetryDelay is the default backoff duration between retries. Default: 1m
	RetryDelay time.Duration

	// TaskTimeout is the timeout for executing one import. Default: 30m
	TaskTimeout time.Duration

	// ReleaseAfter is when stuck tasks are released back to queue. Default: 45m
	ReleaseAfter time.Duration

	// CleanupInterval is how often to clean up completed tasks. Default: 1h
	CleanupInterval time.Duration

	// RetentionDuration is how long to keep completed tasks. Default: 24h
	RetentionDuration time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Workers:           1,
		MaxRetries:        0,
		RetryDelay:        1 * time.Minute,
		TaskTimeout:       30 * time.Minute,
		ReleaseAfter:      45 * time.Minute,
		CleanupInterval:   1 * time.Hour,
		RetentionDuration: 24 * time.Hour,
	}
}
