package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrMissingBotToken is returned when serving without BOT_TOKEN.
	ErrMissingBotToken = errors.New("BOT_TOKEN is not set: export it or add it to .env")

	// ErrInvalidTimeout is returned when a request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxAttempts is returned when the attempt budget is below 1.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be at least 1")

	// ErrInvalidBackoff is returned when the backoff base is negative.
	ErrInvalidBackoff = errors.New("invalid backoff: must be non-negative")

	// ErrInvalidWatchdog is returned when a watchdog interval is not positive.
	ErrInvalidWatchdog = errors.New("invalid watchdog interval: must be positive")

	// ErrInvalidRestartMode is returned for a restart mode other than exec or exit.
	ErrInvalidRestartMode = errors.New("invalid restart mode: must be \"exec\" or \"exit\"")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrNoRegions is returned when the region table is empty.
	ErrNoRegions = errors.New("no regions configured")

	// ErrInvalidRegion is returned for a region entry without a code or with a bad rate.
	ErrInvalidRegion = errors.New("invalid region")
)
