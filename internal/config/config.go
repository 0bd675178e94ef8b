package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/asinbot/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "asinbot"

	// DefaultAggregatorURL is the price aggregator base URL.
	DefaultAggregatorURL = "https://webprice.eu"

	// DefaultRetailURL is the retail site template; {domain} is the lower-cased region.
	DefaultRetailURL = model.DefaultRetailURL

	// DefaultTelegramAPIURL is the Bot API endpoint.
	DefaultTelegramAPIURL = "https://api.telegram.org"

	// DefaultAttemptTimeout bounds one aggregator request.
	DefaultAttemptTimeout = 30 * time.Second

	// DefaultEnrichTimeout bounds the retail page request.
	DefaultEnrichTimeout = 15 * time.Second

	// DefaultImageTimeout bounds the product image download.
	DefaultImageTimeout = 15 * time.Second

	// DefaultMaxAttempts is the aggregator request budget per lookup.
	DefaultMaxAttempts = 7

	// DefaultBackoffBase is multiplied by the attempt number between requests.
	DefaultBackoffBase = 3 * time.Second

	// DefaultHeartbeatInterval is how often the heartbeat touches liveness.
	DefaultHeartbeatInterval = 60 * time.Second

	// DefaultCheckInterval is how often the watchdog compares.
	DefaultCheckInterval = 60 * time.Second

	// DefaultStaleThreshold is the silence after which the process restarts.
	DefaultStaleThreshold = 300 * time.Second

	// DefaultStartDelay smooths bursts before a lookup starts.
	DefaultStartDelay = 2 * time.Second

	// DefaultPollTimeout is the getUpdates long-poll timeout.
	DefaultPollTimeout = 30 * time.Second

	// DefaultBatchSize is the number of concurrent lookups in batch mode.
	DefaultBatchSize = 4

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// DefaultSignature closes every price reply.
	DefaultSignature = "🔥Ens🔥Hsn🔥Ibr🔥Kad🔥Onr🔥Sdk🔥Ilk🔥"

	// RestartModeExec re-executes the binary in place.
	RestartModeExec = "exec"

	// RestartModeExit exits and relies on a supervisor.
	RestartModeExit = "exit"
)

// Config holds all configuration options for asinbot.
type Config struct {
	// BotToken authenticates against the Bot API. Required by serve only.
	BotToken string

	// AggregatorURL is the price aggregator base URL.
	AggregatorURL string

	// RetailURL is the retail site template with a {domain} placeholder.
	RetailURL string

	// TelegramAPIURL is the Bot API base URL.
	TelegramAPIURL string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// AttemptTimeout bounds one aggregator request.
	AttemptTimeout time.Duration

	// EnrichTimeout bounds the retail page request.
	EnrichTimeout time.Duration

	// ImageTimeout bounds the product image download.
	ImageTimeout time.Duration

	// MaxAttempts is the aggregator request budget per lookup.
	MaxAttempts int

	// BackoffBase is the linear backoff unit.
	BackoffBase time.Duration

	// HeartbeatInterval, CheckInterval and StaleThreshold drive the watchdog.
	HeartbeatInterval time.Duration
	CheckInterval     time.Duration
	StaleThreshold    time.Duration

	// RestartMode is RestartModeExec or RestartModeExit.
	RestartMode string

	// HealthAddr is the listen address of the health endpoint. Empty disables it.
	HealthAddr string

	// StartDelay is waited before each lookup in serve mode.
	StartDelay time.Duration

	// PollTimeout is the getUpdates long-poll timeout.
	PollTimeout time.Duration

	// Signature closes every price reply.
	Signature string

	// BatchSize is the number of concurrent lookups in batch mode.
	BatchSize int

	// MaxBodySize limits how much of a page is read.
	MaxBodySize int64

	// Verbose enables debug logging.
	Verbose bool

	// JSONReport and MarkdownReport select the lookup output format.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes lookup output to a file instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit YAML file path.
	ConfigFilePath string

	// Regions is the marketplace table.
	Regions []model.Region
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		AggregatorURL:     DefaultAggregatorURL,
		RetailURL:         DefaultRetailURL,
		TelegramAPIURL:    DefaultTelegramAPIURL,
		AttemptTimeout:    DefaultAttemptTimeout,
		EnrichTimeout:     DefaultEnrichTimeout,
		ImageTimeout:      DefaultImageTimeout,
		MaxAttempts:       DefaultMaxAttempts,
		BackoffBase:       DefaultBackoffBase,
		HeartbeatInterval: DefaultHeartbeatInterval,
		CheckInterval:     DefaultCheckInterval,
		StaleThreshold:    DefaultStaleThreshold,
		RestartMode:       RestartModeExec,
		StartDelay:        DefaultStartDelay,
		PollTimeout:       DefaultPollTimeout,
		Signature:         DefaultSignature,
		BatchSize:         DefaultBatchSize,
		MaxBodySize:       DefaultMaxBodySize,
		Regions:           model.DefaultRegions(),
	}
}

// XDGConfigDir returns the XDG config directory for asinbot.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// RegionTable builds the immutable region lookup.
func (c *Config) RegionTable() *model.RegionTable {
	return model.NewRegionTable(c.Regions...)
}

// Validate checks settings shared by every command.
func (c *Config) Validate() error {
	if c.AttemptTimeout <= 0 || c.EnrichTimeout <= 0 || c.ImageTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}
	if c.BackoffBase < 0 {
		return ErrInvalidBackoff
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if len(c.Regions) == 0 {
		return ErrNoRegions
	}
	for _, r := range c.Regions {
		if r.Code == "" || r.Rate.IsNegative() {
			return fmt.Errorf("%w: %q", ErrInvalidRegion, r.Code)
		}
	}
	return nil
}

// ValidateServe checks everything Validate does plus the bot settings.
func (c *Config) ValidateServe() error {
	if c.BotToken == "" {
		return ErrMissingBotToken
	}
	if err := c.Validate(); err != nil {
		return err
	}
	if c.HeartbeatInterval <= 0 || c.CheckInterval <= 0 || c.StaleThreshold <= 0 {
		return ErrInvalidWatchdog
	}
	if c.RestartMode != RestartModeExec && c.RestartMode != RestartModeExit {
		return ErrInvalidRestartMode
	}
	return nil
}
