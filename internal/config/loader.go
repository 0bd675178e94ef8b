package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nao1215/asinbot/internal/model"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".asinbot"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File is the structure of the .asinbot YAML file.
// Zero values leave the corresponding setting unchanged.
type File struct {
	AggregatorURL  string        `yaml:"aggregator_url,omitempty"`
	RetailURL      string        `yaml:"retail_url,omitempty"`
	TelegramAPIURL string        `yaml:"telegram_api_url,omitempty"`
	Proxy          string        `yaml:"proxy,omitempty"`
	Signature      string        `yaml:"signature,omitempty"`
	RestartMode    string        `yaml:"restart_mode,omitempty"`
	StartDelay     time.Duration `yaml:"start_delay,omitempty"`
	Retry          RetryFile     `yaml:"retry,omitempty"`
	Timeouts       TimeoutsFile  `yaml:"timeouts,omitempty"`
	Watchdog       WatchdogFile  `yaml:"watchdog,omitempty"`
	Regions        []RegionFile  `yaml:"regions,omitempty"`
}

// RetryFile configures the aggregator retry policy.
type RetryFile struct {
	MaxAttempts int           `yaml:"max_attempts,omitempty"`
	BackoffBase time.Duration `yaml:"backoff_base,omitempty"`
}

// TimeoutsFile configures request timeouts.
type TimeoutsFile struct {
	Attempt time.Duration `yaml:"attempt,omitempty"`
	Enrich  time.Duration `yaml:"enrich,omitempty"`
	Image   time.Duration `yaml:"image,omitempty"`
}

// WatchdogFile configures the liveness watchdog.
type WatchdogFile struct {
	Heartbeat time.Duration `yaml:"heartbeat,omitempty"`
	Check     time.Duration `yaml:"check,omitempty"`
	Threshold time.Duration `yaml:"threshold,omitempty"`

	// HealthAddr is the listen address of the health endpoint.
	HealthAddr string `yaml:"health_addr,omitempty"`
}

// RegionFile is one marketplace entry. A non-empty list replaces the
// built-in table entirely.
type RegionFile struct {
	Code  string `yaml:"code"`
	Label string `yaml:"label"`
	Rate  string `yaml:"rate"`
}

// LoadConfigFile loads a YAML configuration file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cf, nil
}

// DefaultFile returns a File describing the built-in defaults.
func DefaultFile() *File {
	regions := model.DefaultRegions()
	rf := make([]RegionFile, 0, len(regions))
	for _, r := range regions {
		rf = append(rf, RegionFile{Code: r.Code.String(), Label: r.Label, Rate: r.Rate.String()})
	}
	return &File{
		AggregatorURL:  DefaultAggregatorURL,
		RetailURL:      DefaultRetailURL,
		TelegramAPIURL: DefaultTelegramAPIURL,
		Signature:      DefaultSignature,
		RestartMode:    RestartModeExec,
		StartDelay:     DefaultStartDelay,
		Retry:          RetryFile{MaxAttempts: DefaultMaxAttempts, BackoffBase: DefaultBackoffBase},
		Timeouts:       TimeoutsFile{Attempt: DefaultAttemptTimeout, Enrich: DefaultEnrichTimeout, Image: DefaultImageTimeout},
		Watchdog: WatchdogFile{
			Heartbeat: DefaultHeartbeatInterval,
			Check:     DefaultCheckInterval,
			Threshold: DefaultStaleThreshold,
		},
		Regions: rf,
	}
}

// Marshal encodes the file as YAML.
func (cf *File) Marshal() ([]byte, error) {
	return yaml.Marshal(cf)
}

// Apply copies every set field of cf into c.
func (c *Config) Apply(cf *File) error {
	setString(&c.AggregatorURL, cf.AggregatorURL)
	setString(&c.RetailURL, cf.RetailURL)
	setString(&c.TelegramAPIURL, cf.TelegramAPIURL)
	setString(&c.ProxyAddress, cf.Proxy)
	setString(&c.Signature, cf.Signature)
	setString(&c.RestartMode, cf.RestartMode)
	setString(&c.HealthAddr, cf.Watchdog.HealthAddr)

	setDuration(&c.StartDelay, cf.StartDelay)
	setDuration(&c.BackoffBase, cf.Retry.BackoffBase)
	setDuration(&c.AttemptTimeout, cf.Timeouts.Attempt)
	setDuration(&c.EnrichTimeout, cf.Timeouts.Enrich)
	setDuration(&c.ImageTimeout, cf.Timeouts.Image)
	setDuration(&c.HeartbeatInterval, cf.Watchdog.Heartbeat)
	setDuration(&c.CheckInterval, cf.Watchdog.Check)
	setDuration(&c.StaleThreshold, cf.Watchdog.Threshold)

	if cf.Retry.MaxAttempts != 0 {
		c.MaxAttempts = cf.Retry.MaxAttempts
	}

	if len(cf.Regions) == 0 {
		return nil
	}
	regions := make([]model.Region, 0, len(cf.Regions))
	for _, r := range cf.Regions {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return fmt.Errorf("%w: %q rate %q: %w", ErrInvalidRegion, r.Code, r.Rate, err)
		}
		regions = append(regions, model.Region{
			Code:  model.NormalizeRegion(r.Code),
			Label: r.Label,
			Rate:  rate,
		})
	}
	c.Regions = regions
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v != 0 {
		*dst = v
	}
}

// FindConfigFile searches for the configuration file in the following order:
//  1. configPath, if specified
//  2. .asinbot in the current directory
//  3. .asinbot in the user's home directory
//  4. config.yaml in the XDG config directory
//
// It returns an empty string if nothing is found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
