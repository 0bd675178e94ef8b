package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvBotToken       = "BOT_TOKEN"
	EnvAggregatorURL  = "ASINBOT_AGGREGATOR_URL"
	EnvProxy          = "ASINBOT_PROXY"
	EnvRestartMode    = "ASINBOT_RESTART_MODE"
	EnvHealthAddr     = "ASINBOT_HEALTH_ADDR"
	EnvStaleThreshold = "ASINBOT_STALE_THRESHOLD"
	EnvMaxAttempts    = "ASINBOT_MAX_ATTEMPTS"
)

// LoadDotEnv loads .env files into the process environment.
// Missing files are ignored; variables already set are not overridden.
// A file that exists but cannot be parsed is an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides c with values from the environment.
func (c *Config) ApplyEnv() error {
	c.BotToken = getEnv(EnvBotToken, c.BotToken)
	c.AggregatorURL = getEnv(EnvAggregatorURL, c.AggregatorURL)
	c.ProxyAddress = getEnv(EnvProxy, c.ProxyAddress)
	c.RestartMode = getEnv(EnvRestartMode, c.RestartMode)
	c.HealthAddr = getEnv(EnvHealthAddr, c.HealthAddr)

	var err error
	if c.StaleThreshold, err = parseDurationEnv(EnvStaleThreshold, c.StaleThreshold); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvStaleThreshold, err)
	}
	if c.MaxAttempts, err = parseIntEnv(EnvMaxAttempts, c.MaxAttempts); err != nil {
		return fmt.Errorf("invalid %s: %w", EnvMaxAttempts, err)
	}
	return nil
}

// getEnv returns the value of an environment variable or def if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// parseDurationEnv parses an environment variable as time.Duration, or returns def if empty.
func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

// parseIntEnv parses an environment variable as int, or returns def if empty.
func parseIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
