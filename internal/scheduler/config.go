package scheduler

import (
	"strings"
	"time"

	"github.com/smallbiznis/polarops/internal/config"
)

const (
	JobDailyTemperatureRollup = "daily_temperature_rollup"

	defaultDailyRollupSpec = "0 15 0 * * *"
)

// Config controls job schedules, batch sizes and locking.
type Config struct {
	Enabled         bool
	DailyRollupSpec string
	BatchSize       int
	JobTimeout      time.Duration
	LockTTL         time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		DailyRollupSpec: defaultDailyRollupSpec,
		BatchSize:       100,
		JobTimeout:      30 * time.Minute,
		LockTTL:         10 * time.Minute,
	}
}

func ProvideConfig(cfg config.Config) Config {
	return Config{
		Enabled:         cfg.Scheduler.Enabled,
		DailyRollupSpec: cfg.Scheduler.DailyRollupSpec,
		LockTTL:         time.Duration(cfg.Scheduler.LockTTLSeconds) * time.Second,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	c.DailyRollupSpec = strings.TrimSpace(c.DailyRollupSpec)
	if c.DailyRollupSpec == "" {
		c.DailyRollupSpec = defaults.DailyRollupSpec
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaults.BatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	return c
}
