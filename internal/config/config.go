// Package config handles configuration for the matchmaking service. All
// settings come from environment variables with development defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anonkampus/matchmaker/internal/core"
)

// Config holds runtime settings for the matchmaking service.
//
// Fields:
//   - NATSURL / RedisAddr: messaging and snapshot/rate-limit backends.
//   - PostgresDSN: moderation-ticket archive; empty disables archiving.
//   - MetricsAddr: bind address for the /metrics and /health endpoints.
//   - Moderators: user IDs allowed to verify and ban.
//   - AgeMin / AgeMax: inclusive onboarding age bounds.
//   - Timezone / WindowFrom / WindowUntil: the constrained-mode window,
//     e.g. "Friday 18:00" through "Monday 00:00" in Asia/Jakarta.
//   - SnapshotInterval: how often the registry is flushed to Redis.
type Config struct {
	NATSURL          string
	RedisAddr        string
	PostgresDSN      string
	MetricsAddr      string
	Moderators       []string
	AgeMin           int
	AgeMax           int
	Timezone         string
	WindowFrom       string
	WindowUntil      string
	SnapshotInterval time.Duration
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.NATSURL = "nats://localhost:4222"
	c.RedisAddr = "localhost:6379"
	c.PostgresDSN = ""
	c.MetricsAddr = ":9100"
	c.Moderators = nil
	c.AgeMin = 18
	c.AgeMax = 25
	c.Timezone = "Asia/Jakarta"
	c.WindowFrom = "Friday 18:00"
	c.WindowUntil = "Monday 00:00"
	c.SnapshotInterval = 1 * time.Minute
}

// Load builds a Config from defaults overlaid with environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.PostgresDSN = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv("MODERATOR_IDS"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				cfg.Moderators = append(cfg.Moderators, id)
			}
		}
	}
	if v := os.Getenv("AGE_MIN"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid AGE_MIN %q: %w", v, err)
		}
		cfg.AgeMin = n
	}
	if v := os.Getenv("AGE_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid AGE_MAX %q: %w", v, err)
		}
		cfg.AgeMax = n
	}
	if v := os.Getenv("MATCH_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("MATCH_WINDOW_FROM"); v != "" {
		cfg.WindowFrom = v
	}
	if v := os.Getenv("MATCH_WINDOW_UNTIL"); v != "" {
		cfg.WindowUntil = v
	}
	if v := os.Getenv("SNAPSHOT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid SNAPSHOT_INTERVAL %q: %w", v, err)
		}
		cfg.SnapshotInterval = d
	}

	if cfg.AgeMin > cfg.AgeMax {
		return nil, fmt.Errorf("config: AGE_MIN %d exceeds AGE_MAX %d", cfg.AgeMin, cfg.AgeMax)
	}

	return cfg, nil
}

// Window builds the constrained-mode match window from the configured
// timezone and boundary strings.
func (c *Config) Window() (core.Window, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return core.Window{}, fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	from, err := core.ParseBoundary(c.WindowFrom)
	if err != nil {
		return core.Window{}, fmt.Errorf("config: MATCH_WINDOW_FROM: %w", err)
	}
	until, err := core.ParseBoundary(c.WindowUntil)
	if err != nil {
		return core.Window{}, fmt.Errorf("config: MATCH_WINDOW_UNTIL: %w", err)
	}
	return core.Window{Location: loc, From: from, Until: until}, nil
}

// CoreConfig assembles the matchmaking policy from the service settings.
func (c *Config) CoreConfig() (core.Config, error) {
	window, err := c.Window()
	if err != nil {
		return core.Config{}, err
	}
	return core.Config{
		Moderators: c.Moderators,
		AgeMin:     c.AgeMin,
		AgeMax:     c.AgeMax,
		Window:     window,
	}, nil
}
