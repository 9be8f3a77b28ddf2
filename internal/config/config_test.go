package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Empty(t, cfg.PostgresDSN)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
	assert.Empty(t, cfg.Moderators)
	assert.Equal(t, 18, cfg.AgeMin)
	assert.Equal(t, 25, cfg.AgeMax)
	assert.Equal(t, "Asia/Jakarta", cfg.Timezone)
	assert.Equal(t, "Friday 18:00", cfg.WindowFrom)
	assert.Equal(t, "Monday 00:00", cfg.WindowUntil)
	assert.Equal(t, time.Minute, cfg.SnapshotInterval)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NATS_URL", "nats://queue:4222")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("POSTGRES_DSN", "postgres://kampus@db/kampus?sslmode=disable")
	t.Setenv("METRICS_ADDR", ":9200")
	t.Setenv("MODERATOR_IDS", "mod1, mod2 ,,mod3")
	t.Setenv("AGE_MIN", "17")
	t.Setenv("AGE_MAX", "30")
	t.Setenv("MATCH_TIMEZONE", "UTC")
	t.Setenv("MATCH_WINDOW_FROM", "Saturday 08:00")
	t.Setenv("MATCH_WINDOW_UNTIL", "Sunday 22:00")
	t.Setenv("SNAPSHOT_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "nats://queue:4222", cfg.NATSURL)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, "postgres://kampus@db/kampus?sslmode=disable", cfg.PostgresDSN)
	assert.Equal(t, ":9200", cfg.MetricsAddr)
	assert.Equal(t, []string{"mod1", "mod2", "mod3"}, cfg.Moderators)
	assert.Equal(t, 17, cfg.AgeMin)
	assert.Equal(t, 30, cfg.AgeMax)
	assert.Equal(t, 30*time.Second, cfg.SnapshotInterval)

	w, err := cfg.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, w.From.Weekday)
	assert.Equal(t, 8, w.From.Hour)
	assert.Equal(t, time.Sunday, w.Until.Weekday)
	assert.Equal(t, 22, w.Until.Hour)
}

func TestLoadInvalidValues(t *testing.T) {
	t.Run("bad age", func(t *testing.T) {
		t.Setenv("AGE_MIN", "young")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("inverted age bounds", func(t *testing.T) {
		t.Setenv("AGE_MIN", "30")
		t.Setenv("AGE_MAX", "20")
		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("bad snapshot interval", func(t *testing.T) {
		t.Setenv("SNAPSHOT_INTERVAL", "sometimes")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestWindowValidation(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()

	t.Run("defaults parse", func(t *testing.T) {
		w, err := cfg.Window()
		require.NoError(t, err)
		assert.Equal(t, time.Friday, w.From.Weekday)
		assert.Equal(t, 18, w.From.Hour)
		assert.Equal(t, time.Monday, w.Until.Weekday)
	})

	t.Run("bad timezone", func(t *testing.T) {
		bad := cfg
		bad.Timezone = "Mars/Olympus_Mons"
		_, err := bad.Window()
		assert.Error(t, err)
	})

	t.Run("bad boundary", func(t *testing.T) {
		bad := cfg
		bad.WindowFrom = "Friday"
		_, err := bad.Window()
		assert.Error(t, err)
	})
}

func TestCoreConfig(t *testing.T) {
	var cfg Config
	cfg.LoadDefaults()
	cfg.Moderators = []string{"mod1"}

	cc, err := cfg.CoreConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"mod1"}, cc.Moderators)
	assert.Equal(t, 18, cc.AgeMin)
	assert.Equal(t, 25, cc.AgeMax)
	assert.NotNil(t, cc.Window.Location)
}
