package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, 5000, c.Server.Port)
	assert.Equal(t, "TCS.NS", c.Market.DefaultSymbol)
	assert.Equal(t, "1mo", c.Market.PrimaryRange)
	assert.Equal(t, "3mo", c.Market.FallbackRange)
	assert.Equal(t, 10*time.Second, c.Market.Timeout)
	assert.False(t, c.Market.SyntheticFallback)
	assert.Equal(t, "model/stock_model.json", c.Model.Path)
	assert.Equal(t, 10*time.Minute, c.Chart.TTL)
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
environment: production
server:
  port: 8088
market:
  default_symbol: INFY.NS
  synthetic_fallback: true
  cache_ttl: 90s
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", c.Environment)
	assert.Equal(t, 8088, c.Server.Port)
	assert.Equal(t, "INFY.NS", c.Market.DefaultSymbol)
	assert.True(t, c.Market.SyntheticFallback)
	assert.Equal(t, 90*time.Second, c.Market.CacheTTL)
	// untouched sections still get defaults
	assert.Equal(t, "3mo", c.Market.FallbackRange)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestValidateCollectorNeedsBrokers(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	c.Logging.Collector.Enabled = true
	assert.Error(t, c.Validate())

	c.Kafka.Brokers = []string{"localhost:9092"}
	assert.NoError(t, c.Validate())
}

func TestValidateChartTTLMustBePositive(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	c.Chart.TTL = 0
	assert.Error(t, c.Validate())
	c.Chart.TTL = -time.Minute
	assert.Error(t, c.Validate())

	c.Chart.TTL = time.Minute
	assert.NoError(t, c.Validate())
}

func TestLoadRejectsNegativeChartTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chart:\n  ttl: -5m\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate config")
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_STOCK", "RELIANCE.NS")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("SYNTHETIC_FALLBACK", "true")

	c, err := LoadWithEnv(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "RELIANCE.NS", c.Market.DefaultSymbol)
	assert.True(t, c.Redis.Enabled)
	assert.Equal(t, "cache:6379", c.Redis.Addr)
	assert.True(t, c.Market.SyntheticFallback)
}
