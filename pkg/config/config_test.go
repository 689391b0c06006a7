package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testYAML = `
environment: development
server:
  port: 8080
  read_timeout: 5s
  write_timeout: 10s
  shutdown_timeout: 15s
backend:
  type: kafka
  batch_size: 100
  batch_timeout: 2s
kafka:
  brokers: ["localhost:9092"]
  topic: ticks
  factors_topic: factors
  risk_topic: risk-levels
clickhouse:
  host: localhost
  port: 9000
  database: coinpulse
  user: default
stream:
  source: binance
  websocket_url: wss://stream.example.com/ws
  symbols: ["BTCUSDT", "ETHUSDT"]
  reconnect_delay: 5s
  ping_interval: 30s
risk:
  bar_depth: 1500
  assets:
    - symbol: BTCUSDT
      display_name: Bitcoin
      bars_per_year: 365
      min_bars: 20
  weights:
    regression: 0.40
    funding: 0.15
    volatility: 0.15
    app_store: 0.10
    search: 0.10
    altcoin_season: 0.05
    capital_rotation: 0.05
factors:
  poll_interval: 5m
  timeout: 10s
cache:
  ttl: 5m
  redis:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadParsesAllSections(t *testing.T) {
	c, err := Load(writeConfig(t, testYAML))
	require.NoError(t, err)

	require.Equal(t, "development", c.Environment)
	require.Equal(t, 8080, c.Server.Port)
	require.Equal(t, "kafka", c.Backend.Type)
	require.Equal(t, "factors", c.Kafka.FactorsTopic)
	require.Equal(t, []string{"BTCUSDT", "ETHUSDT"}, c.Stream.Symbols)
	require.Equal(t, 1500, c.Risk.BarDepth)
	require.Len(t, c.Risk.Assets, 1)
	require.Equal(t, "BTCUSDT", c.Risk.Assets[0].Symbol)
	require.InDelta(t, 365.0, c.Risk.Assets[0].BarsPerYear, 1e-9)
	require.InDelta(t, 0.40, c.Risk.Weights.Regression, 1e-9)
	require.Equal(t, 5*time.Minute, c.Factors.PollInterval)
	require.Equal(t, 5*time.Minute, c.Cache.TTL)
	require.False(t, c.Cache.Redis.Enabled)
}

func TestLoadRejectsMissingAssets(t *testing.T) {
	bad := `
environment: development
backend:
  type: kafka
stream:
  symbols: ["BTCUSDT"]
`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	bad := `
environment: development
backend:
  type: postgres
stream:
  symbols: ["BTCUSDT"]
risk:
  assets:
    - symbol: BTCUSDT
`
	_, err := Load(writeConfig(t, bad))
	require.Error(t, err)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("STREAM_API_KEY", "secret-key")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	c, err := LoadWithEnv(writeConfig(t, testYAML))
	require.NoError(t, err)
	require.Equal(t, "secret-key", c.Stream.APIKey)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, c.Kafka.Brokers)
}
