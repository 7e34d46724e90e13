package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.App.Port)
	assert.Equal(t, 5, cfg.Security.RegisterRateLimit)
	assert.Equal(t, time.Minute, cfg.Security.RegisterRateWindow)
	assert.Equal(t, 50.0, cfg.Dispatch.NearbyRadiusKM)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9100")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("NEARBY_RADIUS_KM", "12.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.App.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, 12.5, cfg.Dispatch.NearbyRadiusKM)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	t.Setenv("APP_PORT", "70000")
	t.Setenv("SMS_PROVIDER", "pigeon")
	t.Setenv("NEARBY_RADIUS_KM", "-1")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_PORT")
	assert.Contains(t, err.Error(), "SMS_PROVIDER")
	assert.Contains(t, err.Error(), "NEARBY_RADIUS_KM")
}

func TestProductionRequiresRealSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadClient(t *testing.T) {
	t.Setenv("ROADSIDE_API_URL", "http://api.test")
	t.Setenv("ROADSIDE_DRIVER_POLL", "2s")

	cfg := LoadClient()
	assert.Equal(t, "http://api.test", cfg.APIURL)
	assert.Equal(t, 2*time.Second, cfg.DriverPoll)
	assert.Equal(t, 10*time.Second, cfg.LocationPing)
	assert.NotEmpty(t, cfg.SessionFile)
}
