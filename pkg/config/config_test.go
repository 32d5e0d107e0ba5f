package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI)
	assert.Equal(t, "coupon_service", cfg.Mongo.Database)
	assert.Equal(t, 5*time.Minute, cfg.Redis.PlanTTL)
	assert.Equal(t, int64(3), cfg.Plans.Free)
	assert.Equal(t, int64(10), cfg.Plans.Servicio)
	assert.Equal(t, int64(-1), cfg.Plans.Tienda)
	assert.Equal(t, 5, cfg.Redemption.MaxRetries)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("COUPON_SERVER__PORT", "9090")
	t.Setenv("COUPON_PLANS__FREE", "5")
	t.Setenv("COUPON_MONGO__DATABASE", "coupons_test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, int64(5), cfg.Plans.Free)
	assert.Equal(t, "coupons_test", cfg.Mongo.Database)
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("server:\n  port: 7070\nplans:\n  servicio: 25\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, int64(25), cfg.Plans.Servicio)
	// Untouched keys keep their defaults.
	assert.Equal(t, int64(3), cfg.Plans.Free)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
