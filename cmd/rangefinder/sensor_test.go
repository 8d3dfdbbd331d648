package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/rangefinder/config"
)

func resolveConfig(t *testing.T, args ...string) (config.Config, error) {
	t.Helper()
	var cfg config.Config
	var loadErr error
	app := cli.NewApp()
	app.Flags = sensorFlags
	app.Action = func(c *cli.Context) error {
		cfg, loadErr = loadConfig(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"rangefinder"}, args...)))
	return cfg, loadErr
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := resolveConfig(t)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rangefinder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter: generic\ndevice: /dev/i2c-1\npoll:\n  max_count: 20\n"), 0o600))

	cfg, err := resolveConfig(t, "--config", path, "--max-count", "5", "--count-delay", "1ms")
	require.NoError(t, err)
	assert.Equal(t, config.AdapterGeneric, cfg.Adapter)
	assert.Equal(t, "/dev/i2c-1", cfg.Device)
	assert.Equal(t, 5, cfg.Poll.MaxCount)
	assert.Equal(t, time.Millisecond, cfg.Poll.CountDelay)
}

func TestLoadConfig_Invalid(t *testing.T) {
	_, err := resolveConfig(t, "--adapter", "serial")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	_, err = resolveConfig(t, "--address", "300")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSimulatedSensor(t *testing.T) {
	s := simulatedSensor(time.Now())
	ctx := context.Background()
	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.ArmContinuous(ctx))

	cm, err := s.ReadDistance(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cm, 50)
	assert.LessOrEqual(t, cm, 250)

	v, err := s.ReadVelocity(ctx)
	require.NoError(t, err)
	assert.LessOrEqual(t, v, 4)
	assert.GreaterOrEqual(t, v, -4)
}
