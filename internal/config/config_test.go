package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docparse/internal/config"
)

func clearPort(t *testing.T) {
	t.Helper()
	t.Setenv("PORT", "")
}

func TestLoad_Defaults(t *testing.T) {
	clearPort(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8999", cfg.Server.Port)
	assert.Equal(t, 1, cfg.Server.Workers)
	assert.Equal(t, time.Duration(0), cfg.Server.WriteTimeout)
	assert.Equal(t, "gpu", cfg.Device.Accelerator)
	assert.Equal(t, "auto", cfg.Device.ID)
	assert.Equal(t, "./tmp", cfg.Output.Root)
	assert.Equal(t, time.Hour, cfg.Output.MaxAge)
	assert.True(t, cfg.Options.StrictFlags)
	assert.Equal(t, "remote", cfg.Engine.Provider)
	assert.Equal(t, time.Duration(0), cfg.Engine.Timeout)
	assert.False(t, cfg.Auth.Enabled())
	assert.False(t, cfg.DB.Enabled)
	assert.False(t, cfg.Retention.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearPort(t)
	t.Setenv("DOCPARSE_SERVER_WORKERS", "3")
	t.Setenv("DOCPARSE_DEVICE_ID", "1")
	t.Setenv("DOCPARSE_OUTPUT_ROOT", "/data/out")
	t.Setenv("DOCPARSE_OPTIONS_STRICT_FLAGS", "false")
	t.Setenv("DOCPARSE_ENGINE_PROVIDER", "command")
	t.Setenv("DOCPARSE_ENGINE_TIMEOUT", "90s")
	t.Setenv("DOCPARSE_AUTH_SECRET", "s3cret")

	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Server.Workers)
	assert.Equal(t, "1", cfg.Device.ID)
	assert.Equal(t, "/data/out", cfg.Output.Root)
	assert.False(t, cfg.Options.StrictFlags)
	assert.Equal(t, "command", cfg.Engine.Provider)
	assert.Equal(t, 90*time.Second, cfg.Engine.Timeout)
	assert.True(t, cfg.Auth.Enabled())
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DOCPARSE_SERVER_PORT", "")

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Port)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	clearPort(t)
	t.Setenv("DOCPARSE_SERVER_WORKERS", "3")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--workers=2", "--port=9100", "--strict-flags=false"}))

	cfg, err := config.Load(fs)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Server.Workers)
	assert.Equal(t, ":9100", cfg.Server.Port)
	assert.False(t, cfg.Options.StrictFlags)
}

func TestLoad_ConfigFile(t *testing.T) {
	clearPort(t)
	path := filepath.Join(t.TempDir(), "docparse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device:\n  accelerator: cpu\nlog:\n  format: json\n"), 0o600))

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	config.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path}))

	cfg, err := config.Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "cpu", cfg.Device.Accelerator)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvalidConfig(t *testing.T) {
	clearPort(t)
	t.Setenv("DOCPARSE_SERVER_WORKERS", "0")
	t.Setenv("DOCPARSE_ENGINE_PROVIDER", "magic")

	cfg, err := config.Load(nil)
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.workers")
	assert.Contains(t, err.Error(), "unknown engine provider")
}

func TestValidate_RetentionNeedsBucket(t *testing.T) {
	cfg := &config.Config{
		Server:    config.ServerConfig{Workers: 1, MaxUploadMB: 10},
		Output:    config.OutputConfig{Root: "./tmp"},
		Engine:    config.EngineConfig{Provider: "remote", Endpoint: "http://engine"},
		Retention: config.RetentionConfig{Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3.bucket")
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{
		Host: "db", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", db.DSN())
}
