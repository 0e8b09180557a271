package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("ASSETPATH_DB", "")
	t.Setenv("ASSETPATH_LOG_LEVEL", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	t.Setenv("ASSETPATH_DB", "")
	t.Setenv("ASSETPATH_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`database: /var/lib/assetpath/assets.db
log_level: warn
import:
  workers: 8
  exclude:
    - \.tmp$
  thumbnail_size: 128x128
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/assetpath/assets.db", cfg.Database)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 8, cfg.Import.Workers)
	assert.Equal(t, []string{`\.tmp$`}, cfg.Import.Exclude)
	assert.Equal(t, "128x128", cfg.Import.ThumbnailSize)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ASSETPATH_DB", "/tmp/override.db")
	t.Setenv("ASSETPATH_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Database)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsBadInput(t *testing.T) {
	t.Setenv("ASSETPATH_DB", "")
	t.Setenv("ASSETPATH_LOG_LEVEL", "")
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("database: [unterminated"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	level := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(level, []byte("log_level: loud\n"), 0644))
	_, err = Load(level)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	t.Setenv("ASSETPATH_DB", "")
	t.Setenv("ASSETPATH_LOG_LEVEL", "")

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Import.MaxErrors = 3
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"", zapcore.InfoLevel},
		{"debug", zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel},
		{" error ", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("error", true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	_, err = NewLogger("nope", false)
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	w, h, err := ParseSize("128x96")
	require.NoError(t, err)
	assert.Equal(t, 128, w)
	assert.Equal(t, 96, h)

	w, h, err = ParseSize("")
	require.NoError(t, err)
	assert.Zero(t, w)
	assert.Zero(t, h)

	for _, bad := range []string{"128", "x96", "0x10", "axb", "-1x5"} {
		_, _, err := ParseSize(bad)
		assert.Error(t, err, bad)
	}
}
