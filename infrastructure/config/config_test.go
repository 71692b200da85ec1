package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 5, cfg.RateLimitRPS)
	assert.Equal(t, 30, cfg.RateLimitBurst)
	assert.Equal(t, 600.0, cfg.Domain.TimelineMinWidth)
	assert.Equal(t, int64(50*1024*1024), cfg.Domain.MaxImageStorageBytes)
}

func TestLoadConfig_FileOverlayAndEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	writeFile(t, path, `
log_level: debug
storage_driver: sqlite
sqlite_path: /tmp/board.db
allowed_origins: ["http://localhost:5173"]
domain:
  snap_radius: 75
  allow_self_connections: true
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("STORAGE_DRIVER", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, StorageSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/board.db", cfg.SQLitePath)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.Equal(t, 75.0, cfg.Domain.SnapRadius)
	assert.True(t, cfg.Domain.AllowSelfConnections)
	// untouched keys keep defaults
	assert.Equal(t, 400.0, cfg.Domain.TimelineMinHeight)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "postgres"}, ""},
		{"memory in production", map[string]string{"ENVIRONMENT": "production", "STORAGE_DRIVER": "memory"}, ""},
		{"bad domain", nil, "domain:\n  snap_radius: -1\n"},
		{"bad yaml", nil, "domain: [unclosed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv("STORAGE_DRIVER", "")
			t.Setenv("ENVIRONMENT", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.file != "" {
				path := filepath.Join(t.TempDir(), "board.yaml")
				writeFile(t, path, tt.file)
				t.Setenv("CONFIG_FILE", path)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("MB_BOOL", "yes")
	t.Setenv("MB_INT", "notanint")
	t.Setenv("MB_LIST", " a, ,b ")

	assert.True(t, getEnvBool("MB_BOOL", false))
	assert.Equal(t, 7, getEnvInt("MB_INT", 7))
	assert.Equal(t, []string{"a", "b"}, getEnvList("MB_LIST", nil))
	assert.Equal(t, "x", getEnv("MB_MISSING", "x"))
}

func TestWatcher_ReloadsLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.yaml")
	writeFile(t, path, "log_level: info\n")

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	w, err := NewWatcher(path, level, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, path, "log_level: debug\n")
	assert.Eventually(t, func() bool {
		return level.Level() == zapcore.DebugLevel
	}, 3*time.Second, 20*time.Millisecond)

	// invalid content keeps the current level
	writeFile(t, path, "log_level: loud\n")
	time.Sleep(2 * debounceDelay)
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}
