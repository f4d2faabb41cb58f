package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-dashboard-prefs/components/dashboard/storage"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "go-dashboard-prefs", cfg.AppID)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "DASHBOARD_STORAGE_DRIVER=sqlite\nDASHBOARD_SQLITE_PATH=/tmp/prefs.db\nLOG_LEVEL=debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("DASHBOARD_STORAGE_DRIVER")
		os.Unsetenv("DASHBOARD_SQLITE_PATH")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "/tmp/prefs.db", cfg.Storage.Backend().Path)
	assert.Equal(t, logrus.DebugLevel, cfg.Logger(nil).GetLevel())
}

func TestLoadRejectsRedisWithoutURL(t *testing.T) {
	t.Setenv("DASHBOARD_STORAGE_DRIVER", "redis")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestStorageValidateAgreesWithOpen(t *testing.T) {
	for _, driver := range []string{"", " memory ", "MEMORY"} {
		opts := StorageOptions{Driver: driver}
		require.NoError(t, opts.Validate(), "driver %q", driver)
		_, closer, err := storage.Open(context.Background(), opts.Backend())
		require.NoError(t, err, "driver %q", driver)
		require.NoError(t, closer.Close())
	}
	assert.NoError(t, StorageOptions{Driver: " SQLite "}.Validate())
	assert.Error(t, StorageOptions{Driver: "etcd"}.Validate())
	assert.Error(t, StorageOptions{Driver: " redis "}.Validate())
}

func TestLoggerJSONFormat(t *testing.T) {
	cfg := &Configuration{Log: LogOptions{Level: "nope", Format: "json"}}
	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hello")

	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Contains(t, buf.String(), `"msg":"hello"`)
}
