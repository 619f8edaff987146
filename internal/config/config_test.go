package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TICKLINK_CONFIG_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, time.Second, cfg.Tick.Interval)
	require.Equal(t, 300*time.Millisecond, cfg.Link.StartupDelay)
	require.Equal(t, time.Second, cfg.Link.PollInterval)
	require.Equal(t, "stop", cfg.Link.PollErrorPolicy)
	require.Equal(t, ":memory:", cfg.DB.Path)
	require.Equal(t, 0, cfg.Cache.Restore["ROOT_QUERY"]["tick"])
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ticklink.yaml")
	content := `
tick:
  interval: 250ms
link:
  startup_delay: 50ms
  poll_interval: 2s
  poll_error_policy: continue
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("TICKLINK_CONFIG_PATH", path)
	t.Setenv("TICKLINK_POLL_INTERVAL", "500ms")
	t.Setenv("TICKLINK_DB_PATH", "/tmp/ticklink.db")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 250*time.Millisecond, cfg.Tick.Interval)
	require.Equal(t, 50*time.Millisecond, cfg.Link.StartupDelay)
	require.Equal(t, 500*time.Millisecond, cfg.Link.PollInterval)
	require.Equal(t, "continue", cfg.Link.PollErrorPolicy)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "/tmp/ticklink.db", cfg.DB.Path)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("TICKLINK_STARTUP_DELAY", "soon")

	_, err := Load()
	require.ErrorContains(t, err, "TICKLINK_STARTUP_DELAY")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Link.PollErrorPolicy = "retry"
	require.ErrorContains(t, cfg.Validate(), "poll_error_policy")

	cfg = Default()
	cfg.Tick.Interval = 0
	require.ErrorContains(t, cfg.Validate(), "tick.interval")

	cfg = Default()
	cfg.Log.Level = "trace"
	require.ErrorContains(t, cfg.Validate(), "log.level")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config file")
}

func TestLoadFile_RestoreReplacesDefault(t *testing.T) {
	t.Setenv("TICKLINK_CONFIG_PATH", "")
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("cache:\n  restore: {}\n"), 0o644))
	cfg, err := LoadFile(empty)
	require.NoError(t, err)
	require.Empty(t, cfg.Cache.Restore)

	custom := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(custom, []byte("cache:\n  restore:\n    ROOT_QUERY:\n      tick: 5\n"), 0o644))
	cfg, err = LoadFile(custom)
	require.NoError(t, err)
	require.Equal(t, map[string]map[string]any{"ROOT_QUERY": {"tick": 5}}, cfg.Cache.Restore)

	untouched := filepath.Join(dir, "untouched.yaml")
	require.NoError(t, os.WriteFile(untouched, []byte("cache:\n  document_cache_size: 8\n"), 0o644))
	cfg, err = LoadFile(untouched)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Cache.DocumentCacheSize)
	require.Equal(t, "Query", cfg.Cache.Restore["ROOT_QUERY"]["__typename"])
}
