package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFastEnv(t *testing.T, tickInterval string) {
	t.Helper()
	t.Setenv("TICKLINK_CONFIG_PATH", "")
	t.Setenv("TICKLINK_LOG_PATH", "")
	t.Setenv("TICKLINK_DB_PATH", ":memory:")
	t.Setenv("TICKLINK_TICK_INTERVAL", tickInterval)
	t.Setenv("TICKLINK_STARTUP_DELAY", "1ms")
	t.Setenv("TICKLINK_POLL_INTERVAL", "10ms")
	t.Setenv("TICKLINK_LOG_LEVEL", "error")
}

func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeLines(t *testing.T, out string) []map[string]any {
	t.Helper()
	var results []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		var result map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &result), "line %q", line)
		results = append(results, result)
	}
	return results
}

func TestExecCommand_Query(t *testing.T) {
	setFastEnv(t, "1h")

	out, _, err := executeCommand(t, "exec", "query Tick { tick }")
	require.NoError(t, err)

	results := decodeLines(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]any{"data": map[string]any{"tick": float64(0)}}, results[0])
}

func TestExecCommand_OperationName(t *testing.T) {
	setFastEnv(t, "1h")

	doc := "query A { a: tick } query B { b: tick }"
	out, _, err := executeCommand(t, "exec", doc, "--operation-name", "B")
	require.NoError(t, err)

	results := decodeLines(t, out)
	require.Len(t, results, 1)
	assert.Equal(t, map[string]any{"b": float64(0)}, results[0]["data"])
}

func TestExecCommand_SubscriptionEmissions(t *testing.T) {
	setFastEnv(t, "5ms")

	out, _, err := executeCommand(t, "exec", "subscription Ticked { ticked }", "--emissions", "3")
	require.NoError(t, err)

	results := decodeLines(t, out)
	require.Len(t, results, 3)
	prev := -1.0
	for _, result := range results {
		data, ok := result["data"].(map[string]any)
		require.True(t, ok)
		tick, ok := data["ticked"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, tick, prev)
		prev = tick
	}
}

func TestExecCommand_InvalidDocument(t *testing.T) {
	setFastEnv(t, "1h")

	out, _, err := executeCommand(t, "exec", "query {")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
	assert.Empty(t, out)
}

func TestExecCommand_FlagValidation(t *testing.T) {
	setFastEnv(t, "1h")

	_, _, err := executeCommand(t, "exec", "{ tick }", "--emissions", "-1")
	assert.ErrorContains(t, err, "--emissions")

	_, _, err = executeCommand(t, "exec", "{ tick }", "--variables", "{")
	assert.ErrorContains(t, err, "invalid --variables")

	_, _, err = executeCommand(t, "exec")
	assert.Error(t, err)
}

func TestRootCommand_ConfigAndLogLevel(t *testing.T) {
	setFastEnv(t, "1h")

	path := filepath.Join(t.TempDir(), "ticklink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("link:\n  poll_error_policy: sometimes\n"), 0o644))

	_, _, err := executeCommand(t, "--config", path, "exec", "{ tick }")
	assert.ErrorContains(t, err, "poll_error_policy")

	_, _, err = executeCommand(t, "--log-level", "loud", "exec", "{ tick }")
	assert.ErrorContains(t, err, "log.level")
}

func TestLogFileWriter_Truncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ticklink.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	defer file.Close()

	chunk := bytes.Repeat([]byte("x"), 1024*1024)
	for i := 0; i < 6; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}
	_, err = w.Write([]byte("tail\n"))
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(keepLogSizeBytes), info.Size())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, []byte("tail\n")))
}

func TestEnsureDir(t *testing.T) {
	require.NoError(t, ensureDir(":memory:"))
	require.NoError(t, ensureDir("local.db"))

	path := filepath.Join(t.TempDir(), "nested", "ticklink.db")
	require.NoError(t, ensureDir(path))
	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
