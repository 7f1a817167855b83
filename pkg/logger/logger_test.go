package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLevel("warning"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelInfo, ParseLevel("nonsense"))
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	l, err := New(LevelWarn, logPath, false)
	require.NoError(t, err)

	l.Debug("not written %d", 1)
	l.Info("not written either")
	l.Warn("warned about %s", "something")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "not written")
	assert.Contains(t, string(content), "[WARN] warned about something")
}

func TestLoggerTruncatesWithoutPersist(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(logPath, []byte("stale entry\n"), 0644))

	l, err := New(LevelInfo, logPath, false)
	require.NoError(t, err)
	l.Info("fresh entry")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "stale entry")
	assert.Contains(t, string(content), "fresh entry")
}

func TestLoggerAppendsWithPersist(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	require.NoError(t, os.WriteFile(logPath, []byte("old entry\n"), 0644))

	l, err := New(LevelInfo, logPath, true)
	require.NoError(t, err)
	l.Info("new entry")
	require.NoError(t, l.Close())

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "old entry")
	assert.Contains(t, string(content), "new entry")
}

func TestLoggerCreatesNestedDirectory(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

	l, err := New(LevelInfo, logPath, false)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	_, err = os.Stat(logPath)
	assert.NoError(t, err)
}

func TestPackageLevelFunctionsAreSafeBeforeInit(t *testing.T) {
	saved := defaultLogger
	defaultLogger = nil
	defer func() { defaultLogger = saved }()

	// Must not panic.
	Debug("a")
	Info("b")
	Warn("c")
	Error("d")
	assert.NoError(t, Close())
}
