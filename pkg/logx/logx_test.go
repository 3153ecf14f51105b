package logx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCapturesEntries(t *testing.T) {
	logger := NewLogger("test-component")
	logger.Info("hello %s", "world")

	entries := RecentEntries("test-component", time.Time{})
	require.NotEmpty(t, entries)

	last := entries[len(entries)-1]
	assert.Equal(t, "test-component", last.Component)
	assert.Equal(t, "INFO", last.Level)
	assert.Equal(t, "hello world", last.Message)
}

func TestDebugSuppressedByDefault(t *testing.T) {
	SetDebug(false)
	defer SetDebug(false)

	logger := NewLogger("debug-test")
	logger.Debug("should not appear")

	for _, entry := range RecentEntries("debug-test", time.Time{}) {
		assert.NotEqual(t, "should not appear", entry.Message)
	}

	SetDebug(true)
	logger.Debug("should appear")

	entries := RecentEntries("debug-test", time.Time{})
	require.NotEmpty(t, entries)
	assert.Equal(t, "should appear", entries[len(entries)-1].Message)
}

func TestRecentEntriesFiltersByComponent(t *testing.T) {
	NewLogger("alpha").Info("from alpha")
	NewLogger("beta").Info("from beta")

	for _, entry := range RecentEntries("alpha", time.Time{}) {
		assert.Equal(t, "alpha", entry.Component)
	}
}
