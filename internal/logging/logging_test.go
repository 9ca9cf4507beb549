package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelWarn, &buf)

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")

	out := buf.String()
	assert.NotContains(t, out, "debug message")
	assert.NotContains(t, out, "info message")
	assert.Contains(t, out, "warn message")
	assert.Contains(t, out, "error message")
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf)

	log.Info("analyzing", F("path", "/src"), F("files", 12))

	out := buf.String()
	assert.Contains(t, out, "path=/src")
	assert.Contains(t, out, "files=12")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf).WithFields(F("component", "catalog"))

	log.Info("loaded")

	assert.Contains(t, buf.String(), "component=catalog")
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelInfo, &buf)

	log.Debug("before")
	log.SetLevel(LevelDebug)
	log.Debug("after")

	out := buf.String()
	assert.NotContains(t, out, "before")
	assert.Contains(t, out, "after")
}

func TestSilentLoggerWritesNothing(t *testing.T) {
	log := NewSilent()
	log.Error("nothing to see")
	// NewSilent writes to io.Discard; nothing observable, just no panic
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "SILENT", LevelSilent.String())
}
