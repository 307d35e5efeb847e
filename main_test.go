package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterShowsModule(t *testing.T) {
	entry := logrus.WithField("module", "demand")
	entry.Time = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	entry.Level = logrus.InfoLevel
	entry.Message = "4 phases ranked"

	out, err := newFormatter().Format(entry)
	require.NoError(t, err)
	assert.Contains(t, string(out), "[demand] [2024-01-02 03:04:05.0000]")
	assert.Contains(t, string(out), "4 phases ranked\n")
}

func TestLogLevels(t *testing.T) {
	for _, name := range []string{"trace", "debug", "info", "warn", "error", "critical", "off"} {
		_, ok := logLevels[name]
		assert.True(t, ok, name)
	}
}
