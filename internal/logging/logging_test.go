package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "contacts.log")

	logger, err := New(Options{Level: "debug", File: path})
	require.NoError(t, err)
	logger.Debug("cache activated", zap.Int("subscribers", 2))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	line := string(data)
	assert.True(t, strings.Contains(line, `"msg":"cache activated"`), line)
	assert.Contains(t, line, `"subscribers":2`)
	assert.Contains(t, line, `"time":`)
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"default info", Options{}, zapcore.InfoLevel, zapcore.DebugLevel},
		{"explicit warn", Options{Level: "warn"}, zapcore.WarnLevel, zapcore.InfoLevel},
		{"verbose wins", Options{Level: "error", Verbose: true}, zapcore.DebugLevel, zapcore.DebugLevel - 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.File = filepath.Join(t.TempDir(), "x.log")
			logger, err := New(opts)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.enabled))
			assert.False(t, logger.Core().Enabled(tt.muted))
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse log level")
}
