package logging

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default warn level", 0, zerolog.WarnLevel},
		{"info level", 1, zerolog.InfoLevel},
		{"debug level", 2, zerolog.DebugLevel},
		{"trace level", 3, zerolog.TraceLevel},
		{"high verbosity defaults to trace", 5, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetupLogger(tt.verbosity)

			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestGetLogFilePath(t *testing.T) {
	path := getLogFilePath()

	assert.True(t, strings.HasSuffix(path, "kibot.log"), "log path should end in kibot.log, got %s", path)
	assert.Contains(t, path, "kibot")
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("collector")

	// Must be usable without further setup
	logger.Debug().Msg("test message")
}

func TestLogOperationStart(t *testing.T) {
	logger := GetLogger("test")
	done := LogOperationStart(logger, "collect")

	assert.NotNil(t, done)
	done()
}
