package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected string
	}{
		{name: "default", config: &Config{}, expected: "info"},
		{name: "verbose sets debug", config: &Config{Verbose: true}, expected: "debug"},
		{name: "quiet sets warn", config: &Config{Quiet: true}, expected: "warn"},
		{name: "verbose and quiet prefers quiet", config: &Config{Verbose: true, Quiet: true}, expected: "warn"},
		{name: "explicit level wins", config: &Config{LogLevel: "error", Verbose: true}, expected: "error"},
		{name: "invalid level falls back", config: &Config{LogLevel: "loud"}, expected: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, determineLogLevel(tt.config))
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger := NewLogger(&Config{LogLevel: "warn", LogFormat: "json", LogOutput: "discard"})
	assert.Equal(t, "warn", logger.GetLevel().String())
}
