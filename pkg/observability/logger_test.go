package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{level: "debug", enabled: zapcore.DebugLevel, muted: zapcore.DebugLevel - 1},
		{level: "", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{level: "INFO", enabled: zapcore.InfoLevel, muted: zapcore.DebugLevel},
		{level: "warning", enabled: zapcore.WarnLevel, muted: zapcore.InfoLevel},
		{level: "error", enabled: zapcore.ErrorLevel, muted: zapcore.WarnLevel},
	}

	for _, tc := range tests {
		t.Run(tc.level, func(t *testing.T) {
			logger, err := NewLogger(tc.level)
			if err != nil {
				t.Fatalf("new logger: %v", err)
			}
			core := logger.Core()
			if !core.Enabled(tc.enabled) {
				t.Fatalf("level %s should be enabled", tc.enabled)
			}
			if core.Enabled(tc.muted) {
				t.Fatalf("level %s should be muted", tc.muted)
			}
		})
	}
}

func TestNewLogger_UnknownLevel(t *testing.T) {
	if _, err := NewLogger("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
