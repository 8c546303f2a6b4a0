package utils

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// NewApplicationLogger constructs a zap logger configured for human-readable console output
// on stderr. An empty level means info.
func NewApplicationLogger(level string) (*zap.Logger, error) {
	trimmedLevel := strings.TrimSpace(level)
	if trimmedLevel == "" {
		trimmedLevel = defaultLogLevel
	}
	atomicLevel, err := zap.ParseAtomicLevel(trimmedLevel)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	config.Encoding = "console"
	config.DisableCaller = true
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.EncoderConfig.TimeKey = ""
	config.EncoderConfig.NameKey = ""
	config.EncoderConfig.CallerKey = ""
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.StacktraceKey = ""
	return config.Build()
}
