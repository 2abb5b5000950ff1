package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// structured logger used across the engine
type Logger struct {
	*zap.SugaredLogger
}

// creates a logger; verbose enables debug level and caller info
func NewLogger(verbose bool) *Logger {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		config.DisableCaller = true
		config.DisableStacktrace = true
	}

	logger, err := config.Build()
	if err != nil {
		logger = zap.NewNop()
	}

	return &Logger{logger.Sugar()}
}

// returns a no-op logger for tests and optional call sites
func NewNopLogger() *Logger {
	return &Logger{zap.NewNop().Sugar()}
}

// returns a child logger with a component attribute
func (l *Logger) Named(component string) *Logger {
	return &Logger{l.SugaredLogger.Named(component)}
}
