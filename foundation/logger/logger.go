// Package logger provides a convenience function for constructing a
// zap.SugaredLogger configured for JSON output, suitable for the
// entry point of a long-running service.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a *zap.SugaredLogger that writes JSON-encoded
// entries to stdout at info level, tagged with the given service
// name.
func New(service string) (*zap.SugaredLogger, error) {
	return newWithLevel(service, zap.NewAtomicLevelAt(zapcore.InfoLevel))
}

// NewVerbose is like New but logs at debug level.
func NewVerbose(service string) (*zap.SugaredLogger, error) {
	return newWithLevel(service, zap.NewAtomicLevelAt(zapcore.DebugLevel))
}

func newWithLevel(service string, level zap.AtomicLevel) (*zap.SugaredLogger, error) {
	config := zap.NewProductionConfig()
	config.Level = level
	config.OutputPaths = []string{"stdout"}
	config.EncoderConfig.TimeKey = "ts"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.InitialFields = map[string]any{
		"service": service,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}
