// Package logger provides the process-wide structured logger.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init builds the global logger for the given environment. Production logs
// JSON, tests log warnings and above so processor runs stay quiet, and any
// other environment gets the console encoder.
func Init(env string) {
	once.Do(func() {
		base, err := build(env)
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

func build(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "test":
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		return cfg.Build()
	default:
		return zap.NewDevelopment()
	}
}

// Get returns the global sugared logger, initializing a development logger
// when Init has not run.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
