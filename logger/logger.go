// Package logger builds the zap loggers handed to observer.WithLogger.
package logger

import (
	"github.com/blendle/zapdriver"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field keys shared by every component logging through this package.
const (
	ServiceKey   = "service"
	ComponentKey = "component"
)

// NewStackdriverDevelopment returns a *zap.Logger writing Google
// Stackdriver structured entries to stdout, enabled at DebugLevel and above.
// Registry debug traces (subscriptions, halted dispatches) are visible.
func NewStackdriverDevelopment(service string) (*zap.Logger, error) {
	return newLoggerFromConfig(zapdriver.NewDevelopmentConfig(), service)
}

// NewStackdriverProduction returns a *zap.Logger writing Google
// Stackdriver structured entries to stdout, enabled at InfoLevel and above.
func NewStackdriverProduction(service string) (*zap.Logger, error) {
	return newLoggerFromConfig(zapdriver.NewProductionConfig(), service)
}

func newLoggerFromConfig(cfg zap.Config, service string) (*zap.Logger, error) {
	if service == "" {
		return nil, errors.New("empty service name")
	}

	cfg.OutputPaths = []string{"stdout"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{
		ServiceKey: service,
	}

	log, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "config build")
	}

	return log, nil
}

// Named scopes log to component: the logger name gets the component
// appended and every entry carries it as a field. A nil log yields a no-op
// logger.
func Named(log *zap.Logger, component string) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}

	return log.Named(component).With(zap.String(ComponentKey, component))
}
