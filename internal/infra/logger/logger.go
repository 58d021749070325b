package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const serviceName = "json-to-excel"

// New builds a JSON logger at the given level. Non-production environments
// get caller info and stack traces on warnings.
func New(level, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	opts := []zap.Option{zap.Fields(zap.String("service", serviceName))}
	switch strings.ToLower(env) {
	case "prod", "production":
	default:
		cfg.Development = true
		opts = append(opts, zap.AddStacktrace(zapcore.WarnLevel))
	}

	return cfg.Build(opts...)
}
