package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/andrescamacho/shopfloor-go/internal/infrastructure/config"
)

// NewLogger builds the process logger from configuration
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "ts"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zcfg.DisableCaller = !cfg.IncludeCaller
	zcfg.DisableStacktrace = !cfg.IncludeStacktrace
	zcfg.Sampling = nil

	if cfg.Format == "text" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	switch cfg.Output {
	case "stderr":
		zcfg.OutputPaths = []string{"stderr"}
	case "file":
		zcfg.OutputPaths = []string{cfg.FilePath}
	default:
		zcfg.OutputPaths = []string{"stdout"}
	}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	if len(cfg.Fields) > 0 {
		zcfg.InitialFields = make(map[string]interface{}, len(cfg.Fields))
		for k, v := range cfg.Fields {
			zcfg.InitialFields[k] = v
		}
	}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
