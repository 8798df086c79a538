// Package logging builds the zap logger used across svcctl.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sharkusmanch/svcctl/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger writing JSON to a rotated file at cfg.Output (when
// set) and human-readable lines to console. The returned close function
// flushes and closes the file.
func New(cfg config.LogConfig, console io.Writer) (*zap.Logger, func() error, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(console), level),
	}

	closeFn := func() error { return nil }

	if cfg.Output != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Output), 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		fileWriter := &lumberjack.Logger{
			Filename:   cfg.Output,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     28, // days
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(fileWriter), level))
		closeFn = fileWriter.Close
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))

	return logger, func() error {
		_ = logger.Sync()
		return closeFn()
	}, nil
}
