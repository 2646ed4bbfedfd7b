// ABOUTME: Logger construction for the player and renderer
// ABOUTME: Builds a zap logger writing to a file, plus coloured stderr in debug mode
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a sugared logger writing to path. Debug builds also log to
// stderr at debug level with coloured levels. An empty path logs to stderr
// only.
func New(debug bool, path string) (*zap.SugaredLogger, error) {
	var loggerConfig zap.Config

	if debug {
		loggerConfig = zap.NewDevelopmentConfig()
		loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		loggerConfig.OutputPaths = []string{"stderr"}
	} else {
		loggerConfig = zap.NewProductionConfig()
		loggerConfig.Encoding = "console"
		loggerConfig.OutputPaths = nil
	}

	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}
		loggerConfig.OutputPaths = append(loggerConfig.OutputPaths, path)
	}
	if len(loggerConfig.OutputPaths) == 0 {
		loggerConfig.OutputPaths = []string{"stderr"}
	}

	loggerConfig.EncoderConfig.EncodeCaller = nil
	loggerConfig.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05.000"))
	}
	loggerConfig.EncoderConfig.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(fmt.Sprintf("%-12s", name))
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger.Sugar(), nil
}
