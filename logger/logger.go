// Package logger wraps a process-wide zap logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the global sugared logger. It discards everything until
// InitLogger runs.
var Logger = zap.NewNop().Sugar()

type LoggerConfig struct {
	Debug     bool   // Enable debug level logging
	LogFormat string // "json" or "human"
	LogFile   string // Path to log file (optional)
	// Quiet drops the stderr sink and keeps only LogFile.
	Quiet bool
}

func DefaultConfig() LoggerConfig {
	return LoggerConfig{LogFormat: "human"}
}

// InitLogger builds the global logger from config.
func InitLogger(config LoggerConfig) error {
	var zapConfig zap.Config
	switch config.LogFormat {
	case "json":
		zapConfig = zap.NewProductionConfig()
	case "human", "":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		if config.LogFile != "" {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
	default:
		return fmt.Errorf("unknown log format %q", config.LogFormat)
	}

	var outputs []string
	if !config.Quiet {
		outputs = append(outputs, "stderr")
	}
	if config.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.LogFile), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		outputs = append(outputs, config.LogFile)
	}
	zapConfig.OutputPaths = outputs
	zapConfig.ErrorOutputPaths = []string{"stderr"}

	if config.Debug {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		zapConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	l, err := zapConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Logger = l.Sugar()
	return nil
}

// Zap returns the desugared global logger.
func Zap() *zap.Logger { return Logger.Desugar() }

func LogInfo(message string, fields map[string]any) {
	Logger.Infow(message, flattenFields(fields)...)
}

func LogWarn(message string, fields map[string]any) {
	Logger.Warnw(message, flattenFields(fields)...)
}

func LogError(message string, err error, fields map[string]any) {
	kv := flattenFields(fields)
	if err != nil {
		kv = append(kv, "error", err.Error())
	}
	Logger.Errorw(message, kv...)
}

func LogDebug(message string, fields map[string]any) {
	Logger.Debugw(message, flattenFields(fields)...)
}

// WithFields returns a logger with fields added to every entry.
func WithFields(fields map[string]any) *zap.SugaredLogger {
	return Logger.With(flattenFields(fields)...)
}

// flattenFields turns a field map into sorted key/value pairs.
func flattenFields(fields map[string]any) []any {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	flat := make([]any, 0, 2*len(keys))
	for _, k := range keys {
		flat = append(flat, k, fields[k])
	}
	return flat
}

// Sync flushes buffered entries.
func Sync() error {
	return Logger.Sync()
}
