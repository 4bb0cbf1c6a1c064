// Package logging builds zap loggers and maps processing priority names onto zap levels.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultPriority is the priority used when none is configured.
const DefaultPriority = "warning"

// PriorityKey is the property holding a logging priority.
const PriorityKey = "logging.priority"

var priorities = map[string]zapcore.Level{
	"fatal":       zapcore.FatalLevel,
	"critical":    zapcore.DPanicLevel,
	"error":       zapcore.ErrorLevel,
	"warning":     zapcore.WarnLevel,
	"notice":      zapcore.InfoLevel,
	"information": zapcore.InfoLevel,
	"debug":       zapcore.DebugLevel,
	"trace":       zapcore.DebugLevel,
}

// ParsePriority converts a priority name ("warning", "PRIO_DEBUG", ...) to a zap level.
func ParsePriority(name string) (zapcore.Level, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "prio_")
	if key == "" {
		key = DefaultPriority
	}
	level, ok := priorities[key]
	if !ok {
		return zapcore.InvalidLevel, fmt.Errorf("invalid logging priority %q", name)
	}
	return level, nil
}

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level zap.AtomicLevel) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}

// WithPriority returns a logger that drops entries below level.
// A logger can only be made quieter; a lower level than the core's is ignored.
func WithPriority(logger *zap.Logger, level zapcore.Level) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	if level <= zapcore.LevelOf(logger.Core()) {
		return logger
	}
	return logger.WithOptions(zap.IncreaseLevel(level))
}
