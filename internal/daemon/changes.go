package daemon

import (
	"log/slog"

	"github.com/1broseidon/multibox/internal/engine"
)

// ChangeLogger reports engine transitions. Post failures are warnings;
// everything else is logged at debug level.
type ChangeLogger struct {
	logger *slog.Logger
}

// NewChangeLogger returns an observer logging to logger.
func NewChangeLogger(logger *slog.Logger) *ChangeLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChangeLogger{logger: logger}
}

var _ engine.Observer = (*ChangeLogger)(nil)

func (l *ChangeLogger) EngineChanged(c engine.Change) {
	attrs := []any{
		"kind", c.Kind.String(),
		"mode", c.Mode.String(),
		"active", c.Active,
		"session", c.Session,
	}
	if c.Detail != "" {
		attrs = append(attrs, "detail", c.Detail)
	}
	if c.Kind == engine.ChangePostFailure {
		l.logger.Warn("input could not be delivered; further failures are counted in status", attrs...)
		return
	}
	l.logger.Debug("engine changed", attrs...)
}

// ParseLogLevel maps log_level to a slog level. Unknown values are info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
