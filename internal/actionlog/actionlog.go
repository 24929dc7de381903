// Package actionlog writes a rotating, human-readable log of engine actions
// such as mode changes, swaps and preset applies.
package actionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1broseidon/multibox/internal/config"
)

// Level defines the logging verbosity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Action is the kind of engine action being logged.
type Action string

const (
	ActionMode         Action = "MODE"
	ActionActivate     Action = "ACTIVATE"
	ActionRelease      Action = "RELEASE"
	ActionSessionOpen  Action = "SESSION-OPEN"
	ActionSessionClose Action = "SESSION-CLOSE"
	ActionSwap         Action = "SWAP"
	ActionReslot       Action = "RESLOT"
	ActionMark         Action = "MARK"
	ActionUnmark       Action = "UNMARK"
	ActionDisconnect   Action = "DISCONNECT"
	ActionPreset       Action = "PRESET"
	ActionPriority     Action = "PRIORITY"
	ActionAutoFind     Action = "AUTO-FIND"
	ActionGroupAdd     Action = "GROUP-ADD"
	ActionGroupRemove  Action = "GROUP-REMOVE"
	ActionGroupSelect  Action = "GROUP-SELECT"
	ActionPrune        Action = "PRUNE"
	ActionMultiClick   Action = "MULTI-CLICK"
	ActionZeroPower    Action = "ZERO-POWER"
	ActionPostFail     Action = "POST-FAIL"
)

func actionLevel(action Action) Level {
	switch action {
	case ActionMultiClick, ActionZeroPower, ActionGroupSelect:
		return LevelDebug
	case ActionPostFail, ActionPrune:
		return LevelWarn
	default:
		return LevelInfo
	}
}

// Config holds configuration for the action log.
type Config struct {
	Enabled   bool
	Level     Level
	FilePath  string
	MaxSizeMB int
	MaxFiles  int
}

// FromConfig converts the logging section of the app config.
func FromConfig(cfg *config.Config) Config {
	lc := cfg.GetLoggingConfig()
	return Config{
		Enabled:   lc.Enabled,
		Level:     ParseLevel(lc.Level),
		FilePath:  lc.File,
		MaxSizeMB: lc.MaxSizeMB,
		MaxFiles:  lc.MaxFiles,
	}
}

// Logger appends action entries to a size-rotated file. A nil or disabled
// Logger discards everything.
type Logger struct {
	mu          sync.Mutex
	file        *os.File
	config      Config
	currentSize int64
	now         func() time.Time
}

// New opens the log file named by cfg.
func New(cfg Config) (*Logger, error) {
	if !cfg.Enabled {
		return &Logger{config: cfg, now: time.Now}, nil
	}

	dir := filepath.Dir(cfg.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.FilePath, err)
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat log file: %w", err)
	}

	return &Logger{
		file:        f,
		config:      cfg,
		currentSize: stat.Size(),
		now:         time.Now,
	}, nil
}

// Log records one action. session is the switching session id, if any, and
// ordinal the on-screen controller number, or a negative value for none.
func (l *Logger) Log(action Action, session string, ordinal int, details map[string]any) {
	if l == nil || !l.config.Enabled {
		return
	}
	if actionLevel(action) < l.config.Level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	maxBytes := int64(l.config.MaxSizeMB) * 1024 * 1024
	if maxBytes > 0 && l.currentSize >= maxBytes {
		if err := l.rotate(); err != nil {
			fmt.Fprintf(os.Stderr, "action log rotation failed: %v\n", err)
		}
		if l.file == nil {
			return
		}
	}

	n, err := l.file.WriteString(formatEntry(l.now(), action, session, ordinal, details))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to write action log entry: %v\n", err)
		return
	}
	l.currentSize += int64(n)
}

func formatEntry(ts time.Time, action Action, session string, ordinal int, details map[string]any) string {
	var sb strings.Builder
	sb.WriteString(ts.Format("2006-01-02 15:04:05"))
	sb.WriteString(" [")
	sb.WriteString(string(action))
	sb.WriteString("]")

	if session != "" {
		sb.WriteString(" session=")
		sb.WriteString(session)
	}
	if ordinal >= 0 {
		fmt.Fprintf(&sb, " controller=%d", ordinal)
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch val := details[k].(type) {
		case string:
			fmt.Fprintf(&sb, " %s=%q", k, val)
		default:
			fmt.Fprintf(&sb, " %s=%v", k, val)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// rotate shifts actions.log to actions.log.1, .1 to .2 and so on, keeping
// MaxFiles rotated files.
func (l *Logger) rotate() error {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}

	basePath := l.config.FilePath
	for i := l.config.MaxFiles; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", basePath, i)
		if i == l.config.MaxFiles {
			os.Remove(oldPath)
			continue
		}
		os.Rename(oldPath, fmt.Sprintf("%s.%d", basePath, i+1))
	}

	if l.config.MaxFiles > 0 {
		if err := os.Rename(basePath, basePath+".1"); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	} else {
		os.Remove(basePath)
	}

	f, err := os.OpenFile(basePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	l.file = f
	l.currentSize = 0
	return nil
}

// ParseLevel converts a level name, defaulting to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}
