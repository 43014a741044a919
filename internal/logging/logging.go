package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"rmlong/internal/config"
)

const logFile = "rmlong.log"

// New creates a console logger on stderr, teeing into a rotated log file
// when cfg names a log directory. The returned closer releases the file.
func New(cfg config.LoggingCfg) (zerolog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}

	if cfg.Dir != "" {
		f, err := openLogFile(cfg.Dir, cfg.RotationDays)
		if err != nil {
			return zerolog.Nop(), nopCloser{}, err
		}
		out = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	return NewWithWriter(out, level), closer, nil
}

// NewWithWriter creates a logger writing human readable lines to w
func NewWithWriter(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// Nop returns a logger that discards everything
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ParseLevel maps a config level name to a zerolog level; empty means info
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}

func openLogFile(dir string, rotationDays int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	if rotationDays <= 0 {
		rotationDays = 30
	}
	filePath := filepath.Join(dir, logFile)
	rotateLogsIfNeeded(filePath, rotationDays)

	f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", filePath, err)
	}
	return f, nil
}

// rotateLogsIfNeeded renames a log file older than rotationDays aside
func rotateLogsIfNeeded(logPath string, rotationDays int) {
	info, err := os.Stat(logPath)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	if !info.ModTime().Before(cutoffTime) {
		return
	}

	timestamp := info.ModTime().Format("20060102-150405")
	if err := os.Rename(logPath, logPath+"."+timestamp); err != nil {
		return
	}
	cleanupOldLogs(logPath, rotationDays)
}

// cleanupOldLogs removes rotated log files older than rotationDays
func cleanupOldLogs(logPath string, rotationDays int) {
	logDir := filepath.Dir(logPath)
	prefix := filepath.Base(logPath) + "."

	entries, err := os.ReadDir(logDir)
	if err != nil {
		return
	}

	cutoffTime := time.Now().AddDate(0, 0, -rotationDays)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoffTime) {
			_ = os.Remove(filepath.Join(logDir, entry.Name()))
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
