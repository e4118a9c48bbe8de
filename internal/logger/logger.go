package logger

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
)

var logFile *os.File

// Init installs the default slog logger. Logs go to a file so they do not
// tear the terminal UI; LAZYBAN_LOG_STDERR=1 sends them to stderr instead.
func Init(levelOverride string) error {
	level := slog.LevelInfo
	if os.Getenv("LAZYBAN_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	if levelOverride != "" {
		parsed, err := ParseLevel(levelOverride)
		if err != nil {
			return err
		}
		level = parsed
	}

	if os.Getenv("LAZYBAN_LOG_STDERR") != "1" {
		if path := resolveLogPath(); path != "" {
			if file, err := openLogFile(path); err == nil {
				logFile = file
				slog.SetDefault(slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{
					Level: level,
				})))
				return nil
			}
		}
	}

	handler := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		Level:           charmlog.Level(level),
		ReportTimestamp: true,
		Prefix:          "lazyban",
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// Close flushes and closes the log file, if one was opened.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

func ParseLevel(value string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	case "":
		return slog.LevelInfo, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %q (use debug|info|warn|error)", value)
	}
}

func resolveLogPath() string {
	if path := os.Getenv("LAZYBAN_LOG_FILE"); path != "" {
		return path
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, "lazyban", "lazyban.log")
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
