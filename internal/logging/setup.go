package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/constants"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLevel converts a level name such as "debug" or "error" into a slog.Level.
// Unknown names fall back to info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Setup creates the log directory, opens both log files and installs the handler as
// the default slog logger. The returned function closes the files.
func Setup(cfg config.LoggerConfig, mirror io.Writer) (func() error, error) {
	if err := os.MkdirAll(cfg.Dir, 0750); err != nil {
		return nil, fmt.Errorf("error creating log directory: %w", err)
	}

	errorLog := &lumberjack.Logger{
		Filename: filepath.Join(cfg.Dir, constants.ErrorLogFile),
		MaxSize:  cfg.MaxSizeMB,
	}
	outputLog := &lumberjack.Logger{
		Filename: filepath.Join(cfg.Dir, constants.OutputLogFile),
		MaxSize:  cfg.MaxSizeMB,
	}

	handler := NewHandler(Options{
		Level:  ParseLevel(cfg.Level),
		Output: outputLog,
		Errors: errorLog,
		Mirror: mirror,
	})
	slog.SetDefault(slog.New(handler))

	return func() error {
		return errors.Join(errorLog.Close(), outputLog.Close())
	}, nil
}
