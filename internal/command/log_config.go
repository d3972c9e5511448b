package command

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/joeycumines/gridedit/internal/config"
	"github.com/joeycumines/gridedit/internal/logging"
)

// logConfig holds resolved logging configuration for the editor.
type logConfig struct {
	level      slog.Level
	logFile    io.WriteCloser // nil if no file logging
	bufferSize int
}

// resolveLogConfig resolves log configuration from flags and config defaults.
// Flag values take precedence; config values (and their env overrides) are
// used when flags have their zero value. The caller must Close() the
// returned logConfig.logFile when done (if non-nil).
func resolveLogConfig(flagPath, flagLevel string, flagBufferSize int, cfg *config.Config) (logConfig, error) {
	schema := config.DefaultSchema()
	var lc logConfig

	resolveInt := func(key string, def int) int {
		n, err := schema.ResolveInt(cfg, "edit", key)
		if err != nil || n <= 0 {
			return def
		}
		return n
	}

	levelStr := flagLevel
	if levelStr == "" {
		levelStr = schema.Resolve(cfg, "edit", "log.level")
	}
	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return lc, err
	}
	lc.level = level

	lc.bufferSize = flagBufferSize
	if lc.bufferSize <= 0 {
		lc.bufferSize = resolveInt("log.buffer-size", logging.DefaultBufferSize)
	}

	logPath := flagPath
	if logPath == "" {
		logPath = schema.Resolve(cfg, "edit", "log.file")
	}
	if logPath != "" {
		maxSizeMB := resolveInt("log.max-size-mb", 10)
		maxFiles, err := schema.ResolveInt(cfg, "edit", "log.max-files")
		if err != nil || maxFiles < 0 {
			maxFiles = 5
		}
		// Zero maxFiles is valid (no backups, just truncate on rotate).

		w, err := logging.OpenRotatingFile(logPath, maxSizeMB, maxFiles)
		if err != nil {
			return lc, fmt.Errorf("failed to open log file %s: %w", logPath, err)
		}
		lc.logFile = w
	}

	return lc, nil
}
