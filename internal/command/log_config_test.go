package command

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/joeycumines/gridedit/internal/config"
)

func TestResolveLogConfig_Defaults(t *testing.T) {
	t.Setenv("GRIDEDIT_LOG_LEVEL", "")
	os.Unsetenv("GRIDEDIT_LOG_LEVEL")
	t.Setenv("GRIDEDIT_LOG_FILE", "")
	os.Unsetenv("GRIDEDIT_LOG_FILE")

	lc, err := resolveLogConfig("", "", 0, config.NewConfig())
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	if lc.logFile != nil {
		t.Fatal("expected nil logFile when no path specified")
	}
	if lc.level != slog.LevelInfo {
		t.Fatalf("expected level Info, got %v", lc.level)
	}
	if lc.bufferSize != 1000 {
		t.Fatalf("expected bufferSize 1000, got %d", lc.bufferSize)
	}
}

func TestResolveLogConfig_FlagOverridesConfig(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.level", "warn")
	cfg.SetGlobalOption("log.file", "/should/not/use/this")

	lc, err := resolveLogConfig(logPath, "debug", 500, cfg)
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	defer func() {
		if lc.logFile != nil {
			lc.logFile.Close()
		}
	}()

	if lc.level != slog.LevelDebug {
		t.Fatalf("expected level Debug (flag override), got %v", lc.level)
	}
	if lc.logFile == nil {
		t.Fatal("expected logFile from flag path")
	}
	if lc.bufferSize != 500 {
		t.Fatalf("expected bufferSize 500 (flag override), got %d", lc.bufferSize)
	}
}

func TestResolveLogConfig_ConfigFallback(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "config-log.log")

	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.file", logPath)
	cfg.SetGlobalOption("log.level", "warn")
	cfg.SetGlobalOption("log.buffer-size", "2000")
	cfg.SetCommandOption("edit", "log.level", "error")

	lc, err := resolveLogConfig("", "", 0, cfg)
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	defer func() {
		if lc.logFile != nil {
			lc.logFile.Close()
		}
	}()

	if lc.level != slog.LevelError {
		t.Fatalf("expected the [edit] level to win, got %v", lc.level)
	}
	if lc.bufferSize != 2000 {
		t.Fatalf("expected bufferSize 2000, got %d", lc.bufferSize)
	}
	if lc.logFile == nil {
		t.Fatal("expected logFile from config")
	}
	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}

func TestResolveLogConfig_EnvOverridesConfig(t *testing.T) {
	t.Setenv("GRIDEDIT_LOG_LEVEL", "debug")
	cfg := config.NewConfig()
	cfg.SetGlobalOption("log.level", "error")

	lc, err := resolveLogConfig("", "", 0, cfg)
	if err != nil {
		t.Fatalf("resolveLogConfig: %v", err)
	}
	if lc.level != slog.LevelDebug {
		t.Fatalf("expected env level Debug, got %v", lc.level)
	}
}

func TestResolveLogConfig_InvalidLevel(t *testing.T) {
	if _, err := resolveLogConfig("", "verbose", 0, config.NewConfig()); err == nil {
		t.Fatal("expected error for invalid level")
	}
}

func TestResolveLogConfig_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := resolveLogConfig(filepath.Join(blocker, "x.log"), "", 0, nil); err == nil {
		t.Fatal("expected error for a path below a regular file")
	}
}
