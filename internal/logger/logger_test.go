package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/studyplan/internal/constants"
)

func TestInitCreatesLogFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{ConfigDir: configDir}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	if Logger == nil {
		t.Fatal("Logger is nil after initialization")
	}

	// Warn is the default level, so this line must reach the file.
	Warn("recompute skipped", "reason", "test")

	logFile := filepath.Join(configDir, "logs", constants.AppName+".log")
	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected warning to be written to the log file")
	}
}

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		debug bool
		info  bool
	}{
		{name: "default", cfg: Config{}, debug: false, info: false},
		{name: "stderr", cfg: Config{Stderr: true}, debug: false, info: true},
		{name: "debug", cfg: Config{Debug: true}, debug: true, info: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.ConfigDir = t.TempDir()
			if err := Init(tt.cfg); err != nil {
				t.Fatalf("Init failed: %v", err)
			}
			t.Cleanup(func() { Logger = nil })

			level := Logger.GetLevel()
			if got := level <= log.DebugLevel; got != tt.debug {
				t.Errorf("debug enabled = %v, want %v", got, tt.debug)
			}
			if got := level <= log.InfoLevel; got != tt.info {
				t.Errorf("info enabled = %v, want %v", got, tt.info)
			}
		})
	}
}

func TestHelpersWithoutInit(t *testing.T) {
	Logger = nil

	// None of these may panic before Init.
	Debug("debug")
	Info("info")
	Warn("warn")
	Error("error")
	if With("k", "v") != nil {
		t.Error("With should return nil before Init")
	}
}

func TestInitJSON(t *testing.T) {
	configDir := t.TempDir()
	if err := Init(Config{ConfigDir: configDir, JSON: true}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Error("store unavailable", "attempt", 2)

	data, err := os.ReadFile(filepath.Join(configDir, "logs", constants.AppName+".log"))
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	line := strings.TrimSpace(string(data))
	if !strings.HasPrefix(line, "{") || !strings.Contains(line, `"msg":"store unavailable"`) {
		t.Errorf("expected a JSON log line, got %q", line)
	}
}
