package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"upiqr/internal/platform/config"
)

func restoreGlobals(t *testing.T) {
	level, global := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(level)
		log.Logger = global
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":  zerolog.DebugLevel,
		" WARN ": zerolog.WarnLevel,
		"error":  zerolog.ErrorLevel,
		"":       zerolog.InfoLevel,
		"loud":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInit_FileOutput(t *testing.T) {
	restoreGlobals(t)
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	l := Init(config.LoggingConfig{Level: "warn", Output: "file", FilePath: path}, "upiqr-server")
	l.Info().Msg("dropped")
	l.Warn().Msg("kept")
	log.Error().Msg("global")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "dropped") {
		t.Error("info event written at warn level")
	}
	if !strings.Contains(out, `"message":"kept"`) || !strings.Contains(out, `"service":"upiqr-server"`) {
		t.Errorf("log file = %s", out)
	}
	if !strings.Contains(out, `"message":"global"`) {
		t.Error("log.Logger was not replaced")
	}
}

func TestInit_UnwritableFileFallsBack(t *testing.T) {
	restoreGlobals(t)
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	w, err := writer(config.LoggingConfig{Output: "file", FilePath: filepath.Join(blocker, "x.log")})
	if err == nil || w != os.Stdout {
		t.Errorf("writer = %v, %v; want stdout and an error", w, err)
	}
}
