package logs

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"

	"pandemic/internal/config"
)

func TestInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pandemic.log")
	if err := Init("test", config.LogConfig{FileDir: path, Level: "debug"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	Info("room created")
	_ = Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected log output in file")
	}
}

func TestSetLevel(t *testing.T) {
	SetLevel("warn")
	if level.Level() != zapcore.WarnLevel {
		t.Errorf("expected warn, got %s", level.Level())
	}
	SetLevel("bogus")
	if level.Level() != zapcore.InfoLevel {
		t.Errorf("unknown level should fall back to info, got %s", level.Level())
	}
}
