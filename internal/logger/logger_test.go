package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLogRotation(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "meshview.log")

	// 1MB is the smallest size lumberjack allows.
	err := InitWithOptions(Options{
		Level: "debug",
		File:  FileConfig{Path: logFile, MaxSizeMB: 1, MaxBackups: 2, MaxAgeDays: 1},
	})
	if err != nil {
		t.Fatalf("InitWithOptions: %v", err)
	}
	defer Reset()

	payload := strings.Repeat("x", 200)
	for i := range 15000 {
		Sugar.Infof("entry %d: %s", i, payload)
	}
	Sync()

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	rotated := 0
	for _, f := range files {
		name := f.Name()
		if name == "meshview.log" || !strings.HasPrefix(name, "meshview") {
			continue
		}
		rotated++
		// meshview-YYYY-MM-DDTHH-MM-SS.SSS.log
		if !strings.Contains(name, "-20") {
			t.Errorf("rotated file %s lacks a timestamp", name)
		}
	}
	if rotated == 0 {
		t.Errorf("no rotated files among %d entries", len(files))
	}
}

func TestLevels(t *testing.T) {
	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{"error", []string{"ERROR"}, []string{"WARN", "INFO", "DEBUG"}},
		{"warn", []string{"ERROR", "WARN"}, []string{"INFO", "DEBUG"}},
		{"info", []string{"ERROR", "WARN", "INFO"}, []string{"DEBUG"}},
		{"", []string{"INFO"}, []string{"DEBUG"}},
		{"debug", []string{"ERROR", "WARN", "INFO", "DEBUG"}, nil},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			if err := InitWithOptions(Options{Level: tt.level, Console: &buf}); err != nil {
				t.Fatal(err)
			}
			defer Reset()

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			out := buf.String()
			for _, want := range tt.expected {
				if !strings.Contains(out, want) {
					t.Errorf("expected %s in output:\n%s", want, out)
				}
			}
			for _, bad := range tt.excluded {
				if strings.Contains(out, bad) {
					t.Errorf("unexpected %s in output:\n%s", bad, out)
				}
			}
		})
	}
}

func TestUnknownLevel(t *testing.T) {
	if err := InitWithOptions(Options{Level: "verbose"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := SetLevel("loud"); err == nil {
		t.Error("SetLevel should reject unknown levels")
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "info", Console: &buf}); err != nil {
		t.Fatal(err)
	}
	defer Reset()

	Debug("hidden")
	if err := SetLevel("debug"); err != nil {
		t.Fatal(err)
	}
	Debug("shown", zap.String("mesh", "mesh1"))
	Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug entry logged at info level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "mesh1") {
		t.Errorf("debug entry missing after SetLevel:\n%s", out)
	}
}

func TestNamed(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithOptions(Options{Level: "info", Console: &buf}); err != nil {
		t.Fatal(err)
	}
	defer Reset()

	Named("scene").Info("appended")
	Sync()
	if !strings.Contains(buf.String(), "scene") {
		t.Errorf("logger name missing:\n%s", buf.String())
	}
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/meshview.log")
	want := FileConfig{Path: "/tmp/meshview.log", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 7, Compress: true}
	if cfg != want {
		t.Errorf("DefaultFileConfig = %+v, want %+v", cfg, want)
	}
}

func TestNopBeforeInit(t *testing.T) {
	Reset()

	// Must not panic without Init
	Debug("debug before init")
	Info("info before init")
	Named("scene").Warn("named before init")
}
