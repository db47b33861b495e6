package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDir(t *testing.T) {
	t.Setenv("COURSEFORGE_HOME", "")
	t.Setenv("HOME", "/home/learner")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error = %v", err)
	}
	if dir != filepath.Join("/home/learner", ".courseforge") {
		t.Errorf("Dir() = %q", dir)
	}

	t.Setenv("COURSEFORGE_HOME", "/tmp/cf")
	if dir, _ := Dir(); dir != "/tmp/cf" {
		t.Errorf("Dir() with COURSEFORGE_HOME = %q", dir)
	}
}

func TestEnsureDir(t *testing.T) {
	home := filepath.Join(t.TempDir(), "cf")
	t.Setenv("COURSEFORGE_HOME", home)

	dir, err := EnsureDir()
	if err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if dir != home {
		t.Errorf("EnsureDir() = %q, want %q", dir, home)
	}
	for _, sub := range []string{"logs", "history"} {
		if info, err := os.Stat(filepath.Join(dir, sub)); err != nil || !info.IsDir() {
			t.Errorf("EnsureDir() did not create %s", sub)
		}
	}
}

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if diff := cmp.Diff(DefaultLocalConfig(), cfg); diff != "" {
		t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
assets_dir: /srv/course-assets
default_language: python
runner:
  executor: docker
  timeout_seconds: 10
  harness: builtin
  docker:
    images:
      python: python:3.13-slim
    memory_mb: 512
history:
  enabled: false
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	want := DefaultLocalConfig()
	want.LogLevel = "debug"
	want.AssetsDir = "/srv/course-assets"
	want.DefaultLanguage = "python"
	want.Runner.Executor = "docker"
	want.Runner.TimeoutSeconds = 10
	want.Runner.Harness = "builtin"
	want.Runner.Docker.Images["python"] = "python:3.13-slim"
	want.Runner.Docker.MemoryMB = 512
	want.History.Enabled = false

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
	}
	if cfg.Runner.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %s", cfg.Runner.Timeout())
	}
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	path := writeConfig(t, "runner:\n  executor: docker\n")
	t.Setenv("COURSEFORGE_EXECUTOR", "local")
	t.Setenv("COURSEFORGE_TIMEOUT", "5")
	t.Setenv("COURSEFORGE_HISTORY", "false")
	t.Setenv("COURSEFORGE_DOCKER_CPU_LIMIT", "not-a-number")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Runner.Executor != "local" || cfg.Runner.TimeoutSeconds != 5 {
		t.Errorf("Runner = %+v", cfg.Runner)
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want env override")
	}
	if cfg.Runner.Docker.CPULimit != 0.5 {
		t.Errorf("CPULimit = %v, want default kept for bad value", cfg.Runner.Docker.CPULimit)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "log level", content: "log_level: loud\n"},
		{name: "executor", content: "runner:\n  executor: vm\n"},
		{name: "harness", content: "runner:\n  harness: jest\n"},
		{name: "timeout", content: "runner:\n  timeout_seconds: 0\n"},
		{name: "language", content: "default_language: cobol\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tc.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("LoadFile() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoadFile_Malformed(t *testing.T) {
	_, err := LoadFile(writeConfig(t, "runner: [\n"))
	if err == nil || errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadFile() error = %v, want parse error", err)
	}
}

func TestSaveLocalConfig(t *testing.T) {
	home := filepath.Join(t.TempDir(), "cf")
	t.Setenv("COURSEFORGE_HOME", home)

	cfg := DefaultLocalConfig()
	cfg.DefaultLanguage = "javascript"
	if err := SaveLocalConfig(cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	loaded, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLocalConfig_Invalid(t *testing.T) {
	t.Setenv("COURSEFORGE_HOME", filepath.Join(t.TempDir(), "cf"))

	cfg := DefaultLocalConfig()
	cfg.Runner.Executor = "podman"
	if err := SaveLocalConfig(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("SaveLocalConfig() error = %v, want ErrInvalidConfig", err)
	}

	path, err := Path()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("invalid config was written to %s", path)
	}
}

func TestHistoryPath(t *testing.T) {
	t.Setenv("COURSEFORGE_HOME", "/tmp/cf")

	cfg := DefaultLocalConfig()
	if got, _ := cfg.HistoryPath(); got != filepath.Join("/tmp/cf", "history", "runs.db") {
		t.Errorf("HistoryPath() = %q", got)
	}

	cfg.History.Path = "/data/runs.db"
	if got, _ := cfg.HistoryPath(); got != "/data/runs.db" {
		t.Errorf("HistoryPath() = %q", got)
	}
}
