package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

// LocalConfig holds the user configuration read from ~/.courseforge/config.yaml
type LocalConfig struct {
	LogLevel        string        `yaml:"log_level"`
	AssetsDir       string        `yaml:"assets_dir,omitempty"`
	DefaultLanguage string        `yaml:"default_language,omitempty"`
	Runner          RunnerConfig  `yaml:"runner"`
	History         HistoryConfig `yaml:"history"`
}

// RunnerConfig holds test execution settings
type RunnerConfig struct {
	Executor       string             `yaml:"executor"` // local or docker
	TimeoutSeconds int                `yaml:"timeout_seconds"`
	Harness        string             `yaml:"harness"` // auto, mocha or builtin
	Node           string             `yaml:"node"`
	Python         string             `yaml:"python"`
	Docker         DockerRunnerConfig `yaml:"docker"`
}

// DockerRunnerConfig holds Docker executor settings
type DockerRunnerConfig struct {
	Images     map[string]string `yaml:"images"`
	MemoryMB   int               `yaml:"memory_mb"`
	CPULimit   float64           `yaml:"cpu_limit"`
	NetworkOff bool              `yaml:"network_off"`
}

// HistoryConfig controls the test run history database
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"` // defaults to <dir>/history/runs.db
}

// Timeout returns the runner timeout as a duration
func (r RunnerConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

var (
	logLevels = []string{"debug", "info", "warn", "error"}
	executors = []string{"local", "docker"}
	harnesses = []string{"auto", "mocha", "builtin"}
	languages = []string{"javascript", "python"}
)

// Validate rejects values the runtime cannot act on
func (c *LocalConfig) Validate() error {
	var errs []error
	if !slices.Contains(logLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("log_level %q must be one of %v", c.LogLevel, logLevels))
	}
	if c.DefaultLanguage != "" && !slices.Contains(languages, c.DefaultLanguage) {
		errs = append(errs, fmt.Errorf("default_language %q must be one of %v", c.DefaultLanguage, languages))
	}
	if !slices.Contains(executors, c.Runner.Executor) {
		errs = append(errs, fmt.Errorf("runner.executor %q must be one of %v", c.Runner.Executor, executors))
	}
	if !slices.Contains(harnesses, c.Runner.Harness) {
		errs = append(errs, fmt.Errorf("runner.harness %q must be one of %v", c.Runner.Harness, harnesses))
	}
	if c.Runner.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("runner.timeout_seconds must be positive"))
	}
	if c.Runner.Docker.MemoryMB < 0 || c.Runner.Docker.CPULimit < 0 {
		errs = append(errs, fmt.Errorf("runner.docker limits must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// ErrInvalidConfig wraps validation failures
var ErrInvalidConfig = errors.New("invalid configuration")

// Dir returns the configuration directory: $COURSEFORGE_HOME or ~/.courseforge
func Dir() (string, error) {
	if dir := os.Getenv("COURSEFORGE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".courseforge"), nil
}

// EnsureDir creates the configuration directory and its subdirectories
func EnsureDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}

	for _, subdir := range []string{"", "logs", "history"} {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}
	return dir, nil
}

// DefaultLocalConfig returns sensible defaults
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		LogLevel: "warn",
		Runner: RunnerConfig{
			Executor:       "local",
			TimeoutSeconds: 30,
			Harness:        "auto",
			Node:           "node",
			Python:         "python3",
			Docker: DockerRunnerConfig{
				Images: map[string]string{
					"javascript": "node:22-alpine",
					"python":     "python:3.12-alpine",
				},
				MemoryMB:   256,
				CPULimit:   0.5,
				NetworkOff: true,
			},
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// HistoryPath resolves where the run history database lives
func (c *LocalConfig) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history", "runs.db"), nil
}

// Path returns the location of config.yaml
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadLocalConfig loads configuration from the configuration directory and
// applies environment overrides. A missing file yields the defaults.
func LoadLocalConfig() (*LocalConfig, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path
func LoadFile(path string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveLocalConfig validates cfg and writes it to the configuration directory
func SaveLocalConfig(cfg *LocalConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir, err := EnsureDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
