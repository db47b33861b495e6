// Package config loads courseforge settings from a YAML file with
// environment variable overrides.
package config

import (
	"os"
	"strconv"
)

// applyEnv overrides file settings with COURSEFORGE_* variables
func applyEnv(cfg *LocalConfig) {
	cfg.LogLevel = getEnv("COURSEFORGE_LOG_LEVEL", cfg.LogLevel)
	cfg.AssetsDir = getEnv("COURSEFORGE_ASSETS_DIR", cfg.AssetsDir)
	cfg.DefaultLanguage = getEnv("COURSEFORGE_LANGUAGE", cfg.DefaultLanguage)

	cfg.Runner.Executor = getEnv("COURSEFORGE_EXECUTOR", cfg.Runner.Executor)
	cfg.Runner.TimeoutSeconds = getEnvInt("COURSEFORGE_TIMEOUT", cfg.Runner.TimeoutSeconds)
	cfg.Runner.Harness = getEnv("COURSEFORGE_HARNESS", cfg.Runner.Harness)
	cfg.Runner.Node = getEnv("COURSEFORGE_NODE", cfg.Runner.Node)
	cfg.Runner.Python = getEnv("COURSEFORGE_PYTHON", cfg.Runner.Python)
	cfg.Runner.Docker.MemoryMB = getEnvInt("COURSEFORGE_DOCKER_MEMORY_MB", cfg.Runner.Docker.MemoryMB)
	cfg.Runner.Docker.CPULimit = getEnvFloat("COURSEFORGE_DOCKER_CPU_LIMIT", cfg.Runner.Docker.CPULimit)

	cfg.History.Enabled = getEnvBool("COURSEFORGE_HISTORY", cfg.History.Enabled)
	cfg.History.Path = getEnv("COURSEFORGE_HISTORY_PATH", cfg.History.Path)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
