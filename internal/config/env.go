// Package config provides centralized configuration management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// ForgeEnv holds all promptforge environment variables.
type ForgeEnv struct {
	// Provider is the default LLM provider id (PROMPTFORGE_PROVIDER)
	Provider string

	// Model is the default generation model (PROMPTFORGE_MODEL)
	Model string

	// AnthropicKey is the Anthropic API key (ANTHROPIC_API_KEY)
	AnthropicKey string

	// AnthropicBaseURL overrides the Anthropic API base URL (ANTHROPIC_BASE_URL)
	AnthropicBaseURL string

	// OpenAIKey is the OpenAI API key (OPENAI_API_KEY)
	OpenAIKey string

	// OpenAIBaseURL overrides the OpenAI-compatible base URL (OPENAI_BASE_URL)
	OpenAIBaseURL string

	// MetricsPort enables the metrics endpoint when positive (PROMPTFORGE_METRICS_PORT)
	MetricsPort int
}

var (
	env     *ForgeEnv
	envOnce sync.Once
)

// DefaultModel is used when neither the environment nor the stored model
// configuration names one, and backfilled into legacy records on migration.
const DefaultModel = "gemini-2.5-flash"

// Env returns the singleton environment configuration.
// Thread-safe, loads once on first call.
func Env() *ForgeEnv {
	envOnce.Do(func() {
		env = &ForgeEnv{
			Provider:         getEnvDefault("PROMPTFORGE_PROVIDER", "openai"),
			Model:            getEnvDefault("PROMPTFORGE_MODEL", DefaultModel),
			AnthropicKey:     os.Getenv("ANTHROPIC_API_KEY"),
			AnthropicBaseURL: os.Getenv("ANTHROPIC_BASE_URL"),
			OpenAIKey:        os.Getenv("OPENAI_API_KEY"),
			OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
			MetricsPort:      getEnvInt("PROMPTFORGE_METRICS_PORT", 0),
		}
	})
	return env
}

// ResetEnv resets the cached environment (for testing).
func ResetEnv() {
	envOnce = sync.Once{}
	env = nil
}

func getEnvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Paths holds standard promptforge directory paths.
type Paths struct {
	// Home is the promptforge home directory (~/.promptforge)
	Home string

	// Data is the data directory (~/.promptforge/data)
	Data string
}

var (
	paths     *Paths
	pathsOnce sync.Once
)

// GetPaths returns the singleton paths configuration.
func GetPaths() *Paths {
	pathsOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		forgeHome := filepath.Join(home, ".promptforge")

		paths = &Paths{
			Home: forgeHome,
			Data: filepath.Join(forgeHome, "data"),
		}
	})
	return paths
}

// EnsureDir creates a directory if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
