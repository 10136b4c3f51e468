package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnv(t *testing.T) {
	// Reset env for clean test
	ResetEnv()

	os.Setenv("PROMPTFORGE_PROVIDER", "anthropic")
	os.Setenv("PROMPTFORGE_MODEL", "claude-sonnet-4-20250514")
	os.Setenv("ANTHROPIC_API_KEY", "test-key")
	os.Setenv("OPENAI_BASE_URL", "http://localhost:8080/v1")
	defer func() {
		os.Unsetenv("PROMPTFORGE_PROVIDER")
		os.Unsetenv("PROMPTFORGE_MODEL")
		os.Unsetenv("ANTHROPIC_API_KEY")
		os.Unsetenv("OPENAI_BASE_URL")
		ResetEnv()
	}()

	env := Env()

	assert.Equal(t, "anthropic", env.Provider)
	assert.Equal(t, "claude-sonnet-4-20250514", env.Model)
	assert.Equal(t, "test-key", env.AnthropicKey)
	assert.Equal(t, "http://localhost:8080/v1", env.OpenAIBaseURL)
}

func TestEnvDefaults(t *testing.T) {
	ResetEnv()

	os.Unsetenv("PROMPTFORGE_PROVIDER")
	os.Unsetenv("PROMPTFORGE_MODEL")
	defer ResetEnv()

	env := Env()

	assert.Equal(t, "openai", env.Provider)
	assert.Equal(t, DefaultModel, env.Model)
}

func TestEnvSingleton(t *testing.T) {
	ResetEnv()
	defer ResetEnv()

	env1 := Env()
	env2 := Env()

	// Should return same instance
	assert.Same(t, env1, env2)
}

func TestResetEnv(t *testing.T) {
	os.Setenv("PROMPTFORGE_MODEL", "first-model")
	ResetEnv()
	env1 := Env()
	assert.Equal(t, "first-model", env1.Model)

	os.Setenv("PROMPTFORGE_MODEL", "second-model")
	ResetEnv()

	env2 := Env()
	assert.Equal(t, "second-model", env2.Model)

	// Cleanup
	os.Unsetenv("PROMPTFORGE_MODEL")
	ResetEnv()
}

func TestGetEnvDefault(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		envVal   string
		fallback string
		want     string
	}{
		{"env set", "TEST_KEY", "value", "default", "value"},
		{"env empty", "TEST_KEY", "", "default", "default"},
		{"env not set", "TEST_KEY_NOTSET", "", "fallback", "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envVal != "" {
				os.Setenv(tt.key, tt.envVal)
				defer os.Unsetenv(tt.key)
			}
			got := getEnvDefault(tt.key, tt.fallback)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetPaths(t *testing.T) {
	paths := GetPaths()

	assert.NotEmpty(t, paths.Home)
	assert.Contains(t, paths.Home, ".promptforge")
	assert.Equal(t, filepath.Join(paths.Home, "data"), paths.Data)
}

func TestEnsureDir(t *testing.T) {
	tempDir := filepath.Join(os.TempDir(), "promptforge-test-ensure")
	defer os.RemoveAll(tempDir)

	os.RemoveAll(tempDir)

	err := EnsureDir(tempDir)
	assert.NoError(t, err)

	info, err := os.Stat(tempDir)
	assert.NoError(t, err)
	assert.True(t, info.IsDir())

	// Running again should be idempotent
	err = EnsureDir(tempDir)
	assert.NoError(t, err)
}
