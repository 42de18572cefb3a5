package testutil

import (
	"testing"

	"github.com/HazeMiya/ai-2024/internal/config"
	"github.com/spf13/viper"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	OverwriteFiles    bool
	AnthropicAPIKey   string
	GeminiAPIKey      string
	GoogleBooksAPIKey string
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		OverwriteFiles:    config.OverwriteFiles,
		AnthropicAPIKey:   config.AnthropicAPIKey,
		GeminiAPIKey:      config.GeminiAPIKey,
		GoogleBooksAPIKey: config.GoogleBooksAPIKey,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.OverwriteFiles = state.OverwriteFiles
	config.AnthropicAPIKey = state.AnthropicAPIKey
	config.GeminiAPIKey = state.GeminiAPIKey
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
}

// SetTestConfig resets viper to the pipeline defaults with test API keys and
// restores the previous state when the test completes.
func SetTestConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()
	viper.Reset()
	config.SetDefaults()

	config.OverwriteFiles = true
	config.AnthropicAPIKey = "test-anthropic-key"
	config.GeminiAPIKey = "test-gemini-key"
	config.GoogleBooksAPIKey = ""

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}

// SetupTestCache points the persistent lookup cache at a database inside env.
func SetupTestCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("cache", "test-cache.db")
	env.WriteFileString("cache/.keep", "")
	viper.Set("cache.enabled", true)
	viper.Set("cache.dbfile", dbPath)
	viper.Set("cache.ttl", "24h")

	return dbPath
}
