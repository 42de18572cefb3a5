package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing stage output files should be overwritten
	OverwriteFiles bool
	// AnthropicAPIKey is the API key for the Anthropic Messages API
	AnthropicAPIKey string
	// GeminiAPIKey is the API key for Google's Gemini generateContent API
	GeminiAPIKey string
	// GoogleBooksAPIKey is the optional API key for Google Books volume search
	GoogleBooksAPIKey string
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("OverwriteFiles", true)

	// Get values from viper
	OverwriteFiles = viper.GetBool("OverwriteFiles")
	AnthropicAPIKey = viper.GetString("AnthropicAPIKey")
	GeminiAPIKey = viper.GetString("GeminiAPIKey")
	GoogleBooksAPIKey = viper.GetString("GoogleBooksAPIKey")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}
