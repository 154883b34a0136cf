// Package deepseek registers DeepSeek, which serves an OpenAI-compatible
// chat completions API.
package deepseek

import "github.com/Rrens/health-insights/internal/engine/openai"

const baseURL = "https://api.deepseek.com/v1"

// NewProvider creates a new DeepSeek provider
func NewProvider(apiKey, defaultModel string) *openai.Provider {
	if defaultModel == "" {
		defaultModel = "deepseek-chat"
	}
	return openai.NewCompatible("deepseek", apiKey, defaultModel, baseURL, []string{
		"deepseek-chat",
		"deepseek-reasoner",
	})
}
