// Package llm provides centralized chat-model configuration and client abstractions.
// This package enables easy switching between model tiers and providers.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: health probes, short summaries
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: assessments, scientific Q&A
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: multi-step analysis
	TierAdvanced ModelTier = "advanced"
)

// Provider represents a chat-model provider
type Provider string

// Provider constants define supported chat-model providers
const (
	// ProviderNemotron is the NVIDIA Nemotron provider (OpenAI-compatible API)
	ProviderNemotron Provider = "nemotron"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// DefaultChatURL is the NVIDIA OpenAI-compatible chat completions base URL.
const DefaultChatURL = "https://integrate.api.nvidia.com/v1"

// scienceSystemPrompt frames every completion as scientific assistance.
const scienceSystemPrompt = "You are an expert scientist specializing in drug discovery, " +
	"molecular biology, and computational chemistry. Provide detailed, accurate scientific information."

// Config holds the model configuration for the application
type Config struct {
	Provider     Provider
	Models       map[ModelTier]string
	BaseURL      string
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
	Timeout      time.Duration
}

// DefaultConfig returns the default configuration (currently Nemotron)
func DefaultConfig() *Config {
	return DefaultNemotronConfig()
}

// DefaultNemotronConfig returns the default NVIDIA Nemotron configuration
func DefaultNemotronConfig() *Config {
	return &Config{
		Provider: ProviderNemotron,
		Models: map[ModelTier]string{
			TierLite:     "nvidia/nemotron-mini-4b-instruct",
			TierStandard: "nvidia/llama-3.3-nemotron-super-49b-v1",
			TierAdvanced: "nvidia/llama-3.3-nemotron-super-49b-v1",
		},
		BaseURL:      DefaultChatURL,
		Temperature:  0.2,
		MaxTokens:    4096,
		SystemPrompt: scienceSystemPrompt,
		Timeout:      300 * time.Second,
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature:  0.2,
		MaxTokens:    4096,
		SystemPrompt: scienceSystemPrompt,
		Timeout:      300 * time.Second,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider:     c.Provider,
		Models:       make(map[ModelTier]string),
		BaseURL:      c.BaseURL,
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
		SystemPrompt: c.SystemPrompt,
		Timeout:      c.Timeout,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
