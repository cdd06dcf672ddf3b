package llm

import (
	"context"
	"fmt"
)

// Client is an abstraction over chat-model providers
type Client interface {
	// Complete generates a text completion using the specified model tier
	Complete(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier (for direct access if needed)
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new chat client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderNemotron:
		return NewNemotronClient(config, apiKey)
	default:
		return NewNemotronClient(config, apiKey)
	}
}

// Error describes a failed chat completion.
type Error struct {
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// assessmentPrompt is the fixed briefing request sent for each resolved target.
const assessmentPrompt = "Provide a brief druggability assessment for %s. " +
	"Include: target class, known modulators, development considerations."

// Assess asks the model for a short druggability briefing on a target.
func Assess(ctx context.Context, client Client, subject string) (string, error) {
	return client.Complete(ctx, fmt.Sprintf(assessmentPrompt, subject), TierStandard)
}

// TargetAssessor adapts a Client to the pipeline's assessment dependency.
type TargetAssessor struct {
	client Client
}

// NewAssessor wraps a chat client for use as a pipeline assessor.
func NewAssessor(client Client) *TargetAssessor {
	return &TargetAssessor{client: client}
}

// Assess produces a druggability briefing for the given gene or identifier.
func (a *TargetAssessor) Assess(ctx context.Context, subject string) (string, error) {
	return Assess(ctx, a.client, subject)
}

// Model reports the provider model assessments run against.
func (a *TargetAssessor) Model() string {
	return a.client.GetModel(TierStandard)
}
