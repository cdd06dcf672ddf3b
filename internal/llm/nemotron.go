package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// chatMessage is a single message in an OpenAI-style conversation.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the OpenAI-compatible completion request body.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// chatResponse holds the subset of the completion response we consume.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NemotronClient implements Client against NVIDIA's OpenAI-compatible chat API
type NemotronClient struct {
	config     *Config
	apiKey     string
	httpClient *http.Client
}

// NewNemotronClient creates a new Nemotron client
func NewNemotronClient(config *Config, apiKey string) (*NemotronClient, error) {
	if apiKey == "" {
		return nil, &Error{Provider: string(ProviderNemotron), Message: "API key is required"}
	}
	if config == nil {
		config = DefaultNemotronConfig()
	}

	return &NemotronClient{
		config: config,
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}, nil
}

// Complete generates a text completion using the specified model tier
func (c *NemotronClient) Complete(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", &Error{Provider: string(ProviderNemotron), Message: fmt.Sprintf("no model configured for tier %s", tier)}
	}

	messages := make([]chatMessage, 0, 2)
	if c.config.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.config.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{
		Model:       modelName,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", &Error{Provider: string(ProviderNemotron), Message: "failed to encode request", Cause: err}
	}

	baseURL := c.config.BaseURL
	if baseURL == "" {
		baseURL = DefaultChatURL
	}
	endpoint := strings.TrimSuffix(baseURL, "/") + "/chat/completions"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Provider: string(ProviderNemotron), Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Provider: string(ProviderNemotron), Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &Error{
			Provider: string(ProviderNemotron),
			Message:  fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail))),
		}
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", &Error{Provider: string(ProviderNemotron), Message: "failed to decode response", Cause: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Provider: string(ProviderNemotron), Message: "no choices in response"}
	}

	return parsed.Choices[0].Message.Content, nil
}

// GetModel returns the model name for a tier
func (c *NemotronClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *NemotronClient) Close() error {
	return nil
}
