// Package nim provides clients for NVIDIA NIM molecular AI services
// (ESMFold structure prediction, MolMIM molecule generation, DiffDock
// docking).
package nim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Default NIM endpoints and timeout.
const (
	DefaultBiologyURL = "https://health.api.nvidia.com/v1"
	DefaultLLMURL     = "https://integrate.api.nvidia.com/v1"
	DefaultTimeout    = 300 * time.Second
)

// Config holds NIM connection settings.
type Config struct {
	APIKey     string
	BiologyURL string
	LLMURL     string
	Timeout    time.Duration
}

// ConfigFromEnv builds a config from NVIDIA_API_KEY, NVIDIA_BIOLOGY_URL,
// NVIDIA_LLM_URL, and NVIDIA_TIMEOUT (seconds), with defaults for the rest.
func ConfigFromEnv() Config {
	config := Config{
		APIKey:     os.Getenv("NVIDIA_API_KEY"),
		BiologyURL: os.Getenv("NVIDIA_BIOLOGY_URL"),
		LLMURL:     os.Getenv("NVIDIA_LLM_URL"),
	}
	if raw := os.Getenv("NVIDIA_TIMEOUT"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			config.Timeout = time.Duration(seconds) * time.Second
		}
	}
	return config
}

// Client calls NVIDIA NIM biology endpoints.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a NIM client. The API key is required.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("NVIDIA_API_KEY not set")
	}
	if config.BiologyURL == "" {
		config.BiologyURL = DefaultBiologyURL
	}
	if config.LLMURL == "" {
		config.LLMURL = DefaultLLMURL
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// callNIM posts a JSON payload to a biology endpoint and decodes the
// response into out. Failures map to the error taxonomy: transport and 5xx
// are unavailable, 4xx is rejected, undecodable 2xx bodies are malformed.
func (c *Client) callNIM(ctx context.Context, endpoint string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &Error{Endpoint: endpoint, Kind: KindRejected, Message: "failed to encode request", Cause: err}
	}

	url := fmt.Sprintf("%s/biology/%s", c.config.BiologyURL, endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &Error{Endpoint: endpoint, Kind: KindRejected, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Endpoint: endpoint, Kind: KindUnavailable, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Endpoint: endpoint, Kind: KindUnavailable, Message: "failed to read response", Cause: err}
	}

	switch {
	case resp.StatusCode >= 500:
		return &Error{Endpoint: endpoint, Kind: KindUnavailable, Status: resp.StatusCode, Message: snippet(respBody)}
	case resp.StatusCode >= 400:
		return &Error{Endpoint: endpoint, Kind: KindRejected, Status: resp.StatusCode, Message: snippet(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Endpoint: endpoint, Kind: KindMalformed, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// snippet truncates an error body for messages.
func snippet(body []byte) string {
	const max = 200
	text := string(body)
	if len(text) > max {
		return text[:max] + "..."
	}
	if text == "" {
		return "(empty body)"
	}
	return text
}
