package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *NemotronClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultNemotronConfig()
	config.BaseURL = server.URL
	client, err := NewNemotronClient(config, "test-key")
	require.NoError(t, err)
	return server, client
}

func TestNewNemotronClient_RequiresKey(t *testing.T) {
	_, err := NewNemotronClient(DefaultNemotronConfig(), "")
	require.Error(t, err)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "nemotron", llmErr.Provider)
}

func TestNemotronComplete(t *testing.T) {
	var captured chatRequest
	_, client := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"BRAF is a serine/threonine kinase."}}]}`))
	})

	text, err := client.Complete(context.Background(), "Tell me about BRAF", TierStandard)
	require.NoError(t, err)
	assert.Equal(t, "BRAF is a serine/threonine kinase.", text)

	assert.Equal(t, "nvidia/llama-3.3-nemotron-super-49b-v1", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Contains(t, captured.Messages[0].Content, "drug discovery")
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, "Tell me about BRAF", captured.Messages[1].Content)
	assert.InDelta(t, 0.2, captured.Temperature, 1e-6)
	assert.Equal(t, 4096, captured.MaxTokens)
}

func TestNemotronComplete_LiteTier(t *testing.T) {
	var captured chatRequest
	_, client := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := client.Complete(context.Background(), "ping", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "nvidia/nemotron-mini-4b-instruct", captured.Model)
}

func TestNemotronComplete_NoChoices(t *testing.T) {
	_, client := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "prompt", TierStandard)
	require.Error(t, err)

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.Contains(t, llmErr.Message, "no choices")
}

func TestNemotronComplete_HTTPError(t *testing.T) {
	_, client := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	})

	_, err := client.Complete(context.Background(), "prompt", TierStandard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
	assert.Contains(t, err.Error(), "model overloaded")
}

func TestNemotronComplete_MalformedBody(t *testing.T) {
	_, client := newChatServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := client.Complete(context.Background(), "prompt", TierStandard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestNemotronComplete_NoSystemPrompt(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	config := DefaultNemotronConfig()
	config.BaseURL = server.URL
	config.SystemPrompt = ""
	client, err := NewNemotronClient(config, "test-key")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "ping", TierStandard)
	require.NoError(t, err)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "user", captured.Messages[0].Role)
}

func TestNewClient_DefaultsToNemotron(t *testing.T) {
	client, err := NewClient(context.Background(), nil, "test-key")
	require.NoError(t, err)
	defer client.Close()

	_, ok := client.(*NemotronClient)
	assert.True(t, ok)
	assert.Equal(t, "nvidia/llama-3.3-nemotron-super-49b-v1", client.GetModel(TierStandard))
}

func TestNewClient_GeminiRequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultGeminiConfig(), "")
	require.Error(t, err)
}

type recordingClient struct {
	prompt string
	tier   ModelTier
	reply  string
}

func (r *recordingClient) Complete(_ context.Context, prompt string, tier ModelTier) (string, error) {
	r.prompt = prompt
	r.tier = tier
	return r.reply, nil
}

func (r *recordingClient) GetModel(ModelTier) string { return "stub" }

func (r *recordingClient) Close() error { return nil }

func TestAssess_BuildsPrompt(t *testing.T) {
	stub := &recordingClient{reply: "Kinase target with approved inhibitors."}

	text, err := Assess(context.Background(), stub, "BRAF")
	require.NoError(t, err)
	assert.Equal(t, "Kinase target with approved inhibitors.", text)
	assert.Equal(t, "Provide a brief druggability assessment for BRAF. "+
		"Include: target class, known modulators, development considerations.", stub.prompt)
	assert.Equal(t, TierStandard, stub.tier)
}

func TestTargetAssessor(t *testing.T) {
	stub := &recordingClient{reply: "briefing"}
	assessor := NewAssessor(stub)

	text, err := assessor.Assess(context.Background(), "P15056")
	require.NoError(t, err)
	assert.Equal(t, "briefing", text)
	assert.Contains(t, stub.prompt, "druggability assessment for P15056")
	assert.Equal(t, "stub", assessor.Model())
}
