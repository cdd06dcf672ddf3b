package nim

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NVIDIA_API_KEY")
}

func TestNewClient_FillsDefaults(t *testing.T) {
	client, err := NewClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBiologyURL, client.config.BiologyURL)
	assert.Equal(t, DefaultLLMURL, client.config.LLMURL)
	assert.Equal(t, DefaultTimeout, client.config.Timeout)
}

func testClient(t *testing.T, biologyURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{APIKey: "test-key", BiologyURL: biologyURL, LLMURL: biologyURL})
	require.NoError(t, err)
	return client
}

func TestPredictStructure_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/biology/nvidia/esmfold", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"pdbs": ["ATOM      1  N   MET A   1      11.104   6.134  -6.504\nEND\n"]}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	pdb, err := client.PredictStructure(context.Background(), "MVLSPADKTNV")
	require.NoError(t, err)
	assert.Contains(t, pdb, "ATOM")
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "MVLSPADKTNV", gotBody["sequence"])
}

func TestPredictStructure_EmptySequenceRejectedWithoutCall(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.PredictStructure(context.Background(), "")
	require.Error(t, err)
	assert.False(t, called)

	var nimErr *Error
	require.ErrorAs(t, err, &nimErr)
	assert.Equal(t, KindRejected, nimErr.Kind)
}

func TestPredictStructure_EmptyPdbsIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"pdbs": []}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.PredictStructure(context.Background(), "MVLSPA")
	require.Error(t, err)

	var nimErr *Error
	require.ErrorAs(t, err, &nimErr)
	assert.Equal(t, KindMalformed, nimErr.Kind)
	assert.Contains(t, err.Error(), "no structures")
}

func TestCallNIM_ServerErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream worker crashed"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.PredictStructure(context.Background(), "MVLSPA")
	require.Error(t, err)

	var nimErr *Error
	require.ErrorAs(t, err, &nimErr)
	assert.Equal(t, KindUnavailable, nimErr.Kind)
	assert.Equal(t, http.StatusBadGateway, nimErr.Status)
	assert.Contains(t, err.Error(), "upstream worker crashed")
}

func TestCallNIM_ClientErrorIsRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail": "sequence contains invalid residues"}`))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.PredictStructure(context.Background(), "MVLSPA1234")
	require.Error(t, err)

	var nimErr *Error
	require.ErrorAs(t, err, &nimErr)
	assert.Equal(t, KindRejected, nimErr.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, nimErr.Status)
}

func TestCallNIM_UndecodableBodyIsMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := testClient(t, server.URL)
	_, err := client.PredictStructure(context.Background(), "MVLSPA")
	require.Error(t, err)

	var nimErr *Error
	require.ErrorAs(t, err, &nimErr)
	assert.Equal(t, KindMalformed, nimErr.Kind)
}

func TestCallNIM_TransportFailureIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	server.Close() // connection refused from here on

	client := testClient(t, server.URL)
	_, err := client.PredictStructure(context.Background(), "MVLSPA")
	require.Error(t, err)

	var nimErr *Error
	require.ErrorAs(t, err, &nimErr)
	assert.Equal(t, KindUnavailable, nimErr.Kind)
}
