package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Generate(t *testing.T) {
	var captured ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: "Overall upbeat.", Done: true})
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "mistral")
	got, err := client.Generate(context.Background(), "summarise this", GenerationOptions{Temperature: 0.5, MaxTokens: 150})

	require.NoError(t, err)
	assert.Equal(t, "Overall upbeat.", got)
	assert.Equal(t, "mistral", captured.Model)
	assert.Equal(t, "summarise this", captured.Prompt)
	assert.False(t, captured.Stream)
	assert.Equal(t, 0.5, captured.Options.Temperature)
	assert.Equal(t, 150, captured.Options.NumPredict)
}

func TestOllamaClient_GenerateBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("model exploded"))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "mistral")
	_, err := client.Generate(context.Background(), "prompt", GenerationOptions{})

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusInternalServerError, backendErr.StatusCode)
	assert.Contains(t, backendErr.Error(), "Error: 500")
	assert.Contains(t, backendErr.Error(), "model exploded")
}

func TestOllamaClient_GenerateStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.True(t, req.Stream)

		w.Write([]byte(`{"response":"Good mood.","done":false}` + "\n"))
		w.Write([]byte(`{"response":"","done":true}` + "\n"))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "mistral")
	body, err := client.GenerateStream(context.Background(), "prompt", GenerationOptions{})
	require.NoError(t, err)
	defer body.Close()

	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	assert.Len(t, lines, 2)
}

func TestOllamaClient_GenerateStreamBackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL, "mistral")
	_, err := client.GenerateStream(context.Background(), "prompt", GenerationOptions{})

	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusNotFound, backendErr.StatusCode)
}

func TestOllamaClient_Ping(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()

	assert.NoError(t, NewOllamaClient(healthy.URL, "mistral").Ping(context.Background()))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	assert.Error(t, NewOllamaClient(broken.URL, "mistral").Ping(context.Background()))
}
