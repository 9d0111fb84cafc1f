package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://ollama.local/"}, testLogger())

	assert.Equal(t, "http://ollama.local", c.baseURL)
	assert.Equal(t, "llama3.2:1b", c.model)
	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
	assert.NotNil(t, c.rateLimiter)
}

func TestGenerateSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "classify milk", req.Prompt)
		assert.False(t, req.Stream)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"response": "  Dairy \n", "done": true})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Model: "test-model", Rate: 100, Burst: 10}, testLogger())
	got, err := c.Generate(context.Background(), "classify milk")

	require.NoError(t, err)
	assert.Equal(t, "Dairy", got)
}

func TestGenerateErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Rate: 100, Burst: 10}, testLogger())
	_, err := c.Generate(context.Background(), "hello")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "404")
}

func TestGenerateBadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Rate: 100, Burst: 10}, testLogger())
	_, err := c.Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateServerDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(Config{BaseURL: url, Timeout: time.Second, Rate: 100, Burst: 10}, testLogger())
	_, err := c.Generate(context.Background(), "hello")

	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGenerateCanceledContext(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:1"}, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, "hello")
	assert.ErrorIs(t, err, ErrUnavailable)
}
