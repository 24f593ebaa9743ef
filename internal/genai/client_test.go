package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/config"
	stderrors "github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/errors"
	"github.com/2025-GDGoC-KRJP-Hackaton/Team-8/internal/common/logger"
)

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	return NewClient(config.GenAIConfig{
		BaseURL:     serverURL,
		APIKey:      "test-key",
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		Timeout:     5000,
		MaxRetries:  2,
	}, logger.NewTestLogger(t))
}

func candidateResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": text}},
				},
			},
		},
	}
}

func TestGenerateSuccess(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(candidateResponse(`{"summary": "done"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), "You extract data.", "Chat log:\nAlice: hi")
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "done"}`, text)

	// System instruction travels in its own top-level field.
	sys, ok := captured["system_instruction"].(map[string]interface{})
	require.True(t, ok)
	parts := sys["parts"].([]interface{})
	assert.Equal(t, "You extract data.", parts[0].(map[string]interface{})["text"])
}

func TestGenerateConcatenatesParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{
					"content": map[string]interface{}{
						"parts": []map[string]string{{"text": `{"summary": `}, {"text": `"split"}`}},
					},
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), "", "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"summary": "split"}`, text)
}

func TestGenerateRetriesRateLimit(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(candidateResponse("ok"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	text, err := client.Generate(context.Background(), "", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGenerateUnavailableAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGenerationUnavailable, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsRetryable(err))
	// maxRetries=2 means three attempts total.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGenerateClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGenerateDeadlineExceeded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(candidateResponse("late"))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, "", "prompt")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGenerationTimeout, stderrors.CodeOf(err))
}

func TestGenerateTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGenerationUnavailable, stderrors.CodeOf(err))
}

func TestGenerateEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeGenerationUnavailable, stderrors.CodeOf(err))
}
