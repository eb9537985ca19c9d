package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIComplete(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Ship it.  "}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(ProviderSettings{APIKey: "sk-test", BaseURL: srv.URL}, time.Second)
	text, err := o.Complete(context.Background(), Request{System: "sys", Prompt: "hello", Temperature: 0.8, MaxTokens: 200})
	require.NoError(t, err)
	assert.Equal(t, "Ship it.", text)

	assert.Equal(t, DefaultOpenAIModel, got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
	assert.Equal(t, 200, got.MaxTokens)
}

func TestOpenAIStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down"}}`))
	}))
	defer srv.Close()

	o := NewOpenAI(ProviderSettings{APIKey: "k", BaseURL: srv.URL}, time.Second)
	_, err := o.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.False(t, IsTimeout(err))
}

func TestOpenAIEmptyChoicesIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	o := NewOpenAI(ProviderSettings{APIKey: "k", BaseURL: srv.URL}, time.Second)
	_, err := o.Complete(context.Background(), Request{Prompt: "x"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestOpenAITimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	o := NewOpenAI(ProviderSettings{APIKey: "k", BaseURL: srv.URL}, 50*time.Millisecond)
	_, err := o.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "expected timeout, got %v", err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAnthropicComplete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "a-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Focus on "},{"type":"text","text":"leverage."}]}`))
	}))
	defer srv.Close()

	a := NewAnthropic(ProviderSettings{APIKey: "a-key", BaseURL: srv.URL, Model: "claude-test"}, time.Second)
	text, err := a.Complete(context.Background(), Request{System: "be brief", Prompt: "help", MaxTokens: 400})
	require.NoError(t, err)
	assert.Equal(t, "Focus on leverage.", text)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, "be brief", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestAnthropicHealthPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := NewAnthropic(ProviderSettings{APIKey: "bad", BaseURL: srv.URL}, time.Second)
	err := a.HealthPing(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestNewSelectsByPriority(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, Settings{Priority: []string{"openai", "anthropic"}})
	assert.ErrorIs(t, err, ErrNotConfigured)

	o, err := New(ctx, Settings{
		Priority:  []string{"openai", "anthropic"},
		Anthropic: ProviderSettings{APIKey: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", o.Name())

	o, err = New(ctx, Settings{
		Priority:  []string{"anthropic", "openai"},
		OpenAI:    ProviderSettings{APIKey: "o"},
		Anthropic: ProviderSettings{APIKey: "a"},
	})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", o.Name())

	_, err = New(ctx, Settings{Priority: []string{"cohere"}})
	assert.Error(t, err)
}

func TestNewSelectsGemini(t *testing.T) {
	o, err := New(context.Background(), Settings{
		Priority: []string{"openai", "gemini"},
		Gemini:   ProviderSettings{APIKey: "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, "gemini", o.Name())
	if c, ok := o.(interface{ Close() error }); ok {
		_ = c.Close()
	}
}

func TestIsTimeout(t *testing.T) {
	assert.False(t, IsTimeout(nil))
	assert.False(t, IsTimeout(errors.New("nope")))
	assert.True(t, IsTimeout(&TransportError{Provider: "x", Err: context.DeadlineExceeded}))
}

func TestFuncAdapter(t *testing.T) {
	var o Oracle = Func(func(ctx context.Context, req Request) (string, error) {
		return "echo: " + req.Prompt, nil
	})
	text, err := o.Complete(context.Background(), Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "echo: hi", text)
}
