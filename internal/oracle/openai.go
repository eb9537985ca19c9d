package oracle

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI calls the chat completions API.
type OpenAI struct {
	client *resty.Client
	model  string
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float32         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAI builds a client; empty model or base URL fall back to defaults.
func NewOpenAI(p ProviderSettings, timeout time.Duration) *OpenAI {
	base := p.BaseURL
	if base == "" {
		base = DefaultOpenAIBaseURL
	}
	model := p.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetAuthToken(p.APIKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &OpenAI{client: c, model: model}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	body := openAIRequest{
		Model:       o.model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, openAIMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, openAIMessage{Role: "user", Content: req.Prompt})

	var out openAIResponse
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(&body).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", &TransportError{Provider: o.Name(), Err: err}
	}
	if resp.IsError() {
		return "", &StatusError{Provider: o.Name(), StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}
	if len(out.Choices) == 0 {
		return "", malformed(o.Name(), "returned no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", malformed(o.Name(), "returned empty content")
	}
	return text, nil
}

// HealthPing lists models, which costs no tokens.
func (o *OpenAI) HealthPing(ctx context.Context) error {
	resp, err := o.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return &TransportError{Provider: o.Name(), Err: err}
	}
	if resp.IsError() {
		return &StatusError{Provider: o.Name(), StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}
	return nil
}
