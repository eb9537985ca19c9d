package oracle

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	DefaultAnthropicModel   = "claude-3-haiku-20240307"
	anthropicVersion        = "2023-06-01"
)

// Anthropic calls the messages API.
type Anthropic struct {
	client *resty.Client
	model  string
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float32            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func NewAnthropic(p ProviderSettings, timeout time.Duration) *Anthropic {
	base := p.BaseURL
	if base == "" {
		base = DefaultAnthropicBaseURL
	}
	model := p.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	c := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetHeader("x-api-key", p.APIKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	return &Anthropic{client: c, model: model}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Complete(ctx context.Context, req Request) (string, error) {
	body := anthropicRequest{
		Model:       a.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	var out anthropicResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(&body).
		SetResult(&out).
		Post("/messages")
	if err != nil {
		return "", &TransportError{Provider: a.Name(), Err: err}
	}
	if resp.IsError() {
		return "", &StatusError{Provider: a.Name(), StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", malformed(a.Name(), "returned no text content")
	}
	return text, nil
}

func (a *Anthropic) HealthPing(ctx context.Context) error {
	resp, err := a.client.R().SetContext(ctx).Get("/models")
	if err != nil {
		return &TransportError{Provider: a.Name(), Err: err}
	}
	if resp.IsError() {
		return &StatusError{Provider: a.Name(), StatusCode: resp.StatusCode(), Body: truncate(resp.String(), 512)}
	}
	return nil
}
