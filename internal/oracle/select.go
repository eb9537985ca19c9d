package oracle

import (
	"context"
	"fmt"
	"time"
)

// ProviderSettings carries one provider's credential and endpoint.
type ProviderSettings struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Settings selects and configures the active provider.
type Settings struct {
	// Priority lists provider names in preference order.
	Priority  []string
	OpenAI    ProviderSettings
	Anthropic ProviderSettings
	Gemini    ProviderSettings
	Timeout   time.Duration
}

// New returns the first provider in Priority that has an API key.
// It returns ErrNotConfigured when none does.
func New(ctx context.Context, s Settings) (Oracle, error) {
	for _, name := range s.Priority {
		switch name {
		case "openai":
			if s.OpenAI.APIKey != "" {
				return NewOpenAI(s.OpenAI, s.Timeout), nil
			}
		case "anthropic":
			if s.Anthropic.APIKey != "" {
				return NewAnthropic(s.Anthropic, s.Timeout), nil
			}
		case "gemini":
			if s.Gemini.APIKey != "" {
				g, err := NewGemini(ctx, s.Gemini, s.Timeout)
				if err != nil {
					return nil, fmt.Errorf("gemini client: %w", err)
				}
				return g, nil
			}
		default:
			return nil, fmt.Errorf("unknown oracle provider %q", name)
		}
	}
	return nil, ErrNotConfigured
}
