package factory

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/config"
	"github.com/ronnydonkey/scatterbrain-ai/internal/oracle"
)

// NewOracle builds the first configured provider in cfg.OracleProviders.
// It returns nil, nil when no provider has a credential: the service still
// starts and the oracle endpoints answer with their not-configured errors.
func NewOracle(ctx context.Context, cfg *config.Config, log zerolog.Logger) (oracle.Oracle, error) {
	o, err := oracle.New(ctx, oracle.Settings{
		Priority: cfg.OracleProviders,
		OpenAI: oracle.ProviderSettings{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
		},
		Anthropic: oracle.ProviderSettings{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			BaseURL: cfg.AnthropicBaseURL,
		},
		Gemini: oracle.ProviderSettings{
			APIKey: cfg.GeminiAPIKey,
			Model:  cfg.GeminiModel,
		},
		Timeout: cfg.OracleTimeout(),
	})
	if errors.Is(err, oracle.ErrNotConfigured) {
		log.Warn().Strs("providers", cfg.OracleProviders).Msg("no oracle credential configured; synthesis endpoints disabled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	log.Info().Str("provider", o.Name()).Msg("oracle provider selected")
	return o, nil
}
