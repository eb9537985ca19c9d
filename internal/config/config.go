package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Prefix is the environment variable prefix for every setting.
const Prefix = "SCATTERBRAIN"

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Config holds the configuration for the scatterbrain service.
// Environment variables are parsed from the SCATTERBRAIN_ prefix.
type Config struct {
	// Build target selects high-level environment: local, cloud-dev, cloud
	BuildTarget string `envconfig:"BUILD_TARGET" default:"local"`

	// Derived or override driver: auto, postgres, sqlite
	DBDriver string `envconfig:"DB_DRIVER" default:"auto"`

	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string      `envconfig:"LOG_FORMAT" default:"json"`

	// HTTP Configuration
	HTTPPort   int    `envconfig:"HTTP_PORT" default:"8080"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`

	// Durable store
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:""`

	// Local fallback store for anonymous and degraded board saves
	LocalStatePath string `envconfig:"LOCAL_STATE_PATH" default:""`

	// Oracle providers, tried in order; the first with a credential wins.
	OracleProviders      []string `envconfig:"ORACLE_PROVIDERS" default:"openai,anthropic,gemini"`
	OracleTimeoutSeconds int      `envconfig:"ORACLE_TIMEOUT_SECONDS" default:"60"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY" default:""`
	OpenAIModel   string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL" default:"https://api.openai.com/v1"`

	AnthropicAPIKey  string `envconfig:"ANTHROPIC_API_KEY" default:""`
	AnthropicModel   string `envconfig:"ANTHROPIC_MODEL" default:"claude-3-haiku-20240307"`
	AnthropicBaseURL string `envconfig:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com/v1"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash-lite"`

	// Bearer token verification; empty disables authenticated features outside local.
	JWTSecret string `envconfig:"JWT_SECRET" default:""`

	// Demo rate ceiling
	RateLimitBackend      string `envconfig:"RATE_LIMIT_BACKEND" default:"memory"`
	RedisURL              string `envconfig:"REDIS_URL" default:""`
	DemoRateLimit         int    `envconfig:"DEMO_RATE_LIMIT" default:"3"`
	DemoRateWindowSeconds int    `envconfig:"DEMO_RATE_WINDOW_SECONDS" default:"300"`

	BoardSaveDebounceMS int `envconfig:"BOARD_SAVE_DEBOUNCE_MS" default:"1000"`

	// Health and bootstrap
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"5"`
}

// ResolveDefaults validates BuildTarget and derives DBDriver when set to "auto" or empty.
func (c *Config) ResolveDefaults() error {
	var defaultDB string

	switch c.BuildTarget {
	case "local":
		defaultDB = "sqlite"
	case "cloud-dev", "cloud":
		defaultDB = "postgres"
	default:
		return fmt.Errorf("unsupported BUILD_TARGET: %s", c.BuildTarget)
	}

	if c.DBDriver == "" || c.DBDriver == "auto" {
		c.DBDriver = defaultDB
	}

	allowedDB := map[string]bool{"postgres": true, "sqlite": true}
	if !allowedDB[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.DBDriver == "postgres" && c.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required when DB_DRIVER=postgres")
	}

	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return fmt.Errorf("unsupported RATE_LIMIT_BACKEND: %s", c.RateLimitBackend)
	}

	providers := make([]string, 0, len(c.OracleProviders))
	for _, p := range c.OracleProviders {
		p = strings.ToLower(strings.TrimSpace(p))
		switch p {
		case "":
			continue
		case "openai", "anthropic", "gemini":
			providers = append(providers, p)
		default:
			return fmt.Errorf("unsupported oracle provider: %s", p)
		}
	}
	c.OracleProviders = providers

	if c.DemoRateLimit <= 0 || c.DemoRateWindowSeconds <= 0 {
		return fmt.Errorf("demo rate limit and window must be positive")
	}
	return nil
}

// New creates a new Config by parsing environment variables
// Environment variables should be prefixed with SCATTERBRAIN_
// Example: SCATTERBRAIN_HTTP_PORT, SCATTERBRAIN_OPENAI_API_KEY
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("build_target", cfg.BuildTarget).
		Str("db_driver", cfg.DBDriver).
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.HTTPPort).
		Strs("oracle_providers", cfg.OracleProviders).
		Strs("oracle_credentials", cfg.ConfiguredProviders()).
		Str("rate_limit_backend", cfg.RateLimitBackend).
		Bool("postgres_dsn_present", cfg.PostgresDSN != "").
		Bool("jwt_secret_present", cfg.JWTSecret != "").
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment: EnvTesting,
		LogLevel:    "debug",
		LogFormat:   "json",
	}

	cfg.HTTPPort = 8080
	cfg.CORSOrigin = "*"

	cfg.BuildTarget = "local"
	cfg.DBDriver = "sqlite"

	cfg.OracleProviders = []string{"openai", "anthropic", "gemini"}
	cfg.OracleTimeoutSeconds = 5
	cfg.OpenAIModel = "gpt-4o-mini"
	cfg.OpenAIBaseURL = "https://api.openai.com/v1"
	cfg.AnthropicModel = "claude-3-haiku-20240307"
	cfg.AnthropicBaseURL = "https://api.anthropic.com/v1"
	cfg.GeminiModel = "gemini-2.5-flash-lite"

	cfg.RateLimitBackend = "memory"
	cfg.DemoRateLimit = 3
	cfg.DemoRateWindowSeconds = 300
	cfg.BoardSaveDebounceMS = 1000

	cfg.HealthIntervalSeconds = 30
	cfg.HealthProbeTimeoutSeconds = 2
	cfg.BootstrapTimeoutSeconds = 5

	return cfg
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// IsLocal reports whether the service runs with BUILD_TARGET=local.
func (c *Config) IsLocal() bool {
	return c.BuildTarget == "local"
}

// ConfiguredProviders returns the providers from OracleProviders that carry a credential, in order.
func (c *Config) ConfiguredProviders() []string {
	var out []string
	for _, p := range c.OracleProviders {
		if c.apiKeyFor(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) apiKeyFor(provider string) string {
	switch provider {
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	case "gemini":
		return c.GeminiAPIKey
	}
	return ""
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// OracleTimeout returns the per-call oracle deadline.
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.OracleTimeoutSeconds) * time.Second
}

// DemoRateWindow returns the demo rate window length.
func (c *Config) DemoRateWindow() time.Duration {
	return time.Duration(c.DemoRateWindowSeconds) * time.Second
}

// BoardSaveDebounce returns the quiet period before a board auto-save.
func (c *Config) BoardSaveDebounce() time.Duration {
	return time.Duration(c.BoardSaveDebounceMS) * time.Millisecond
}
