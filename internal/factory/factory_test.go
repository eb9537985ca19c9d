package factory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronnydonkey/scatterbrain-ai/internal/config"
	"github.com/ronnydonkey/scatterbrain-ai/internal/ratelimit"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewForTesting()
	dir := t.TempDir()
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(dir, "store.db")
	cfg.LocalStatePath = filepath.Join(dir, "local.db")
	return cfg
}

func TestNewStore_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := NewStore(ctx, testConfig(t), zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, st.Boards().Upsert(ctx, "u1", []string{"naval"}))
	ids, err := st.Boards().Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"naval"}, ids)
}

func TestNewStore_Errors(t *testing.T) {
	cfg := testConfig(t)
	cfg.DBDriver = "spanner"
	_, err := NewStore(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)

	cfg.DBDriver = "postgres"
	cfg.PostgresDSN = ""
	_, err = NewStore(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "SCATTERBRAIN_POSTGRES_DSN")
}

func TestNewLocalState(t *testing.T) {
	ls, err := NewLocalState(testConfig(t))
	require.NoError(t, err)
	defer func() { _ = ls.Close() }()
	require.NoError(t, ls.SetBoardIDs(context.Background(), "", []string{"naval"}))
}

func TestNewOracle(t *testing.T) {
	cfg := testConfig(t)
	cfg.OpenAIAPIKey, cfg.AnthropicAPIKey, cfg.GeminiAPIKey = "", "", ""
	o, err := NewOracle(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, o)

	cfg.AnthropicAPIKey = "sk-ant-test"
	o, err = NewOracle(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, o)
	assert.Equal(t, "anthropic", o.Name())

	cfg.OpenAIAPIKey = "sk-test"
	o, err = NewOracle(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "openai", o.Name())
}

func TestNewRateLimiter(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	l, err := NewRateLimiter(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &ratelimit.Memory{}, l)

	mr := miniredis.RunT(t)
	cfg.RateLimitBackend = "redis"
	cfg.RedisURL = "redis://" + mr.Addr()
	l, err = NewRateLimiter(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	d, err := l.Allow(ctx, "client")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	cfg.RateLimitBackend = "carrier-pigeon"
	_, err = NewRateLimiter(ctx, cfg, zerolog.Nop())
	assert.Error(t, err)
}
