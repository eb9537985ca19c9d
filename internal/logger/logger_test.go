package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stdoutOf(t *testing.T, f func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	f()

	require.NoError(t, w.Close())
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.Close()
	return string(b)
}

func decodeLine(t *testing.T, out string) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines[len(lines)-1], "no log output")
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &payload), out)
	return payload
}

func TestNew_ErrorCarriesServiceAndStack(t *testing.T) {
	out := stdoutOf(t, func() {
		log := New("scatterbrain-test")
		log.Error().Stack().Err(errors.New("oracle unavailable")).Msg("synthesis failed")
	})

	payload := decodeLine(t, out)
	assert.Equal(t, "scatterbrain-test", payload["service"])
	assert.Equal(t, "error", payload["level"])
	assert.Equal(t, "oracle unavailable", payload["error"])
	assert.Contains(t, payload, "stack")
	assert.Contains(t, payload, "time")
}

func TestNewWithWriter_KeepsExistingStack(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "scatterbrain-test")
	log.Error().Stack().Err(pkgerrors.New("store down")).Str("board", "u1").Msg("save failed")

	payload := decodeLine(t, buf.String())
	assert.Equal(t, "u1", payload["board"])
	stack, ok := payload["stack"].([]any)
	require.True(t, ok, "stack should be a frame list: %v", payload["stack"])
	assert.NotEmpty(t, stack)
}

func TestConsoleWriter_PlainText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(consoleWriter(&buf), "scatterbrain-test")
	log.Info().Str("advisor", "naval").Msg("synthesized")

	out := buf.String()
	assert.False(t, strings.HasPrefix(out, "{"), "expected plain text: %s", out)
	for _, want := range []string{"INF", "synthesized", "advisor=naval"} {
		assert.Contains(t, out, want)
	}
}

func TestNewForFormat_DefaultsToJSON(t *testing.T) {
	out := stdoutOf(t, func() {
		log := NewForFormat("scatterbrain-test", "")
		log.Warn().Msg("demo limit reached")
	})
	assert.Equal(t, "demo limit reached", decodeLine(t, out)["message"])
}

func TestSetLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cases := map[string]zerolog.Level{
		"DEBUG":    zerolog.DebugLevel,
		" warn ":   zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"nonsense": zerolog.InfoLevel,
		"":         zerolog.InfoLevel,
	}
	for name, want := range cases {
		assert.Equal(t, want, SetLevel(name), "level %q", name)
		assert.Equal(t, want, zerolog.GlobalLevel())
	}
}
