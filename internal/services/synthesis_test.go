package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/oracle"
	"github.com/ronnydonkey/scatterbrain-ai/internal/personas"
)

const goodSummary = `{
  "summary": "Build leverage by making something people want, then own the upside.",
  "themes": ["Leverage", "Customer obsession", "Long-term thinking"],
  "actionPlan": ["Talk to 10 users", "Ship a v1 this week", "Cut scope", "Write publicly", "Review weekly"]
}`

// scriptedOracle answers persona prompts with fixed text unless the
// persona is listed in fail, and the summary prompt with summary.
type scriptedOracle struct {
	summary  string
	fail     map[string]bool
	calls    atomic.Int32
	mu       sync.Mutex
	requests []oracle.Request
}

func (s *scriptedOracle) Name() string { return "scripted" }

func (s *scriptedOracle) Complete(_ context.Context, req oracle.Request) (string, error) {
	s.calls.Add(1)
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if req.System == summarySystemPrompt {
		return s.summary, nil
	}
	for name := range s.fail {
		if strings.Contains(req.System, name) {
			return "", &oracle.StatusError{Provider: "scripted", StatusCode: 500}
		}
	}
	return "  Focus on the one thing that compounds.  ", nil
}

type recordedHistory struct {
	userID string
	ids    []string
	input  string
}

type historySpy struct {
	mu      sync.Mutex
	entries []recordedHistory
	err     error
}

func (h *historySpy) RecordSynthesis(_ context.Context, userID string, advisorIDs []string, input string, _ *model.SynthesisResult) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, recordedHistory{userID, advisorIDs, input})
	return h.err
}

func board(t *testing.T, ids ...string) []model.Persona {
	t.Helper()
	dir := personas.MustLoad()
	out := dir.Resolve(ids)
	require.Len(t, out, len(ids))
	return out
}

func codeOf(t *testing.T, err error) *apperr.Error {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected *apperr.Error, got %T", err)
	return ae
}

func TestSynthesize_NavalAndPaulGraham(t *testing.T) {
	o := &scriptedOracle{summary: goodSummary}
	h := &historySpy{}
	svc := NewSynthesisService(o, h, zerolog.Nop(), nil)

	res, err := svc.Synthesize(context.Background(), board(t, "naval", "paul-graham"), "Should I quit my job to start a company?", "")
	require.NoError(t, err)

	require.Len(t, res.Advisors, 2)
	assert.Equal(t, "Naval Ravikant", res.Advisors[0].Name)
	assert.Equal(t, "Paul Graham", res.Advisors[1].Name)
	assert.Equal(t, "Focus on the one thing that compounds.", res.Advisors[0].Insight)
	assert.GreaterOrEqual(t, len(res.KeyThemes), 3)
	assert.LessOrEqual(t, len(res.KeyThemes), 5)
	assert.GreaterOrEqual(t, len(res.ActionPlan), 5)
	assert.LessOrEqual(t, len(res.ActionPlan), 7)
	assert.NotEmpty(t, res.CombinedSummary)
	assert.False(t, res.Timestamp.IsZero())
	assert.GreaterOrEqual(t, res.ProcessingTime, 0.0)
	assert.EqualValues(t, 3, o.calls.Load())
	assert.Empty(t, h.entries, "anonymous runs are not recorded")
}

func TestSynthesize_RequestParameters(t *testing.T) {
	o := &scriptedOracle{summary: goodSummary}
	svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)

	_, err := svc.Synthesize(context.Background(), board(t, "naval"), "How do I get rich?", "")
	require.NoError(t, err)

	require.Len(t, o.requests, 2)
	persona, summary := o.requests[0], o.requests[1]
	assert.InDelta(t, 0.8, persona.Temperature, 1e-6)
	assert.Equal(t, 200, persona.MaxTokens)
	assert.Contains(t, persona.Prompt, "Naval Ravikant")
	assert.Contains(t, persona.Prompt, "wealth creation through ownership")
	assert.Contains(t, persona.Prompt, "How do I get rich?")
	assert.InDelta(t, 0.7, summary.Temperature, 1e-6)
	assert.Equal(t, 400, summary.MaxTokens)
	assert.Contains(t, summary.Prompt, "Naval Ravikant: Focus on the one thing that compounds.")
}

func TestSynthesize_PersonaFailuresFallBack(t *testing.T) {
	o := &scriptedOracle{summary: goodSummary, fail: map[string]bool{"Paul Graham": true, "Steve Jobs": true}}
	svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)
	advisors := board(t, "naval", "paul-graham", "steve-jobs")

	outcomes := svc.Insights(context.Background(), advisors, "What should I build?")
	require.Len(t, outcomes, 3)
	assert.False(t, outcomes[0].Fallback)
	assert.True(t, outcomes[1].Fallback)
	assert.True(t, outcomes[2].Fallback)
	assert.ErrorIs(t, outcomes[1].Err, oracle.ErrUpstream)
	assert.Equal(t,
		"As Paul Graham, I'd approach this challenge by focusing on do things that don't scale. "+
			"This situation requires strategic thinking and decisive action based on core principles.",
		outcomes[1].Insight)

	res, err := svc.Synthesize(context.Background(), advisors, "What should I build?", "")
	require.NoError(t, err)
	require.Len(t, res.Advisors, 3)
	assert.Contains(t, res.Advisors[2].Insight, "As Steve Jobs")
}

func TestSynthesize_NonJSONSummaryFails(t *testing.T) {
	o := &scriptedOracle{summary: "Here are my thoughts: be bold."}
	svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)

	res, err := svc.Synthesize(context.Background(), board(t, "naval", "paul-graham"), "Help", "")
	assert.Nil(t, res)
	ae := codeOf(t, err)
	assert.Equal(t, apperr.CodeAIResponseError, ae.Code)
	assert.Equal(t, http.StatusBadGateway, ae.Status)
}

func TestSynthesize_StructurallyInvalidSummaryFails(t *testing.T) {
	o := &scriptedOracle{summary: `{"summary": "ok", "themes": "not a list", "actionPlan": []}`}
	svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)

	_, err := svc.Synthesize(context.Background(), board(t, "naval"), "Help", "")
	assert.Equal(t, apperr.CodeAIResponseError, codeOf(t, err).Code)
}

func TestSynthesize_FencedSummaryAndTruncation(t *testing.T) {
	o := &scriptedOracle{summary: "```json\n" + `{"summary":"s","themes":["1","2","3","4","5","6"],"actionPlan":["a","b","c","d","e","f","g","h"]}` + "\n```"}
	svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)

	res, err := svc.Synthesize(context.Background(), board(t, "naval"), "Help", "")
	require.NoError(t, err)
	assert.Len(t, res.KeyThemes, 5)
	assert.Len(t, res.ActionPlan, 7)
}

func TestSynthesize_ValidationMakesNoOracleCalls(t *testing.T) {
	nine := board(t, "naval", "seth-godin", "tim-ferriss", "brene-brown", "steve-jobs", "elon-musk", "oprah-winfrey", "warren-buffett", "paul-graham")

	cases := []struct {
		name     string
		advisors []model.Persona
		input    string
		code     string
	}{
		{"empty input", board(t, "naval"), "", apperr.CodeInvalidInput},
		{"whitespace input", board(t, "naval"), "   \n\t", apperr.CodeInvalidInput},
		{"no advisors", nil, "hello", apperr.CodeNoAdvisors},
		{"nine advisors", nine, "hello", apperr.CodeTooManyAdvisors},
		{"too long", board(t, "naval"), strings.Repeat("x", MaxSynthesisInput+1), apperr.CodeInputTooLong},
		{"empty wins over no advisors", nil, "", apperr.CodeInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := &scriptedOracle{summary: goodSummary}
			svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)
			_, err := svc.Synthesize(context.Background(), tc.advisors, tc.input, "")
			ae := codeOf(t, err)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, http.StatusBadRequest, ae.Status)
			assert.Zero(t, o.calls.Load())
		})
	}
}

func TestSynthesize_InputLimitCountsCharacters(t *testing.T) {
	o := &scriptedOracle{summary: goodSummary}
	svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)
	_, err := svc.Synthesize(context.Background(), board(t, "naval"), strings.Repeat("é", MaxSynthesisInput), "")
	require.NoError(t, err)
}

func TestSynthesize_NoOracleIsServiceUnavailable(t *testing.T) {
	svc := NewSynthesisService(nil, nil, zerolog.Nop(), nil)
	_, err := svc.Synthesize(context.Background(), board(t, "naval"), "hello", "")
	ae := codeOf(t, err)
	assert.Equal(t, apperr.CodeServiceUnavailable, ae.Code)
	assert.Equal(t, http.StatusServiceUnavailable, ae.Status)
}

func TestSynthesize_SummaryErrorsAreClassified(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"upstream status", &oracle.StatusError{Provider: "p", StatusCode: 503}, apperr.CodeAIServiceError, http.StatusBadGateway},
		{"transport", &oracle.TransportError{Provider: "p", Err: errors.New("connection refused")}, apperr.CodeAIServiceError, http.StatusBadGateway},
		{"deadline", &oracle.TransportError{Provider: "p", Err: context.DeadlineExceeded}, apperr.CodeTimeout, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), apperr.CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := oracle.Func(func(_ context.Context, req oracle.Request) (string, error) {
				if req.System == summarySystemPrompt {
					return "", tc.err
				}
				return "insight", nil
			})
			svc := NewSynthesisService(o, nil, zerolog.Nop(), nil)
			_, err := svc.Synthesize(context.Background(), board(t, "naval"), "hello", "")
			ae := codeOf(t, err)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.status, ae.Status)
		})
	}
}

func TestSynthesize_RecordsHistoryForUser(t *testing.T) {
	o := &scriptedOracle{summary: goodSummary}
	h := &historySpy{}
	svc := NewSynthesisService(o, h, zerolog.Nop(), nil)

	_, err := svc.Synthesize(context.Background(), board(t, "naval", "paul-graham"), "Grow?", "u1")
	require.NoError(t, err)
	require.Len(t, h.entries, 1)
	assert.Equal(t, recordedHistory{"u1", []string{"naval", "paul-graham"}, "Grow?"}, h.entries[0])
}

func TestSynthesize_HistoryFailureDoesNotFailRequest(t *testing.T) {
	o := &scriptedOracle{summary: goodSummary}
	h := &historySpy{err: errStoreDown}
	svc := NewSynthesisService(o, h, zerolog.Nop(), nil)

	res, err := svc.Synthesize(context.Background(), board(t, "naval"), "Grow?", "u1")
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestFallbackInsightEmptyVoice(t *testing.T) {
	got := fallbackInsight(model.Persona{Name: "Anon"})
	assert.Contains(t, got, "focusing on first principles.")
}
