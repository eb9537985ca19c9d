package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/oracle"
	"github.com/ronnydonkey/scatterbrain-ai/internal/ratelimit"
)

const demoJSON = `{
  "keyThemes": [
    {"theme": "Creative burnout", "confidence": 1.4, "evidence": ["tired"], "relatedConcepts": ["rest"]},
    {"theme": "Side project", "confidence": "0.9"},
    {"theme": "Noise", "confidence": "NaN"}
  ],
  "actionItems": [
    {"task": "Block two mornings for the side project", "priority": "high", "category": "creative", "estimatedDuration": "60 minutes", "suggestedTime": "evening"},
    {"task": "List three small wins"}
  ],
  "contentSuggestions": {
    "twitter": {"content": "Rest is part of the work.", "hashtags": ["#creativity"]},
    "linkedin": {"content": "What burnout taught me", "post_type": "insight_sharing"}
  },
  "researchSuggestions": [{"topic": "Deep work", "sources": ["Cal Newport"], "relevance": -0.2}],
  "calendarBlocks": [{"title": "Focus block", "duration": 90, "priority": "high", "suggestedTimes": ["Tue 9am"]}, {"title": "Walk"}, {"title": "Forever", "duration": 1e30}, {"title": "Blink", "duration": "0.2"}],
  "metadata": {"sentiment": "determined", "topics": ["burnout"]}
}`

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newDemo(o oracle.Oracle, l ratelimit.Limiter, clock *fakeClock) *DemoService {
	svc := NewDemoService(o, l, zerolog.Nop(), nil)
	svc.now = clock.now
	svc.suffix = func() string { return "abc123xyz" }
	return svc
}

func staticOracle(text string, calls *atomic.Int32) oracle.Oracle {
	return oracle.Func(func(context.Context, oracle.Request) (string, error) {
		calls.Add(1)
		return text, nil
	})
}

func TestDemo_AnalyzeNormalizesOutput(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(1_700_000_000_000)}
	var calls atomic.Int32
	svc := newDemo(staticOracle(demoJSON, &calls), ratelimit.NewMemory(3, 5*time.Minute), clock)

	res, err := svc.Analyze(context.Background(), "I feel tired but   want to start a side project")
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls.Load())

	assert.Equal(t, "demo_1700000000000_abc123xyz", res.ID)
	assert.Equal(t, 10, res.Metadata.WordCount)
	assert.Equal(t, "determined", res.Metadata.Sentiment)
	assert.Equal(t, "medium", res.Metadata.Complexity)
	assert.Equal(t, []string{"burnout"}, res.Metadata.Topics)

	themes := res.Insights.KeyThemes
	require.Len(t, themes, 3)
	assert.Equal(t, 1.0, themes[0].Confidence)
	assert.InDelta(t, 0.9, themes[1].Confidence, 1e-9)
	assert.Equal(t, []string{}, themes[1].Evidence)
	assert.Equal(t, 0.0, themes[2].Confidence)

	items := res.Insights.ActionItems
	require.Len(t, items, 2)
	assert.Equal(t, "demo_action_1700000000000_0", items[0].ID)
	assert.Equal(t, "high", items[0].Priority)
	assert.Equal(t, "evening", items[0].SuggestedTime)
	assert.Equal(t, "demo_action_1700000000000_1", items[1].ID)
	assert.Equal(t, "medium", items[1].Priority)
	assert.Equal(t, "planning", items[1].Category)
	assert.Equal(t, "30 minutes", items[1].EstimatedDuration)
	assert.Equal(t, "morning", items[1].SuggestedTime)
	assert.False(t, items[1].Completed)

	cs := res.Insights.ContentSuggestions
	require.NotNil(t, cs.Twitter)
	require.NotNil(t, cs.LinkedIn)
	assert.Nil(t, cs.Instagram)
	assert.Equal(t, "insight_sharing", cs.LinkedIn.PostType)

	require.Len(t, res.Insights.ResearchSuggestions, 1)
	assert.Equal(t, 0.0, res.Insights.ResearchSuggestions[0].Relevance)

	blocks := res.Insights.CalendarBlocks
	require.Len(t, blocks, 4)
	assert.Equal(t, 90, blocks[0].Duration)
	assert.Equal(t, 30, blocks[1].Duration)
	assert.Equal(t, []string{}, blocks[1].SuggestedTimes)
	assert.Equal(t, 30, blocks[2].Duration)
	assert.Equal(t, 30, blocks[3].Duration)

	_, err = json.Marshal(res)
	assert.NoError(t, err)
}

func TestDemo_MissingCollectionsDefaultEmpty(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	var calls atomic.Int32
	svc := newDemo(staticOracle(`{}`, &calls), ratelimit.NewMemory(3, time.Minute), clock)

	res, err := svc.Analyze(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotNil(t, res.Insights.KeyThemes)
	assert.NotNil(t, res.Insights.ActionItems)
	assert.NotNil(t, res.Insights.ResearchSuggestions)
	assert.NotNil(t, res.Insights.CalendarBlocks)
	assert.Equal(t, "optimistic", res.Metadata.Sentiment)
	assert.Equal(t, "medium", res.Metadata.Complexity)
	assert.Equal(t, []string{}, res.Metadata.Topics)
}

func TestDemo_ValidationMakesNoOracleCalls(t *testing.T) {
	cases := []struct {
		name  string
		input string
		code  string
	}{
		{"empty", "", apperr.CodeInvalidInput},
		{"whitespace", "  \n ", apperr.CodeInvalidInput},
		{"2001 chars", strings.Repeat("a", MaxDemoInput+1), apperr.CodeInputTooLong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var calls atomic.Int32
			svc := newDemo(staticOracle(demoJSON, &calls), ratelimit.NewMemory(3, time.Minute), &fakeClock{t: time.Now()})
			_, err := svc.Analyze(context.Background(), tc.input)
			ae := codeOf(t, err)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, http.StatusBadRequest, ae.Status)
			assert.Zero(t, calls.Load())
		})
	}
}

func TestDemo_ExactlyMaxInputAccepted(t *testing.T) {
	var calls atomic.Int32
	svc := newDemo(staticOracle(demoJSON, &calls), ratelimit.NewMemory(3, time.Minute), &fakeClock{t: time.Now()})
	_, err := svc.Analyze(context.Background(), strings.Repeat("a", MaxDemoInput))
	require.NoError(t, err)
}

func TestDemo_AdmitEnforcesWindow(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	limiter := ratelimit.NewMemory(3, 5*time.Minute, ratelimit.WithClock(clock.now))
	var calls atomic.Int32
	svc := newDemo(staticOracle(demoJSON, &calls), limiter, clock)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Admit(ctx, "203.0.113.7"))
	}
	ae := codeOf(t, svc.Admit(ctx, "203.0.113.7"))
	assert.Equal(t, apperr.CodeDemoRateLimit, ae.Code)
	assert.Equal(t, http.StatusTooManyRequests, ae.Status)

	require.NoError(t, svc.Admit(ctx, "198.51.100.1"), "other clients have their own window")

	clock.advance(5*time.Minute + time.Millisecond)
	require.NoError(t, svc.Admit(ctx, "203.0.113.7"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis unavailable")
}

func TestDemo_AdmitFailsOpen(t *testing.T) {
	var calls atomic.Int32
	svc := newDemo(staticOracle(demoJSON, &calls), brokenLimiter{}, &fakeClock{t: time.Now()})
	assert.NoError(t, svc.Admit(context.Background(), "x"))
}

func TestDemo_OracleErrors(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		err    error
		code   string
		status int
	}{
		{"not json", "Sure! Here is your analysis.", nil, apperr.CodeAIResponseError, http.StatusBadGateway},
		{"json array", `[1,2]`, nil, apperr.CodeAIResponseError, http.StatusBadGateway},
		{"upstream", "", &oracle.StatusError{Provider: "p", StatusCode: 429}, apperr.CodeAIServiceError, http.StatusBadGateway},
		{"timeout", "", &oracle.TransportError{Provider: "p", Err: context.DeadlineExceeded}, apperr.CodeAIServiceError, http.StatusBadGateway},
		{"other", "", errors.New("boom"), apperr.CodeDemoError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o := oracle.Func(func(context.Context, oracle.Request) (string, error) { return tc.text, tc.err })
			svc := newDemo(o, ratelimit.NewMemory(3, time.Minute), &fakeClock{t: time.Now()})
			res, err := svc.Analyze(context.Background(), "hello world")
			assert.Nil(t, res)
			ae := codeOf(t, err)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.status, ae.Status)
		})
	}
}

func TestDemo_NoOracleIsDemoError(t *testing.T) {
	svc := newDemo(nil, ratelimit.NewMemory(3, time.Minute), &fakeClock{t: time.Now()})
	_, err := svc.Analyze(context.Background(), "hello")
	ae := codeOf(t, err)
	assert.Equal(t, apperr.CodeDemoError, ae.Code)
	assert.ErrorIs(t, err, oracle.ErrNotConfigured)
}

func TestDemo_RequestParameters(t *testing.T) {
	var got oracle.Request
	o := oracle.Func(func(_ context.Context, req oracle.Request) (string, error) {
		got = req
		return demoJSON, nil
	})
	svc := newDemo(o, ratelimit.NewMemory(3, time.Minute), &fakeClock{t: time.Now()})
	_, err := svc.Analyze(context.Background(), "plan my week")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got.Temperature, 1e-6)
	assert.Equal(t, 2500, got.MaxTokens)
	assert.Contains(t, got.Prompt, `Input to analyze: "plan my week"`)
}

func TestRandomSuffix(t *testing.T) {
	s := randomSuffix()
	assert.Len(t, s, 9)
	for _, r := range s {
		assert.True(t, strings.ContainsRune(idAlphabet, r))
	}
}
