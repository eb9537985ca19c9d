package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/metrics"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/oracle"
	"github.com/ronnydonkey/scatterbrain-ai/internal/ratelimit"
)

const (
	// MaxDemoInput is the longest accepted demo input, in characters.
	MaxDemoInput = 2000

	demoTemperature = 0.8
	demoMaxTokens   = 2500

	idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
)

var (
	errDemoRateLimit = apperr.New(http.StatusTooManyRequests, apperr.CodeDemoRateLimit, "Demo rate limit exceeded. Please try again in 5 minutes.")
	errDemoInternal  = apperr.New(http.StatusInternalServerError, apperr.CodeDemoError, "Demo temporarily unavailable")
)

// DemoService runs the single-shot analysis behind the public demo.
type DemoService struct {
	oracle  oracle.Oracle
	limiter ratelimit.Limiter
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
	suffix  func() string
}

// NewDemoService wires the analyzer. o may be nil; Analyze then fails with DEMO_ERROR.
func NewDemoService(o oracle.Oracle, l ratelimit.Limiter, log zerolog.Logger, m *metrics.Metrics) *DemoService {
	return &DemoService{
		oracle:  o,
		limiter: l,
		log:     log.With().Str("component", "demo").Logger(),
		metrics: m,
		now:     time.Now,
		suffix:  randomSuffix,
	}
}

// Admit counts one request against clientID's window. Limiter failures
// admit the request.
func (s *DemoService) Admit(ctx context.Context, clientID string) error {
	d, err := s.limiter.Allow(ctx, clientID)
	if err != nil {
		s.log.Warn().Err(err).Str("client", clientID).Msg("rate limiter unavailable; admitting request")
		return nil
	}
	if !d.Allowed {
		s.metrics.DemoRateLimited()
		s.log.Info().Str("client", clientID).Time("reset_at", d.ResetAt).Msg("demo rate limit exceeded")
		return errDemoRateLimit
	}
	return nil
}

// ValidateDemo checks demo input before any oracle call.
func ValidateDemo(input string) error {
	if strings.TrimSpace(input) == "" {
		return apperr.BadRequest(apperr.CodeInvalidInput, "Please enter some text to analyze")
	}
	if utf8.RuneCountInString(input) > MaxDemoInput {
		return apperr.BadRequest(apperr.CodeInputTooLong, "Demo text too long (max 2,000 characters)")
	}
	return nil
}

// Analyze returns a structured analysis of input. Returned errors are *apperr.Error.
func (s *DemoService) Analyze(ctx context.Context, input string) (*model.DemoAnalysis, error) {
	start := s.now()
	if err := ValidateDemo(input); err != nil {
		return nil, err
	}
	if s.oracle == nil {
		return nil, apperr.Resolve(oracle.ErrNotConfigured, errDemoInternal)
	}

	s.log.Info().Str("input_preview", preview(input, 100)).Msg("processing demo input")

	callStart := time.Now()
	text, err := s.oracle.Complete(ctx, oracle.Request{
		System:      demoSystemPrompt,
		Prompt:      demoPrompt(input),
		Temperature: demoTemperature,
		MaxTokens:   demoMaxTokens,
	})
	s.metrics.ObserveOracle(s.oracle.Name(), "demo", outcomeOf(err), callStart)
	var obj map[string]any
	if err == nil {
		obj, err = oracle.DecodeObject(text)
	}
	if err != nil {
		s.log.Error().Stack().Err(err).Msg("demo analysis failed")
		return nil, classifyOracleError(err, oracleMessages{
			service:  "AI analysis temporarily unavailable",
			response: "AI service returned unexpected response",
		}, errDemoInternal)
	}

	nowMS := s.now().UnixMilli()
	out := &model.DemoAnalysis{
		ID:       fmt.Sprintf("demo_%d_%s", nowMS, s.suffix()),
		Insights: buildDemoInsights(obj, nowMS),
		Metadata: buildDemoMetadata(obj, input),
	}
	out.ProcessingTime = s.now().Sub(start).Seconds()
	s.log.Info().Str("id", out.ID).Float64("processing_time", out.ProcessingTime).Msg("demo analysis complete")
	return out, nil
}

func buildDemoInsights(obj map[string]any, nowMS int64) model.DemoInsights {
	in := model.DemoInsights{
		KeyThemes:           []model.DemoTheme{},
		ActionItems:         []model.DemoActionItem{},
		ResearchSuggestions: []model.ResearchSuggestion{},
		CalendarBlocks:      []model.CalendarBlock{},
	}

	for _, t := range oracle.Objects(obj, "keyThemes") {
		conf, _ := oracle.Number(t, "confidence")
		in.KeyThemes = append(in.KeyThemes, model.DemoTheme{
			Theme:           oracle.StringOr(t, "theme", ""),
			Confidence:      clamp01(conf),
			Evidence:        stringsOrEmpty(t, "evidence"),
			RelatedConcepts: stringsOrEmpty(t, "relatedConcepts"),
		})
	}

	for i, a := range oracle.Objects(obj, "actionItems") {
		in.ActionItems = append(in.ActionItems, model.DemoActionItem{
			ID:                fmt.Sprintf("demo_action_%d_%d", nowMS, i),
			Task:              oracle.StringOr(a, "task", ""),
			Priority:          oracle.StringOr(a, "priority", "medium"),
			Category:          oracle.StringOr(a, "category", "planning"),
			EstimatedDuration: oracle.StringOr(a, "estimatedDuration", "30 minutes"),
			SuggestedTime:     oracle.StringOr(a, "suggestedTime", "morning"),
		})
	}

	if cs, ok := oracle.Object(obj, "contentSuggestions"); ok {
		if tw, ok := oracle.Object(cs, "twitter"); ok {
			in.ContentSuggestions.Twitter = &model.TwitterDraft{
				Content:  oracle.StringOr(tw, "content", ""),
				Hashtags: stringsOrEmpty(tw, "hashtags"),
			}
		}
		if li, ok := oracle.Object(cs, "linkedin"); ok {
			in.ContentSuggestions.LinkedIn = &model.LinkedInDraft{
				Content:  oracle.StringOr(li, "content", ""),
				PostType: oracle.StringOr(li, "post_type", ""),
			}
		}
		if ig, ok := oracle.Object(cs, "instagram"); ok {
			in.ContentSuggestions.Instagram = &model.InstagramDraft{
				Content: oracle.StringOr(ig, "content", ""),
				Style:   oracle.StringOr(ig, "style", ""),
			}
		}
	}

	for _, r := range oracle.Objects(obj, "researchSuggestions") {
		rel, _ := oracle.Number(r, "relevance")
		in.ResearchSuggestions = append(in.ResearchSuggestions, model.ResearchSuggestion{
			Topic:     oracle.StringOr(r, "topic", ""),
			Sources:   stringsOrEmpty(r, "sources"),
			Relevance: clamp01(rel),
		})
	}

	for _, c := range oracle.Objects(obj, "calendarBlocks") {
		minutes := defaultBlockMinutes
		if d, ok := oracle.Number(c, "duration"); ok && d >= 1 && d <= maxBlockMinutes {
			minutes = int(d)
		}
		in.CalendarBlocks = append(in.CalendarBlocks, model.CalendarBlock{
			Title:          oracle.StringOr(c, "title", ""),
			Duration:       minutes,
			Priority:       oracle.StringOr(c, "priority", "medium"),
			SuggestedTimes: stringsOrEmpty(c, "suggestedTimes"),
		})
	}
	return in
}

func buildDemoMetadata(obj map[string]any, input string) model.DemoMetadata {
	md := model.DemoMetadata{
		WordCount:  len(strings.Fields(input)),
		Sentiment:  "optimistic",
		Complexity: "medium",
		Topics:     []string{},
	}
	if m, ok := oracle.Object(obj, "metadata"); ok {
		md.Sentiment = oracle.StringOr(m, "sentiment", md.Sentiment)
		md.Complexity = oracle.StringOr(m, "complexity", md.Complexity)
		md.Topics = stringsOrEmpty(m, "topics")
	}
	return md
}

func stringsOrEmpty(m map[string]any, key string) []string {
	if v, ok := oracle.Strings(m, key); ok {
		return v
	}
	return []string{}
}

// A calendar block longer than a day is treated as garbage.
const (
	defaultBlockMinutes = 30
	maxBlockMinutes     = 24 * 60
)

func clamp01(f float64) float64 {
	switch {
	case math.IsNaN(f), f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

func randomSuffix() string {
	b := make([]byte, 9)
	for i := range b {
		b[i] = idAlphabet[rand.IntN(len(idAlphabet))]
	}
	return string(b)
}
