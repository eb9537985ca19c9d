package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ronnydonkey/scatterbrain-ai/internal/apperr"
	"github.com/ronnydonkey/scatterbrain-ai/internal/metrics"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/oracle"
)

const (
	// MaxSynthesisInput is the longest accepted synthesis input, in characters.
	MaxSynthesisInput = 5000

	personaTemperature = 0.8
	personaMaxTokens   = 200
	summaryTemperature = 0.7
	summaryMaxTokens   = 400

	maxThemes  = 5
	maxActions = 7
)

var (
	errSynthesisUnavailable = apperr.New(http.StatusServiceUnavailable, apperr.CodeServiceUnavailable, "AI service not configured")
	errSynthesisInternal    = apperr.Internal("An internal error occurred")
)

// HistoryRecorder stores a finished synthesis for a user.
type HistoryRecorder interface {
	RecordSynthesis(ctx context.Context, userID string, advisorIDs []string, input string, result *model.SynthesisResult) error
}

// InsightOutcome is one persona's answer. Fallback is set when the oracle
// call failed and Insight holds the canned text; Err keeps the cause.
type InsightOutcome struct {
	Persona  model.Persona
	Insight  string
	Fallback bool
	Err      error
}

// SynthesisService asks every selected persona for an insight and then
// combines them into one summary.
type SynthesisService struct {
	oracle  oracle.Oracle
	history HistoryRecorder
	log     zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewSynthesisService wires the orchestrator. o may be nil when no provider
// is configured; every request then fails with SERVICE_UNAVAILABLE.
func NewSynthesisService(o oracle.Oracle, h HistoryRecorder, log zerolog.Logger, m *metrics.Metrics) *SynthesisService {
	return &SynthesisService{
		oracle:  o,
		history: h,
		log:     log.With().Str("component", "synthesis").Logger(),
		metrics: m,
		now:     time.Now,
	}
}

// ValidateSynthesis checks a request before any oracle call.
func ValidateSynthesis(advisors []model.Persona, input string) error {
	switch {
	case strings.TrimSpace(input) == "":
		return apperr.BadRequest(apperr.CodeInvalidInput, "Input text is required")
	case len(advisors) == 0:
		return apperr.BadRequest(apperr.CodeNoAdvisors, "At least one advisor is required")
	case len(advisors) > model.MaxBoardSize:
		return apperr.BadRequest(apperr.CodeTooManyAdvisors, "Maximum 8 advisors allowed")
	case utf8.RuneCountInString(input) > MaxSynthesisInput:
		return apperr.BadRequest(apperr.CodeInputTooLong, "Input text too long (max 5,000 characters)")
	}
	return nil
}

// Synthesize runs the board. userID, when set, receives a history entry.
// Returned errors are *apperr.Error.
func (s *SynthesisService) Synthesize(ctx context.Context, advisors []model.Persona, input, userID string) (*model.SynthesisResult, error) {
	start := s.now()
	if s.oracle == nil {
		return nil, errSynthesisUnavailable
	}
	if err := ValidateSynthesis(advisors, input); err != nil {
		return nil, err
	}

	s.log.Info().
		Int("advisors", len(advisors)).
		Str("input_preview", preview(input, 100)).
		Msg("generating board synthesis")

	outcomes := s.Insights(ctx, advisors, input)
	insights := make([]model.AdvisorInsight, len(outcomes))
	for i, o := range outcomes {
		insights[i] = model.AdvisorInsight{
			Name:    o.Persona.Name,
			Avatar:  o.Persona.Avatar,
			Tier:    o.Persona.Tier,
			Insight: o.Insight,
		}
	}

	summary, themes, actions, err := s.combine(ctx, input, insights)
	if err != nil {
		s.log.Error().Stack().Err(err).Msg("combined summary failed")
		return nil, classifyOracleError(err, oracleMessages{
			service:  "AI service temporarily unavailable",
			response: "AI service returned invalid response",
			timeout:  "Request timed out, please try again",
		}, errSynthesisInternal)
	}

	result := &model.SynthesisResult{
		Advisors:        insights,
		CombinedSummary: summary,
		KeyThemes:       themes,
		ActionPlan:      actions,
		Timestamp:       s.now().UTC(),
	}
	result.ProcessingTime = s.now().Sub(start).Seconds()

	if userID != "" && s.history != nil {
		ids := make([]string, len(advisors))
		for i, a := range advisors {
			ids[i] = a.ID
		}
		if err := s.history.RecordSynthesis(ctx, userID, ids, input, result); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("synthesis history not saved")
		}
	}

	s.log.Info().Float64("processing_time", result.ProcessingTime).Msg("board synthesis complete")
	return result, nil
}

// Insights asks each persona concurrently. A failed call never fails the
// batch: it is replaced by the persona's fallback insight. Outcomes keep the
// order of advisors.
func (s *SynthesisService) Insights(ctx context.Context, advisors []model.Persona, input string) []InsightOutcome {
	outcomes := make([]InsightOutcome, len(advisors))
	var g errgroup.Group
	for i, p := range advisors {
		g.Go(func() error {
			outcomes[i] = s.insight(ctx, p, input)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (s *SynthesisService) insight(ctx context.Context, p model.Persona, input string) InsightOutcome {
	text, err := s.complete(ctx, "persona", oracle.Request{
		System:      personaSystemPrompt(p),
		Prompt:      personaPrompt(p, input),
		Temperature: personaTemperature,
		MaxTokens:   personaMaxTokens,
	})
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = oracle.ErrMalformedResponse
	}
	if err != nil {
		s.log.Warn().Err(err).Str("persona", p.ID).Msg("persona insight failed; using fallback")
		s.metrics.PersonaFallback()
		return InsightOutcome{Persona: p, Insight: fallbackInsight(p), Fallback: true, Err: err}
	}
	return InsightOutcome{Persona: p, Insight: text}
}

func (s *SynthesisService) combine(ctx context.Context, input string, insights []model.AdvisorInsight) (string, []string, []string, error) {
	text, err := s.complete(ctx, "summary", oracle.Request{
		System:      summarySystemPrompt,
		Prompt:      summaryPrompt(input, insights),
		Temperature: summaryTemperature,
		MaxTokens:   summaryMaxTokens,
	})
	if err != nil {
		return "", nil, nil, err
	}
	obj, err := oracle.DecodeObject(text)
	if err != nil {
		return "", nil, nil, err
	}
	summary := oracle.StringOr(obj, "summary", "")
	themes, okThemes := oracle.Strings(obj, "themes")
	actions, okActions := oracle.Strings(obj, "actionPlan")
	if summary == "" || !okThemes || !okActions {
		return "", nil, nil, errors.Join(oracle.ErrMalformedResponse, errors.New("summary requires summary, themes and actionPlan"))
	}
	if len(themes) > maxThemes {
		themes = themes[:maxThemes]
	}
	if len(actions) > maxActions {
		actions = actions[:maxActions]
	}
	return summary, themes, actions, nil
}

// complete calls the oracle and records the call's outcome and latency.
func (s *SynthesisService) complete(ctx context.Context, purpose string, req oracle.Request) (string, error) {
	start := time.Now()
	text, err := s.oracle.Complete(ctx, req)
	s.metrics.ObserveOracle(s.oracle.Name(), purpose, outcomeOf(err), start)
	return text, err
}

type oracleMessages struct {
	service  string
	response string
	timeout  string
}

// classifyOracleError maps oracle failures to coded errors. Timeouts map to
// TIMEOUT_ERROR only when msgs.timeout is set; otherwise they count as upstream failures.
func classifyOracleError(err error, msgs oracleMessages, fallback *apperr.Error) *apperr.Error {
	switch {
	case errors.Is(err, oracle.ErrNotConfigured):
		return apperr.Wrap(err, http.StatusServiceUnavailable, apperr.CodeServiceUnavailable, "AI service not configured")
	case errors.Is(err, oracle.ErrMalformedResponse):
		return apperr.Wrap(err, http.StatusBadGateway, apperr.CodeAIResponseError, msgs.response)
	case oracle.IsTimeout(err) && msgs.timeout != "":
		return apperr.Wrap(err, http.StatusGatewayTimeout, apperr.CodeTimeout, msgs.timeout)
	case errors.Is(err, oracle.ErrUpstream), oracle.IsTimeout(err):
		return apperr.Wrap(err, http.StatusBadGateway, apperr.CodeAIServiceError, msgs.service)
	}
	return apperr.Resolve(err, fallback)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case oracle.IsTimeout(err):
		return metrics.OutcomeTimeout
	}
	return metrics.OutcomeError
}

func preview(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
