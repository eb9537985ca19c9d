package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ronnydonkey/scatterbrain-ai/internal/metrics"
	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/personas"
	"github.com/ronnydonkey/scatterbrain-ai/internal/store"
)

var (
	ErrSelectionTooLarge = fmt.Errorf("%w: a board holds at most %d personas", model.ErrValidation, model.MaxBoardSize)
	ErrDuplicatePersona  = fmt.Errorf("%w: duplicate persona", model.ErrValidation)
	ErrUnknownPersona    = fmt.Errorf("%w: unknown persona", model.ErrValidation)
	ErrUserRequired      = errors.New("board: user identity required")
)

const (
	defaultCustomAvatar   = "👤"
	defaultCustomCategory = "Custom"
)

// LocalBoard is the fallback selection store used for anonymous sessions
// and whenever the durable store fails. Owner "" is the anonymous board.
type LocalBoard interface {
	BoardIDs(ctx context.Context, owner string) ([]string, error)
	SetBoardIDs(ctx context.Context, owner string, ids []string) error
}

// BoardService loads and persists persona boards. Durable store errors are
// logged and degraded, never returned.
type BoardService struct {
	store   store.Store
	local   LocalBoard
	dir     *personas.Directory
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu     sync.Mutex
	memory map[string][]model.Persona // custom personas that never reached the durable store, by user
}

// NewBoardService wires a board service. s may be nil, in which case every
// user is served from the local store and in-memory custom personas.
func NewBoardService(s store.Store, local LocalBoard, dir *personas.Directory, log zerolog.Logger, m *metrics.Metrics) *BoardService {
	return &BoardService{
		store:   s,
		local:   local,
		dir:     dir,
		log:     log.With().Str("component", "board").Logger(),
		metrics: m,
		memory:  make(map[string][]model.Persona),
	}
}

// ValidateSelection enforces the board size limit and id uniqueness.
func ValidateSelection(ids []string) error {
	if len(ids) > model.MaxBoardSize {
		return ErrSelectionTooLarge
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrDuplicatePersona, id)
		}
		seen[id] = true
	}
	return nil
}

// CheckSelection validates ids and requires each to name a directory persona
// or one of the user's custom personas.
func (s *BoardService) CheckSelection(ctx context.Context, userID string, ids []string) error {
	if err := ValidateSelection(ids); err != nil {
		return err
	}
	customs := s.customIndex(ctx, userID)
	for _, id := range ids {
		if _, ok := s.dir.Get(id); ok {
			continue
		}
		if _, ok := customs[id]; ok {
			continue
		}
		return fmt.Errorf("%w: %s", ErrUnknownPersona, id)
	}
	return nil
}

// Load hydrates a board session. Ids that resolve to no persona are dropped.
func (s *BoardService) Load(ctx context.Context, userID string) model.BoardState {
	state := model.BoardState{
		Selection:      []model.Persona{},
		CustomPersonas: []model.Persona{},
		History:        []model.HistoryEntry{},
	}

	if userID == "" || s.store == nil {
		state.CustomPersonas = append(state.CustomPersonas, s.memoryPersonas(userID)...)
		state.Selection = s.resolve(s.localIDs(ctx, userID), state.CustomPersonas)
		return state
	}

	ids, err := s.store.Boards().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		ids, err = nil, nil
	}
	var stored []*model.Persona
	if err == nil {
		stored, err = s.store.CustomPersonas().List(ctx, userID)
	}
	var history []*model.HistoryEntry
	if err == nil {
		history, err = s.store.History().ListRecent(ctx, userID, model.HistoryLimit)
	}
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("durable board load failed; using local store")
		s.metrics.StoreDegraded("load")
		state.CustomPersonas = append(state.CustomPersonas, s.memoryPersonas(userID)...)
		state.Selection = s.resolve(s.localIDs(ctx, userID), state.CustomPersonas)
		return state
	}

	for _, p := range stored {
		state.CustomPersonas = append(state.CustomPersonas, *p)
	}
	state.CustomPersonas = append(state.CustomPersonas, s.memoryPersonas(userID)...)
	state.Selection = s.resolve(ids, state.CustomPersonas)
	for _, h := range history {
		state.History = append(state.History, *h)
	}
	return state
}

// Save persists the selection. It always succeeds from the caller's point of
// view; write failures fall back to the local store and are logged.
func (s *BoardService) Save(ctx context.Context, userID string, ids []string) {
	if userID != "" && s.store != nil {
		err := s.store.Boards().Upsert(ctx, userID, ids)
		if err == nil {
			return
		}
		s.log.Warn().Err(err).Str("user_id", userID).Msg("durable board save failed; writing local store")
		s.metrics.StoreDegraded("save")
	}
	if err := s.local.SetBoardIDs(ctx, userID, ids); err != nil {
		s.log.Error().Stack().Err(err).Str("user_id", userID).Msg("local board save failed")
	}
}

// AddCustomPersona creates a user-authored persona. If it cannot be stored
// durably it is kept in memory for this process; persisted reports which.
func (s *BoardService) AddCustomPersona(ctx context.Context, userID string, draft model.PersonaDraft) (p model.Persona, persisted bool) {
	p = model.Persona{
		ID:       model.CustomIDPrefix + uuid.New().String(),
		Name:     strings.TrimSpace(draft.Name),
		Role:     strings.TrimSpace(draft.Role),
		Avatar:   strings.TrimSpace(draft.Avatar),
		Voice:    strings.TrimSpace(draft.Voice),
		Category: strings.TrimSpace(draft.Category),
		Tier:     model.TierInsider,
		IsCustom: true,
		UserID:   userID,
	}
	if p.Avatar == "" {
		p.Avatar = defaultCustomAvatar
	}
	if p.Category == "" {
		p.Category = defaultCustomCategory
	}

	if userID != "" && s.store != nil {
		created, err := s.store.CustomPersonas().Create(ctx, &p)
		if err == nil {
			return *created, true
		}
		s.log.Warn().Err(err).Str("user_id", userID).Msg("custom persona not persisted; keeping in memory")
		s.metrics.StoreDegraded("add_custom_persona")
	}

	s.mu.Lock()
	s.memory[userID] = append(s.memory[userID], p)
	s.mu.Unlock()
	return p, false
}

// RemoveCustomPersona deletes a custom persona owned by userID and drops it
// from the stored selection. Without a user it returns ErrUserRequired.
func (s *BoardService) RemoveCustomPersona(ctx context.Context, userID, personaID string) error {
	if userID == "" {
		return ErrUserRequired
	}

	s.mu.Lock()
	kept := s.memory[userID][:0]
	for _, p := range s.memory[userID] {
		if p.ID != personaID {
			kept = append(kept, p)
		}
	}
	s.memory[userID] = kept
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	if err := s.store.CustomPersonas().Delete(ctx, userID, personaID); err != nil {
		return fmt.Errorf("delete custom persona %s: %w", personaID, err)
	}

	ids, err := s.store.Boards().Get(ctx, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load board after delete: %w", err)
	}
	next := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != personaID {
			next = append(next, id)
		}
	}
	if len(next) == len(ids) {
		return nil
	}
	if err := s.store.Boards().Upsert(ctx, userID, next); err != nil {
		return fmt.Errorf("save board after delete: %w", err)
	}
	return nil
}

// RecordSynthesis appends a result to the user's history.
func (s *BoardService) RecordSynthesis(ctx context.Context, userID string, advisorIDs []string, input string, result *model.SynthesisResult) error {
	if userID == "" || s.store == nil {
		return nil
	}
	_, err := s.store.History().Append(ctx, &model.HistoryEntry{
		UserID:     userID,
		InputText:  input,
		AdvisorIDs: advisorIDs,
		Results:    result,
	})
	if err != nil {
		s.metrics.StoreDegraded("record_synthesis")
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

// Templates lists public board templates, most used first. Without a durable
// store, or when it fails, the built-in templates are returned.
func (s *BoardService) Templates(ctx context.Context) []model.BoardTemplate {
	if s.store != nil {
		tpls, err := s.store.Templates().ListPublic(ctx)
		if err == nil && len(tpls) > 0 {
			out := make([]model.BoardTemplate, 0, len(tpls))
			for _, t := range tpls {
				out = append(out, *t)
			}
			return out
		}
		if err != nil {
			s.log.Warn().Err(err).Msg("list templates failed; using built-in templates")
			s.metrics.StoreDegraded("templates")
		}
	}
	return s.dir.Templates()
}

// TemplateSelection resolves a template's personas and bumps its usage count.
// The caller writes the selection so it is ordered with the user's other saves.
func (s *BoardService) TemplateSelection(ctx context.Context, templateID string) ([]model.Persona, error) {
	tpl, err := s.findTemplate(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if s.store != nil {
		if err := s.store.Templates().IncrementUsage(ctx, templateID); err != nil && !errors.Is(err, model.ErrNotFound) {
			s.log.Warn().Err(err).Str("template_id", templateID).Msg("template usage not recorded")
		}
	}
	return s.dir.Resolve(tpl.AdvisorIDs), nil
}

// PersonaIDs returns the ids of ps in order.
func PersonaIDs(ps []model.Persona) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}

// SeedTemplates writes the built-in templates to the durable store, keeping usage counts.
func (s *BoardService) SeedTemplates(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	for _, t := range s.dir.Templates() {
		t := t
		if err := s.store.Templates().Upsert(ctx, &t); err != nil {
			return fmt.Errorf("seed template %s: %w", t.ID, err)
		}
	}
	return nil
}

func (s *BoardService) findTemplate(ctx context.Context, templateID string) (model.BoardTemplate, error) {
	if s.store != nil {
		t, err := s.store.Templates().Get(ctx, templateID)
		if err == nil {
			return *t, nil
		}
		if !errors.Is(err, model.ErrNotFound) {
			s.log.Warn().Err(err).Str("template_id", templateID).Msg("template lookup failed; trying built-in templates")
		}
	}
	for _, t := range s.dir.Templates() {
		if t.ID == templateID {
			return t, nil
		}
	}
	return model.BoardTemplate{}, fmt.Errorf("template %s: %w", templateID, model.ErrNotFound)
}

func (s *BoardService) localIDs(ctx context.Context, userID string) []string {
	ids, err := s.local.BoardIDs(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("local board read failed; starting empty")
		return nil
	}
	return ids
}

func (s *BoardService) memoryPersonas(userID string) []model.Persona {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Persona, len(s.memory[userID]))
	copy(out, s.memory[userID])
	return out
}

func (s *BoardService) customIndex(ctx context.Context, userID string) map[string]model.Persona {
	idx := make(map[string]model.Persona)
	for _, p := range s.memoryPersonas(userID) {
		idx[p.ID] = p
	}
	if userID == "" || s.store == nil {
		return idx
	}
	stored, err := s.store.CustomPersonas().List(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("list custom personas failed")
		return idx
	}
	for _, p := range stored {
		idx[p.ID] = *p
	}
	return idx
}

func (s *BoardService) resolve(ids []string, customs []model.Persona) []model.Persona {
	byID := make(map[string]model.Persona, len(customs))
	for _, p := range customs {
		byID[p.ID] = p
	}
	out := make([]model.Persona, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] || len(out) == model.MaxBoardSize {
			continue
		}
		if p, ok := s.dir.Get(id); ok {
			out = append(out, p)
			seen[id] = true
		} else if p, ok := byID[id]; ok {
			out = append(out, p)
			seen[id] = true
		}
	}
	return out
}
