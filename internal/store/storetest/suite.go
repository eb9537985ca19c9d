// Package storetest is a compliance suite shared by every store.Store driver.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
	"github.com/ronnydonkey/scatterbrain-ai/internal/store"
)

// Run exercises the compliance suite against a store.Store implementation.
// makeStore should return a clean, isolated store.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("Boards", func(t *testing.T) { testBoards(t, makeStore(t)) })
	t.Run("CustomPersonas", func(t *testing.T) { testCustomPersonas(t, makeStore(t)) })
	t.Run("History", func(t *testing.T) { testHistory(t, makeStore(t)) })
	t.Run("Templates", func(t *testing.T) { testTemplates(t, makeStore(t)) })
}

func newUserID() string { return "u-" + uuid.New().String() }

func testBoards(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := newUserID()

	if _, err := s.Boards().Get(ctx, userID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get missing board: want ErrNotFound, got %v", err)
	}

	if err := s.Boards().Upsert(ctx, userID, []string{"naval", "paul-graham"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	got, err := s.Boards().Get(ctx, userID)
	if err != nil || strings.Join(got, ",") != "naval,paul-graham" {
		t.Fatalf("Get after upsert: got=%v err=%v", got, err)
	}

	if err := s.Boards().Upsert(ctx, userID, []string{"seth-godin"}); err != nil {
		t.Fatalf("Upsert replace: %v", err)
	}
	got, err = s.Boards().Get(ctx, userID)
	if err != nil || len(got) != 1 || got[0] != "seth-godin" {
		t.Fatalf("Get after replace: got=%v err=%v", got, err)
	}

	if err := s.Boards().Upsert(ctx, userID, nil); err != nil {
		t.Fatalf("Upsert empty: %v", err)
	}
	got, err = s.Boards().Get(ctx, userID)
	if err != nil || len(got) != 0 {
		t.Fatalf("Get after clearing: got=%v err=%v", got, err)
	}
}

func testCustomPersonas(t *testing.T, s store.Store) {
	ctx := context.Background()
	owner, other := newUserID(), newUserID()

	first, err := s.CustomPersonas().Create(ctx, &model.Persona{UserID: owner, Name: "Grandma", Role: "Matriarch", Avatar: "👵", Voice: "Thrift, patience", Category: "Wisdom"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !strings.HasPrefix(first.ID, model.CustomIDPrefix) || first.Tier != model.TierInsider || !first.IsCustom {
		t.Fatalf("Create: unexpected persona %+v", first)
	}
	time.Sleep(2 * time.Millisecond)
	second, err := s.CustomPersonas().Create(ctx, &model.Persona{UserID: owner, Name: "Coach", Voice: "Reps"})
	if err != nil {
		t.Fatalf("Create second: %v", err)
	}

	list, err := s.CustomPersonas().List(ctx, owner)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: n=%d err=%v", len(list), err)
	}
	if list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("List: want newest first, got %s,%s", list[0].ID, list[1].ID)
	}
	if list[1].Voice != "Thrift, patience" || list[1].UserID != owner {
		t.Fatalf("List: fields not round-tripped: %+v", list[1])
	}

	if lst, err := s.CustomPersonas().List(ctx, other); err != nil || len(lst) != 0 {
		t.Fatalf("List other user: n=%d err=%v", len(lst), err)
	}

	// Deletes are scoped by owner.
	if err := s.CustomPersonas().Delete(ctx, other, first.ID); err != nil {
		t.Fatalf("Delete as other user: %v", err)
	}
	if lst, _ := s.CustomPersonas().List(ctx, owner); len(lst) != 2 {
		t.Fatalf("Delete as other user removed a row: n=%d", len(lst))
	}
	if err := s.CustomPersonas().Delete(ctx, owner, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if lst, _ := s.CustomPersonas().List(ctx, owner); len(lst) != 1 || lst[0].ID != second.ID {
		t.Fatalf("Delete: unexpected remaining %v", lst)
	}
	if err := s.CustomPersonas().Delete(ctx, owner, "custom-missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func testHistory(t *testing.T, s store.Store) {
	ctx := context.Background()
	userID := newUserID()

	total := model.HistoryLimit + 3
	for i := 0; i < total; i++ {
		e := &model.HistoryEntry{
			UserID:     userID,
			InputText:  fmt.Sprintf("question %d", i),
			AdvisorIDs: []string{"naval"},
			Results: &model.SynthesisResult{
				Advisors:        []model.AdvisorInsight{{Name: "Naval Ravikant", Avatar: "🚀", Tier: model.TierLegendary, Insight: "Seek leverage."}},
				CombinedSummary: fmt.Sprintf("summary %d", i),
				KeyThemes:       []string{"leverage"},
				ActionPlan:      []string{"write"},
			},
		}
		out, err := s.History().Append(ctx, e)
		if err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
		if out.ID == "" || out.CreatedAt.IsZero() {
			t.Fatalf("Append %d: missing id/createdAt: %+v", i, out)
		}
		time.Sleep(time.Millisecond)
	}

	list, err := s.History().ListRecent(ctx, userID, 0)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(list) != model.HistoryLimit {
		t.Fatalf("ListRecent: want %d entries, got %d", model.HistoryLimit, len(list))
	}
	if list[0].InputText != fmt.Sprintf("question %d", total-1) {
		t.Fatalf("ListRecent: newest first violated, got %q", list[0].InputText)
	}
	if last := list[len(list)-1]; last.InputText != fmt.Sprintf("question %d", total-model.HistoryLimit) {
		t.Fatalf("ListRecent: oldest retained wrong, got %q", last.InputText)
	}
	if list[0].Results == nil || list[0].Results.Advisors[0].Insight != "Seek leverage." {
		t.Fatalf("ListRecent: results not round-tripped: %+v", list[0].Results)
	}

	limited, err := s.History().ListRecent(ctx, userID, 5)
	if err != nil || len(limited) != 5 {
		t.Fatalf("ListRecent limit: n=%d err=%v", len(limited), err)
	}
	if other, err := s.History().ListRecent(ctx, newUserID(), 10); err != nil || len(other) != 0 {
		t.Fatalf("ListRecent other user: n=%d err=%v", len(other), err)
	}
}

func testTemplates(t *testing.T, s store.Store) {
	ctx := context.Background()
	suffix := uuid.New().String()[:8]
	a := &model.BoardTemplate{ID: "tpl-a-" + suffix, Name: "A", AdvisorIDs: []string{"naval"}, Category: "Business", IsPublic: true}
	b := &model.BoardTemplate{ID: "tpl-b-" + suffix, Name: "B", AdvisorIDs: []string{"seth-godin", "naval"}, Category: "Marketing", IsPublic: true}
	hidden := &model.BoardTemplate{ID: "tpl-h-" + suffix, Name: "Hidden", AdvisorIDs: []string{"naval"}}

	for _, tpl := range []*model.BoardTemplate{a, b, hidden} {
		if err := s.Templates().Upsert(ctx, tpl); err != nil {
			t.Fatalf("Upsert %s: %v", tpl.ID, err)
		}
	}

	if _, err := s.Templates().Get(ctx, "tpl-missing-"+suffix); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("Get missing: want ErrNotFound, got %v", err)
	}
	if err := s.Templates().IncrementUsage(ctx, "tpl-missing-"+suffix); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("IncrementUsage missing: want ErrNotFound, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := s.Templates().IncrementUsage(ctx, b.ID); err != nil {
			t.Fatalf("IncrementUsage: %v", err)
		}
	}
	got, err := s.Templates().Get(ctx, b.ID)
	if err != nil || got.UsageCount != 2 || len(got.AdvisorIDs) != 2 || got.AdvisorIDs[0] != "seth-godin" {
		t.Fatalf("Get: got=%+v err=%v", got, err)
	}

	// Re-seeding keeps the usage count.
	if err := s.Templates().Upsert(ctx, b); err != nil {
		t.Fatalf("Upsert again: %v", err)
	}
	if got, _ := s.Templates().Get(ctx, b.ID); got.UsageCount != 2 {
		t.Fatalf("Upsert reset usage count: %d", got.UsageCount)
	}

	list, err := s.Templates().ListPublic(ctx)
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	pos := map[string]int{}
	for i, tpl := range list {
		pos[tpl.ID] = i
	}
	if _, ok := pos[hidden.ID]; ok {
		t.Fatalf("ListPublic returned a private template")
	}
	ia, okA := pos[a.ID]
	ib, okB := pos[b.ID]
	if !okA || !okB || ib > ia {
		t.Fatalf("ListPublic: want %s before %s, got %v", b.ID, a.ID, pos)
	}
}
