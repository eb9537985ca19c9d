package store

import (
	"context"

	"github.com/ronnydonkey/scatterbrain-ai/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (postgres, sqlite).
// Lookups that find nothing return model.ErrNotFound.
type Store interface {
	Boards() Boards
	CustomPersonas() CustomPersonas
	History() History
	Templates() Templates
}

// Boards persists one ordered persona id list per user.
type Boards interface {
	Get(ctx context.Context, userID string) ([]string, error)
	Upsert(ctx context.Context, userID string, advisorIDs []string) error
}

// CustomPersonas persists user-authored personas.
type CustomPersonas interface {
	Create(ctx context.Context, p *model.Persona) (*model.Persona, error)
	// List returns the user's personas, newest first.
	List(ctx context.Context, userID string) ([]*model.Persona, error)
	// Delete removes a persona owned by userID. Deleting a missing persona is not an error.
	Delete(ctx context.Context, userID, personaID string) error
}

// History persists synthesis results, keeping at most model.HistoryLimit rows per user.
type History interface {
	Append(ctx context.Context, e *model.HistoryEntry) (*model.HistoryEntry, error)
	// ListRecent returns up to limit entries, newest first.
	ListRecent(ctx context.Context, userID string, limit int) ([]*model.HistoryEntry, error)
}

// Templates persists public board templates.
type Templates interface {
	// ListPublic returns public templates ordered by usage count, highest first.
	ListPublic(ctx context.Context) ([]*model.BoardTemplate, error)
	Get(ctx context.Context, templateID string) (*model.BoardTemplate, error)
	IncrementUsage(ctx context.Context, templateID string) error
	// Upsert inserts or replaces a template without touching its usage count.
	Upsert(ctx context.Context, t *model.BoardTemplate) error
}
