package services

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// BoardSaver persists a selection; BoardService satisfies it.
type BoardSaver interface {
	Save(ctx context.Context, userID string, ids []string)
}

// AutoSaver orders every board write per user. Schedule debounces: each call
// restarts the quiet period and replaces the pending selection. SaveNow writes
// immediately and supersedes anything still pending. Writes carry a generation,
// and a write older than the last one stored for the user is dropped.
type AutoSaver struct {
	saver BoardSaver
	delay time.Duration
	log   zerolog.Logger

	mu      sync.Mutex
	gen     uint64
	pending map[string]*pendingSave
	users   map[string]*userSaves
}

type pendingSave struct {
	ids   []string
	gen   uint64
	timer *time.Timer
}

// userSaves serializes one user's writes. It lives while the user has a save
// pending or in flight; refs is guarded by AutoSaver.mu.
type userSaves struct {
	mu        sync.Mutex
	lastSaved uint64
	refs      int
}

func NewAutoSaver(saver BoardSaver, delay time.Duration, log zerolog.Logger) *AutoSaver {
	return &AutoSaver{
		saver:   saver,
		delay:   delay,
		log:     log.With().Str("component", "autosave").Logger(),
		pending: make(map[string]*pendingSave),
		users:   make(map[string]*userSaves),
	}
}

// Schedule queues ids for userID, superseding any save still waiting.
func (a *AutoSaver) Schedule(userID string, ids []string) {
	snapshot := append([]string(nil), ids...)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.gen++
	gen := a.gen
	if p, ok := a.pending[userID]; ok {
		p.timer.Stop()
	}
	a.pending[userID] = &pendingSave{
		ids:   snapshot,
		gen:   gen,
		timer: time.AfterFunc(a.delay, func() { a.fire(userID, gen) }),
	}
}

// SaveNow writes ids for userID before returning. A pending debounced save for
// the user is discarded, and one already in flight cannot land afterwards.
func (a *AutoSaver) SaveNow(ctx context.Context, userID string, ids []string) {
	snapshot := append([]string(nil), ids...)

	a.mu.Lock()
	a.gen++
	gen := a.gen
	if p, ok := a.pending[userID]; ok {
		p.timer.Stop()
		delete(a.pending, userID)
	}
	u := a.acquire(userID)
	a.mu.Unlock()

	a.write(ctx, userID, u, snapshot, gen)
}

// FlushUser writes userID's pending selection, if any, and waits for any of
// the user's writes already in flight.
func (a *AutoSaver) FlushUser(ctx context.Context, userID string) {
	a.mu.Lock()
	p, ok := a.pending[userID]
	if ok {
		p.timer.Stop()
		delete(a.pending, userID)
	}
	u := a.acquire(userID)
	a.mu.Unlock()

	if !ok {
		// Generation zero is never written; this only waits for the user's lock.
		a.write(ctx, userID, u, nil, 0)
		return
	}
	a.write(ctx, userID, u, p.ids, p.gen)
}

// Flush writes every pending selection now.
func (a *AutoSaver) Flush(ctx context.Context) {
	type job struct {
		userID string
		p      *pendingSave
		u      *userSaves
	}
	a.mu.Lock()
	jobs := make([]job, 0, len(a.pending))
	for userID, p := range a.pending {
		p.timer.Stop()
		jobs = append(jobs, job{userID: userID, p: p, u: a.acquire(userID)})
	}
	a.pending = make(map[string]*pendingSave)
	a.mu.Unlock()

	for _, j := range jobs {
		a.write(ctx, j.userID, j.u, j.p.ids, j.p.gen)
	}
	if len(jobs) > 0 {
		a.log.Info().Int("boards", len(jobs)).Msg("flushed pending board saves")
	}
}

// Pending reports how many users have a save waiting.
func (a *AutoSaver) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

func (a *AutoSaver) fire(userID string, gen uint64) {
	a.mu.Lock()
	p, ok := a.pending[userID]
	if !ok || p.gen != gen {
		a.mu.Unlock()
		return
	}
	delete(a.pending, userID)
	u := a.acquire(userID)
	a.mu.Unlock()

	a.write(context.Background(), userID, u, p.ids, p.gen)
}

// acquire must be called with a.mu held, in the same critical section that
// hands out or claims gen, so no generation outlives its user's state.
func (a *AutoSaver) acquire(userID string) *userSaves {
	u, ok := a.users[userID]
	if !ok {
		u = &userSaves{}
		a.users[userID] = u
	}
	u.refs++
	return u
}

func (a *AutoSaver) release(userID string, u *userSaves) {
	a.mu.Lock()
	defer a.mu.Unlock()
	u.refs--
	if _, waiting := a.pending[userID]; u.refs == 0 && !waiting {
		delete(a.users, userID)
	}
}

// write stores ids unless a newer selection for the user was already written.
func (a *AutoSaver) write(ctx context.Context, userID string, u *userSaves, ids []string, gen uint64) {
	defer a.release(userID, u)
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.lastSaved >= gen {
		return
	}
	a.saver.Save(ctx, userID, ids)
	u.lastSaved = gen
	a.log.Debug().Str("user_id", userID).Int("personas", len(ids)).Msg("board saved")
}

func (a *AutoSaver) trackedUsers() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.users)
}
