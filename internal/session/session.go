// Package session keeps live boards in memory for the game service. Each
// session owns exactly one board and serializes every call into it.
package session

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vancomm/sweeper/internal/board"
)

type Session struct {
	ID       uuid.UUID
	PlayerID *int64

	mu        sync.Mutex
	board     *board.Board
	startedAt time.Time
	endedAt   *time.Time
	touchedAt time.Time
	now       func() time.Time
}

// Snapshot is a consistent copy of session metadata taken under the session
// lock.
type Snapshot struct {
	ID        uuid.UUID
	PlayerID  *int64
	StartedAt time.Time
	EndedAt   *time.Time
}

// Do runs fn against the session's board while holding the session lock.
// The first time the board reaches a terminal status the end time is
// stamped; Do reports whether this call was the one that ended the game.
func (s *Session) Do(fn func(b *board.Board) error) (ended bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasOver := s.board.Status().Over()
	err = fn(s.board)
	s.touchedAt = s.now()
	if !wasOver && s.board.Status().Over() {
		t := s.touchedAt.UTC()
		s.endedAt = &t
		ended = true
	}
	return ended, err
}

// View runs fn with read access to the board and a snapshot of the session.
func (s *Session) View(fn func(snap Snapshot, b *board.Board)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.snapshot(), s.board)
}

// Reset swaps in a fresh board with the same shape and restarts the clock.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.board = s.board.Reset()
	s.startedAt = s.now().UTC()
	s.touchedAt = s.startedAt
	s.endedAt = nil
}

func (s *Session) snapshot() Snapshot {
	return Snapshot{
		ID:        s.ID,
		PlayerID:  s.PlayerID,
		StartedAt: s.startedAt,
		EndedAt:   s.endedAt,
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchedAt
}

type Store struct {
	logger   *slog.Logger
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	// seed derives a generator per board; nil leaves seeding to the board
	seed *rand.Rand
	now  func() time.Time
}

type StoreOption func(*Store)

// WithSeed makes mine placement reproducible. Every board still gets a
// generator of its own, drawn from one seeded with (seed1, seed2).
func WithSeed(seed1, seed2 uint64) StoreOption {
	return func(s *Store) {
		s.seed = rand.New(rand.NewPCG(seed1, seed2))
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

func NewStore(logger *slog.Logger, opts ...StoreOption) *Store {
	s := &Store{
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a new board and registers a session for it. Invalid board
// parameters are reported as *board.ConfigurationError.
func (s *Store) Create(rows, cols, mineCount int, playerID *int64) (*Session, error) {
	b, err := board.New(rows, cols, mineCount, s.boardOptions()...)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	session := &Session{
		ID:        uuid.New(),
		PlayerID:  playerID,
		board:     b,
		startedAt: now,
		touchedAt: now,
		now:       s.now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	s.logger.Debug(
		"created session",
		slog.String("id", session.ID.String()),
		slog.Int("rows", rows),
		slog.Int("cols", cols),
		slog.Int("mines", mineCount),
	)
	return session, nil
}

func (s *Store) boardOptions() []board.Option {
	if s.seed == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return []board.Option{
		board.WithRand(rand.New(rand.NewPCG(s.seed.Uint64(), s.seed.Uint64()))),
	}
}

func (s *Store) Get(id uuid.UUID) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops every session that has not been touched for maxIdle.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	swept := 0
	for id, session := range s.sessions {
		if session.idleSince().Before(cutoff) {
			delete(s.sessions, id)
			swept++
		}
	}
	return swept
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(maxIdle); n > 0 {
				s.logger.Info(
					"swept idle sessions",
					slog.Int("swept", n),
					slog.Int("left", s.Len()),
				)
			}
		}
	}
}
