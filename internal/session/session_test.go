package session

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/sweeper/internal/board"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore() (*Store, *clock) {
	c := &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore(
		discard,
		WithClock(c.Now),
		WithSeed(1, 2),
	)
	return s, c
}

func TestCreateAndGet(t *testing.T) {
	s, c := newTestStore()
	player := int64(42)

	session, err := s.Create(10, 10, 10, &player)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, session.ID)
	assert.Equal(t, 1, s.Len())

	got, ok := s.Get(session.ID)
	require.True(t, ok)
	assert.Same(t, session, got)

	got.View(func(snap Snapshot, b *board.Board) {
		assert.Equal(t, c.Now(), snap.StartedAt)
		assert.Nil(t, snap.EndedAt)
		assert.Equal(t, &player, snap.PlayerID)
		assert.Equal(t, 10, b.Rows())
	})

	_, ok = s.Get(uuid.New())
	assert.False(t, ok)
}

func TestCreateInvalid(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.Create(5, 5, 17, nil)
	var ce *board.ConfigurationError
	require.True(t, errors.As(err, &ce))
	assert.Zero(t, s.Len())
}

func TestDoStampsEnd(t *testing.T) {
	s, c := newTestStore()
	session, err := s.Create(2, 2, 0, nil)
	require.NoError(t, err)

	c.Advance(time.Minute)
	ended, err := session.Do(func(b *board.Board) error {
		return b.Reveal(0, 0)
	})
	require.NoError(t, err)
	assert.True(t, ended)

	var endedAt *time.Time
	session.View(func(snap Snapshot, b *board.Board) {
		assert.Equal(t, board.Won, b.Status())
		endedAt = snap.EndedAt
	})
	require.NotNil(t, endedAt)
	assert.Equal(t, c.Now(), *endedAt)

	// later moves do not end the game again
	c.Advance(time.Minute)
	ended, err = session.Do(func(b *board.Board) error {
		return b.Reveal(1, 1)
	})
	require.NoError(t, err)
	assert.False(t, ended)
	session.View(func(snap Snapshot, _ *board.Board) {
		assert.Equal(t, endedAt, snap.EndedAt)
	})
}

func TestDoPassesErrors(t *testing.T) {
	s, _ := newTestStore()
	session, err := s.Create(3, 3, 0, nil)
	require.NoError(t, err)

	_, err = session.Do(func(b *board.Board) error {
		return b.Reveal(3, 3)
	})
	assert.ErrorIs(t, err, board.ErrOutOfBounds)
}

func TestReset(t *testing.T) {
	s, c := newTestStore()
	session, err := s.Create(2, 2, 0, nil)
	require.NoError(t, err)
	_, err = session.Do(func(b *board.Board) error { return b.Reveal(0, 0) })
	require.NoError(t, err)

	c.Advance(time.Hour)
	session.Reset()
	session.View(func(snap Snapshot, b *board.Board) {
		assert.Nil(t, snap.EndedAt)
		assert.Equal(t, c.Now(), snap.StartedAt)
		assert.Equal(t, board.Ongoing, b.Status())
		assert.False(t, b.MinesPlaced())
		assert.Equal(t, 2, b.Rows())
	})
}

func TestSweep(t *testing.T) {
	s, c := newTestStore()
	stale, err := s.Create(3, 3, 0, nil)
	require.NoError(t, err)

	c.Advance(30 * time.Minute)
	fresh, err := s.Create(3, 3, 0, nil)
	require.NoError(t, err)

	c.Advance(40 * time.Minute)
	assert.Equal(t, 1, s.Sweep(time.Hour))

	_, ok := s.Get(stale.ID)
	assert.False(t, ok)
	_, ok = s.Get(fresh.ID)
	assert.True(t, ok)

	assert.True(t, s.Delete(fresh.ID))
	assert.False(t, s.Delete(fresh.ID))
	assert.Zero(t, s.Len())
}

func TestConcurrentMoves(t *testing.T) {
	s, _ := newTestStore()
	session, err := s.Create(20, 20, 40, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for r := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range 20 {
				_, err := session.Do(func(b *board.Board) error {
					return b.ToggleFlag(r, c)
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	session.View(func(_ Snapshot, b *board.Board) {
		assert.Equal(t, 400, b.FlagCount())
	})
}

func TestBoardsDrawIndependentGenerators(t *testing.T) {
	s, _ := newTestStore()
	sessions := make([]*Session, 8)
	for i := range sessions {
		var err error
		sessions[i], err = s.Create(16, 16, 40, nil)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := session.Do(func(b *board.Board) error {
				return b.Reveal(15, 15)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	layouts := make(map[string]bool)
	for _, session := range sessions {
		session.View(func(_ Snapshot, b *board.Board) {
			assert.Len(t, b.Mines(), 40)
			layouts[fmt.Sprint(b.Mines())] = true
		})
	}
	assert.Len(t, layouts, len(sessions))
}

func TestSeededStoresAreReproducible(t *testing.T) {
	mines := func() []board.Point {
		s, _ := newTestStore()
		session, err := s.Create(9, 9, 10, nil)
		require.NoError(t, err)
		var out []board.Point
		_, err = session.Do(func(b *board.Board) error {
			err := b.Reveal(4, 4)
			out = b.Mines()
			return err
		})
		require.NoError(t, err)
		return out
	}
	assert.Equal(t, mines(), mines())
}
