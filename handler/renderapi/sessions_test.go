package renderapi

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blinky-z/Board/board"
	"github.com/blinky-z/Board/service/postStore"
	"gotest.tools/v3/assert"
)

func newTestSessions(ttl time.Duration) *sessions {
	return newSessions(ttl, func() *board.PostBoard {
		return board.New(postStore.NewMemoryStore())
	})
}

func TestSessionsExpireIdleBoards(t *testing.T) {
	s := newTestSessions(300 * time.Millisecond)

	idleID, idleBoard := s.create()
	activeID, activeBoard := s.create()
	assert.Equal(t, s.len(), 2)

	time.Sleep(180 * time.Millisecond)
	b, ok := s.get(activeID)
	assert.Assert(t, ok)
	assert.Equal(t, b, activeBoard)

	time.Sleep(180 * time.Millisecond)
	_, ok = s.get(idleID)
	assert.Assert(t, !ok)
	_, ok = s.get(activeID)
	assert.Assert(t, ok)

	// janitor evicts the idle session and closes its board, which then refuses store calls
	deadline := time.Now().Add(2 * time.Second)
	for !errors.Is(idleBoard.LoadPosts(context.Background()), board.ErrSuperseded) {
		if time.Now().After(deadline) {
			t.Fatal("idle board was not closed")
		}
		time.Sleep(20 * time.Millisecond)
		_, ok = s.get(activeID)
		assert.Assert(t, ok)
	}
	assert.Equal(t, s.len(), 1)
}

func TestSessionsCloseAll(t *testing.T) {
	s := newTestSessions(time.Minute)
	id, b := s.create()

	s.closeAll()

	_, ok := s.get(id)
	assert.Assert(t, !ok)
	assert.Equal(t, s.len(), 0)
	assert.ErrorIs(t, b.LoadPosts(context.Background()), board.ErrSuperseded)
}
