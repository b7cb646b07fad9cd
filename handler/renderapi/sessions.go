package renderapi

import (
	"time"

	"github.com/blinky-z/Board/board"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// sessions - one board per browser. A session expires after ttl without requests, its board is closed on eviction
type sessions struct {
	boards   *cache.Cache
	newBoard func() *board.PostBoard
}

func newSessions(ttl time.Duration, newBoard func() *board.PostBoard) *sessions {
	boards := cache.New(ttl, ttl)
	boards.OnEvicted(func(id string, value interface{}) {
		value.(*board.PostBoard).Close()
	})
	return &sessions{
		boards:   boards,
		newBoard: newBoard,
	}
}

// get - returns board of the session with the given ID and extends the session.
// ok is false if there is no such session or it has expired
func (s *sessions) get(id string) (b *board.PostBoard, ok bool) {
	value, ok := s.boards.Get(id)
	if !ok {
		return nil, false
	}
	// Replace fails if the session expired after Get
	if err := s.boards.Replace(id, value, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return value.(*board.PostBoard), true
}

// create - starts a new session
func (s *sessions) create() (id string, b *board.PostBoard) {
	id = uuid.New().String()
	b = s.newBoard()
	s.boards.SetDefault(id, b)
	return id, b
}

// len - number of sessions, expired ones that are not evicted yet included
func (s *sessions) len() int {
	return s.boards.ItemCount()
}

// closeAll - closes every board. Used on server shutdown
func (s *sessions) closeAll() {
	s.boards.DeleteExpired()
	for id := range s.boards.Items() {
		s.boards.Delete(id)
	}
}
