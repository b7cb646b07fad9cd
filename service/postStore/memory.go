package postStore

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/blinky-z/Board/models"
)

// MemoryStore - process local store. Posts are lost on exit
type MemoryStore struct {
	mu     sync.Mutex
	nextID int
	posts  []models.Post
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		now:    time.Now,
	}
}

// Insert - saves a new post assigning sequential ID
func (s *MemoryStore) Insert(ctx context.Context, post models.NewPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append(s.posts, models.Post{
		ID:        models.PostID(strconv.Itoa(s.nextID)),
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: s.now().UTC(),
	})
	s.nextID++
	return nil
}

// ListAll - returns a copy of all posts, newest first
func (s *MemoryStore) ListAll(ctx context.Context) ([]models.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	posts := make([]models.Post, 0, len(s.posts))
	for i := len(s.posts) - 1; i >= 0; i-- {
		posts = append(posts, s.posts[i])
	}
	s.mu.Unlock()

	// posts are walked in reverse insertion order, so later inserts win ties
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

// Close - nothing to release
func (s *MemoryStore) Close() error {
	return nil
}
