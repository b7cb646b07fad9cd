package postStore

import (
	"context"
	"testing"
	"time"

	"github.com/blinky-z/Board/models"
	"gotest.tools/v3/assert"
)

func TestMemoryStoreListsNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctx := context.Background()
	assert.NilError(t, store.Insert(ctx, models.NewPost{Title: "first", Content: "a"}))
	now = now.Add(time.Minute)
	assert.NilError(t, store.Insert(ctx, models.NewPost{Title: "second", Content: "b"}))
	assert.NilError(t, store.Insert(ctx, models.NewPost{Title: "third", Content: "c"}))

	posts, err := store.ListAll(ctx)
	assert.NilError(t, err)

	titles := make([]string, 0, len(posts))
	for _, post := range posts {
		titles = append(titles, post.Title)
	}
	assert.DeepEqual(t, titles, []string{"third", "second", "first"})
	assert.Equal(t, posts[2].ID, models.PostID("1"))
	assert.Equal(t, posts[2].CreatedAt, now.Add(-time.Minute))
}

func TestMemoryStoreEmpty(t *testing.T) {
	posts, err := NewMemoryStore().ListAll(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, len(posts), 0)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Insert(ctx, models.NewPost{Title: "t", Content: "c"}), context.Canceled)
	_, err := store.ListAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
