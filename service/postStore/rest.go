package postStore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/blinky-z/Board/models"
	"github.com/spf13/cast"
	"github.com/supabase-community/postgrest-go"
)

// ErrMissingEndpoint - rest store was configured without url or key
var ErrMissingEndpoint = errors.New("postStore: rest store requires url and key")

// RESTStore - client of a hosted PostgREST endpoint (as exposed by Supabase at /rest/v1)
type RESTStore struct {
	client  *postgrest.Client
	table   string
	timeout time.Duration
}

// NewRESTStore - creates rest store client. baseURL is the project url, table is served under /rest/v1/.
// Zero timeout means calls are bounded by their context only
func NewRESTStore(baseURL, key, table string, timeout time.Duration) (*RESTStore, error) {
	if baseURL == "" || key == "" {
		return nil, ErrMissingEndpoint
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("postStore: invalid rest url %q: %w", baseURL, err)
	}

	client := postgrest.NewClient(strings.TrimSuffix(baseURL, "/")+"/rest/v1", "", map[string]string{
		"apikey":        key,
		"Authorization": "Bearer " + key,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("postStore: creating rest client: %w", client.ClientError)
	}

	return &RESTStore{client: client, table: table, timeout: timeout}, nil
}

// restPost - post row as returned by PostgREST
type restPost struct {
	ID        models.PostID `json:"id"`
	Title     string        `json:"title"`
	Content   string        `json:"content"`
	CreatedAt restTime      `json:"created_at"`
}

// restTime - timestamptz columns come with an offset, timestamp columns without one. The latter are read as UTC
type restTime time.Time

func (t *restTime) UnmarshalJSON(b []byte) error {
	var value string
	if err := json.Unmarshal(b, &value); err != nil {
		return err
	}
	parsed, err := cast.ToTimeE(value)
	if err != nil {
		return err
	}
	*t = restTime(parsed)
	return nil
}

// execute - postgrest requests carry no context. The call runs aside and is abandoned once ctx is done
func (s *RESTStore) execute(ctx context.Context, request *postgrest.FilterBuilder) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, _, err := request.Execute()
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.body, r.err
	}
}

// Insert - saves a new post
func (s *RESTStore) Insert(ctx context.Context, post models.NewPost) error {
	request := s.client.From(s.table).Insert([]models.NewPost{post}, false, "", "minimal", "")
	if _, err := s.execute(ctx, request); err != nil {
		return fmt.Errorf("postStore: inserting post into %s: %w", s.table, err)
	}
	return nil
}

// ListAll - returns all posts, newest first
func (s *RESTStore) ListAll(ctx context.Context) ([]models.Post, error) {
	request := s.client.From(s.table).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false})

	body, err := s.execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("postStore: selecting posts from %s: %w", s.table, err)
	}

	var rows []restPost
	if err = json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("postStore: decoding posts: %w", err)
	}
	posts := make([]models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, models.Post{
			ID:        row.ID,
			Title:     row.Title,
			Content:   row.Content,
			CreatedAt: time.Time(row.CreatedAt),
		})
	}
	return posts, nil
}

// Close - rest store holds no connections of its own
func (s *RESTStore) Close() error {
	return nil
}
