package renderapi

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/blinky-z/Board/board"
	"github.com/blinky-z/Board/models"
	"github.com/blinky-z/Board/service/postStore"
	"github.com/gorilla/mux"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

type failingStore struct{}

func (failingStore) Insert(ctx context.Context, post models.NewPost) error {
	return errors.New("store is down")
}

func (failingStore) ListAll(ctx context.Context) ([]models.Post, error) {
	return nil, errors.New("store is down")
}

type testClient struct {
	t      *testing.T
	server *httptest.Server
	client *http.Client
}

func newTestClient(t *testing.T, store board.PostStore) *testClient {
	t.Helper()
	discard := log.New(io.Discard, "", 0)
	renderAPIHandler, err := NewRenderAPIHandler(store, "Writing", 20*time.Millisecond, time.Hour, discard, discard)
	assert.NilError(t, err)

	router := mux.NewRouter()
	router.Path("/").Handler(renderAPIHandler.RenderIndexPageHandler()).Methods("GET")
	router.Path("/section").Handler(renderAPIHandler.SwitchSectionHandler()).Methods("POST")
	router.Path("/draft/clear").Handler(renderAPIHandler.ClearDraftHandler()).Methods("POST")
	router.Path("/submit").Handler(renderAPIHandler.SubmitPostHandler()).Methods("POST")

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		renderAPIHandler.Close()
	})

	jar, err := cookiejar.New(nil)
	assert.NilError(t, err)
	return &testClient{t: t, server: server, client: &http.Client{Jar: jar}}
}

func (c *testClient) read(r *http.Response, err error) (int, string) {
	c.t.Helper()
	assert.NilError(c.t, err)
	defer func() {
		_ = r.Body.Close()
	}()
	body, err := io.ReadAll(r.Body)
	assert.NilError(c.t, err)
	return r.StatusCode, string(body)
}

func (c *testClient) getPage() string {
	c.t.Helper()
	code, body := c.read(c.client.Get(c.server.URL + "/"))
	assert.Equal(c.t, code, http.StatusOK)
	return body
}

func (c *testClient) post(path string, form url.Values) (int, string) {
	c.t.Helper()
	return c.read(c.client.PostForm(c.server.URL+path, form))
}

func TestIndexPageStartsInWriteSection(t *testing.T) {
	c := newTestClient(t, postStore.NewMemoryStore())

	r, err := c.client.Get(c.server.URL + "/")
	assert.NilError(t, err)
	_ = r.Body.Close()

	var sessionCookie *http.Cookie
	for _, cookie := range r.Cookies() {
		if cookie.Name == SessionCookieName {
			sessionCookie = cookie
		}
	}
	assert.Assert(t, sessionCookie != nil)

	body := c.getPage()
	assert.Assert(t, is.Contains(body, `action="/submit"`))
	assert.Assert(t, !strings.Contains(body, "http-equiv"))
}

func TestSubmitPostThenReadSection(t *testing.T) {
	c := newTestClient(t, postStore.NewMemoryStore())

	code, body := c.post("/submit", url.Values{"title": {"Hello"}, "content": {"World"}})
	assert.Equal(t, code, http.StatusOK)
	assert.Assert(t, is.Contains(body, `<div class="success-message">posted</div>`))
	assert.Assert(t, is.Contains(body, `http-equiv="refresh"`))

	deadline := time.Now().Add(2 * time.Second)
	for {
		body = c.getPage()
		if strings.Contains(body, `class="post-title">Hello<`) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("post was not shown in Read section. Page: %s", body)
		}
		time.Sleep(10 * time.Millisecond)
	}
	assert.Assert(t, is.Contains(body, `class="post-content">World<`))
	assert.Assert(t, !strings.Contains(body, `<div class="success-message">`))
}

func TestSubmitInvalidPostKeepsDraft(t *testing.T) {
	c := newTestClient(t, postStore.NewMemoryStore())

	_, body := c.post("/submit", url.Values{"title": {"Hello"}, "content": {"   "}})

	assert.Assert(t, is.Contains(body, `<div class="error-message">both fields required</div>`))
	assert.Assert(t, is.Contains(body, `value="Hello"`))
}

func TestSubmitFailureShowsError(t *testing.T) {
	c := newTestClient(t, failingStore{})

	_, body := c.post("/submit", url.Values{"title": {"Hello"}, "content": {"World"}})

	assert.Assert(t, is.Contains(body, `<div class="error-message">post failed</div>`))
	assert.Assert(t, is.Contains(body, `value="Hello"`))
	assert.Assert(t, is.Contains(body, `World</textarea>`))
}

func TestReadSectionShowsPostsNewestFirst(t *testing.T) {
	store := postStore.NewMemoryStore()
	assert.NilError(t, store.Insert(context.Background(), models.NewPost{Title: "Older", Content: "first"}))
	time.Sleep(time.Millisecond)
	assert.NilError(t, store.Insert(context.Background(), models.NewPost{Title: "Newer", Content: "second"}))
	c := newTestClient(t, store)

	_, body := c.post("/section", url.Values{"section": {"read"}})

	newer := strings.Index(body, "Newer")
	older := strings.Index(body, "Older")
	assert.Assert(t, newer >= 0 && older >= 0)
	assert.Assert(t, newer < older)
}

func TestReadSectionEmptyState(t *testing.T) {
	c := newTestClient(t, postStore.NewMemoryStore())

	_, body := c.post("/section", url.Values{"section": {"read"}})

	assert.Assert(t, is.Contains(body, EmptyMessage))
	assert.Assert(t, !strings.Contains(body, `<div class="error-message">`))
}

func TestReadSectionLoadFailure(t *testing.T) {
	c := newTestClient(t, failingStore{})

	_, body := c.post("/section", url.Values{"section": {"read"}})

	assert.Assert(t, is.Contains(body, `<div class="error-message">load failed</div>`))
	assert.Assert(t, !strings.Contains(body, EmptyMessage))
	assert.Assert(t, is.Contains(body, `value="read" class="active"`))
}

func TestClearDraft(t *testing.T) {
	c := newTestClient(t, postStore.NewMemoryStore())
	_, body := c.post("/submit", url.Values{"title": {"Hello"}, "content": {""}})
	assert.Assert(t, is.Contains(body, `<div class="error-message">both fields required</div>`))

	_, body = c.post("/draft/clear", url.Values{})

	assert.Assert(t, !strings.Contains(body, `<div class="error-message">`))
	assert.Assert(t, !strings.Contains(body, `value="Hello"`))
}

func TestUnknownSection(t *testing.T) {
	c := newTestClient(t, postStore.NewMemoryStore())

	code, _ := c.post("/section", url.Values{"section": {"admin"}})

	assert.Equal(t, code, http.StatusBadRequest)
}
