package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blinky-z/Board/board"
	"github.com/blinky-z/Board/models"
	"github.com/blinky-z/Board/service/postStore"
	tea "github.com/charmbracelet/bubbletea"
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

func newTestModel(t *testing.T, store board.PostStore) (model, chan struct{}) {
	t.Helper()
	changed := make(chan struct{}, 64)
	b := board.New(store,
		board.WithSwitchDelay(10*time.Millisecond),
		board.WithObserver(func(board.ViewState) {
			select {
			case changed <- struct{}{}:
			default:
			}
		}))
	t.Cleanup(b.Close)
	return newModel(context.Background(), b, "Writing"), changed
}

func press(m model, key tea.KeyMsg) (model, tea.Cmd) {
	next, cmd := m.Update(key)
	return next.(model), cmd
}

func typeText(m model, text string) model {
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// run - executes board command and applies its result
func run(t *testing.T, m model, cmd tea.Cmd) model {
	t.Helper()
	assert.Assert(t, cmd != nil)
	next, _ := m.Update(cmd())
	return next.(model)
}

// waitForSection - applies board changes until section is reached and nothing is loading
func waitForSection(t *testing.T, m model, changed chan struct{}, section board.Section) model {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		next, _ := m.Update(refreshMsg{})
		m = next.(model)
		if m.state.Section == section && m.state.Status.Kind != board.StatusLoading {
			return m
		}
		select {
		case <-changed:
		case <-deadline:
			t.Fatalf("section %s was not reached, state: %+v", section, m.state)
		}
	}
}

func TestSubmitThenRead(t *testing.T) {
	store := postStore.NewMemoryStore()
	m, changed := newTestModel(t, store)

	m = typeText(m, "Hello")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "World")
	assert.Equal(t, m.board.State().Draft, board.Draft{Title: "Hello", Content: "World"})

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = run(t, m, cmd)
	assert.Equal(t, m.state.Status.Kind, board.StatusSuccess)
	assert.Assert(t, is.Contains(m.View(), board.MessagePosted))
	assert.Equal(t, m.title.Value(), "")
	assert.Equal(t, m.content.Value(), "")

	m = waitForSection(t, m, changed, board.SectionRead)
	view := m.View()
	assert.Assert(t, is.Contains(view, "Hello"))
	assert.Assert(t, is.Contains(view, "World"))

	posts, err := store.ListAll(context.Background())
	assert.NilError(t, err)
	assert.Equal(t, len(posts), 1)
}

func TestSubmitInvalidDraft(t *testing.T) {
	m, _ := newTestModel(t, postStore.NewMemoryStore())
	m = typeText(m, "Hello")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = run(t, m, cmd)

	assert.Assert(t, is.Contains(m.View(), board.ReasonBothFieldsRequired))
	assert.Equal(t, m.title.Value(), "Hello")
	assert.Equal(t, m.state.Section, board.SectionWrite)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	m, _ := newTestModel(t, failingStore{})
	m = typeText(m, "Hello")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(m, "World")

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m = run(t, m, cmd)

	assert.Assert(t, is.Contains(m.View(), board.MessagePostFailed))
	assert.Equal(t, m.title.Value(), "Hello")
	assert.Equal(t, m.content.Value(), "World")
}

func TestClearDraft(t *testing.T) {
	m, _ := newTestModel(t, postStore.NewMemoryStore())
	m = typeText(m, "Hello")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyCtrlX})

	assert.Equal(t, m.title.Value(), "")
	assert.Equal(t, m.board.State().Draft, board.Draft{})
}

func TestTitleInputLimit(t *testing.T) {
	m, _ := newTestModel(t, postStore.NewMemoryStore())

	m = typeText(m, strings.Repeat("t", board.MaxTitleLen+10))

	assert.Equal(t, len(m.board.State().Draft.Title), board.MaxTitleLen)
}

func TestReadEmptyAndFailure(t *testing.T) {
	m, _ := newTestModel(t, postStore.NewMemoryStore())
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = run(t, m, cmd)
	assert.Assert(t, is.Contains(m.View(), emptyMessage))

	m, _ = newTestModel(t, failingStore{})
	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = run(t, m, cmd)
	view := m.View()
	assert.Assert(t, is.Contains(view, board.MessageLoadFailed))
	assert.Assert(t, !strings.Contains(view, emptyMessage))
}

func TestTypingIgnoredInReadSection(t *testing.T) {
	m, _ := newTestModel(t, postStore.NewMemoryStore())
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyCtrlR})
	m = run(t, m, cmd)

	m = typeText(m, "Hello")
	assert.Equal(t, m.board.State().Draft, board.Draft{})

	m, cmd = press(m, tea.KeyMsg{Type: tea.KeyCtrlW})
	m = run(t, m, cmd)
	assert.Equal(t, m.state.Section, board.SectionWrite)
}
