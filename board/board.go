// Package board implements PostBoard, the controller behind the writing page.
//
// A PostBoard owns the view state of one reader: the active section (Write or Read), the draft being
// edited, the last loaded posts and a status (idle, loading, error or success). It validates drafts
// before they reach the store and maps every store failure to a fixed message.
//
// Each remote call is tagged with a sequence number. Only the result of the latest call is applied,
// so a slow response never overwrites a newer one. Loads started by switching to Read are cancelled
// when the reader leaves Read.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/blinky-z/Board/models"
)

// PostStore - store operations used by the board
type PostStore interface {
	Insert(ctx context.Context, post models.NewPost) error
	ListAll(ctx context.Context) ([]models.Post, error)
}

// DefaultSwitchDelay - how long the success message stays before the board switches to Read
const DefaultSwitchDelay = time.Second

// user facing status messages
const (
	MessageLoadFailed = "load failed"
	MessagePostFailed = "post failed"
	MessagePosted     = "posted"
)

var (
	// ErrStoreRead - posts could not be listed
	ErrStoreRead = errors.New("board: store read failed")
	// ErrStoreWrite - post could not be inserted
	ErrStoreWrite = errors.New("board: store write failed")
	// ErrSuperseded - a newer call was issued, or the reader left Read, before this call returned.
	// Its result was discarded
	ErrSuperseded = errors.New("board: result superseded")
)

// Option - configures PostBoard
type Option func(b *PostBoard)

// WithSwitchDelay - sets the delay between a successful submit and the switch to Read
func WithSwitchDelay(delay time.Duration) Option {
	return func(b *PostBoard) {
		b.switchDelay = delay
	}
}

// WithLoggers - sets info and error loggers
func WithLoggers(logInfo, logError *log.Logger) Option {
	return func(b *PostBoard) {
		b.logInfo = logInfo
		b.logError = logError
	}
}

// WithObserver - fn is called with a state snapshot after every section, status or posts change.
// fn runs without the board lock held and may call State but not block for long
func WithObserver(fn func(ViewState)) Option {
	return func(b *PostBoard) {
		b.observer = fn
	}
}

// PostBoard - view controller of the writing page. Safe for concurrent use
type PostBoard struct {
	store       PostStore
	switchDelay time.Duration
	logInfo     *log.Logger
	logError    *log.Logger
	observer    func(ViewState)

	mu    sync.Mutex
	state ViewState
	// seq - number of the latest issued store call
	seq uint64
	// loadSeq - number of the load tied to the Read section, zero if none is running
	loadSeq    uint64
	cancelLoad context.CancelFunc
	// switchTimer - pending switch to Read after a successful submit
	switchTimer *time.Timer
	closed      bool
}

// New - creates board in its initial state: Write section, empty draft, no posts, idle
func New(store PostStore, opts ...Option) *PostBoard {
	discard := log.New(io.Discard, "", 0)
	b := &PostBoard{
		store:       store,
		switchDelay: DefaultSwitchDelay,
		logInfo:     discard,
		logError:    discard,
		state: ViewState{
			Section: SectionWrite,
			Posts:   []models.Post{},
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State - returns a snapshot of the view state
func (b *PostBoard) State() ViewState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state.clone()
}

// notify - must be called without the lock held
func (b *PostBoard) notify() {
	if b.observer == nil {
		return
	}
	b.observer(b.State())
}

// SwitchSection - makes target the active section. Switching to Read loads posts and waits for the load.
// Switching to Write cancels a load that is still running
func (b *PostBoard) SwitchSection(ctx context.Context, target Section) error {
	b.mu.Lock()
	b.state.Section = target
	if target == SectionWrite {
		b.stopLoadLocked()
		b.mu.Unlock()
		b.notify()
		return nil
	}
	b.mu.Unlock()

	return b.LoadPosts(ctx)
}

// stopLoadLocked - detaches the running load from the Read section
func (b *PostBoard) stopLoadLocked() {
	if b.cancelLoad != nil {
		b.cancelLoad()
		b.cancelLoad = nil
	}
	if b.loadSeq != 0 && b.loadSeq == b.seq && b.state.Status.Kind == StatusLoading {
		b.state.Status = Status{Kind: StatusIdle}
	}
	b.loadSeq = 0
}

// UpdateDraft - sets draft field. No validation happens until submit
func (b *PostBoard) UpdateDraft(field Field, value string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch field {
	case FieldTitle:
		b.state.Draft.Title = value
	case FieldContent:
		b.state.Draft.Content = value
	}
}

// ClearDraft - empties draft and resets status
func (b *PostBoard) ClearDraft() {
	b.mu.Lock()
	b.state.Draft = Draft{}
	b.state.Status = Status{Kind: StatusIdle}
	b.mu.Unlock()
	b.notify()
}

// LoadPosts - replaces posts with the store content, newest first.
// On failure posts are left untouched and status holds MessageLoadFailed
func (b *PostBoard) LoadPosts(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrSuperseded
	}
	b.seq++
	seq := b.seq
	if b.cancelLoad != nil {
		b.cancelLoad()
	}
	ctx, cancel := context.WithCancel(ctx)
	b.cancelLoad = cancel
	b.loadSeq = seq
	b.state.Status = Status{Kind: StatusLoading}
	b.mu.Unlock()
	b.notify()

	defer cancel()

	b.logInfo.Printf("Loading posts. Request: %d", seq)
	posts, err := b.store.ListAll(ctx)

	b.mu.Lock()
	if seq != b.seq || seq != b.loadSeq {
		latest := b.seq
		b.mu.Unlock()
		b.logInfo.Printf("Discarding posts load result. Request: %d, latest: %d", seq, latest)
		return ErrSuperseded
	}
	b.loadSeq = 0
	b.cancelLoad = nil
	if err != nil {
		b.state.Status = Status{Kind: StatusError, Message: MessageLoadFailed}
		b.mu.Unlock()
		b.logError.Printf("Error loading posts: %s", err)
		b.notify()
		return fmt.Errorf("%w: %v", ErrStoreRead, err)
	}
	b.state.Posts = sortNewestFirst(posts)
	b.state.Status = Status{Kind: StatusIdle}
	b.mu.Unlock()

	b.logInfo.Printf("Posts loaded. Count: %d", len(posts))
	b.notify()
	return nil
}

// SubmitPost - validates draft and inserts it into the store.
// Invalid drafts never reach the store and return *ValidationError. After a successful insert the draft
// is cleared, edits made while the insert was running included, status holds MessagePosted and the board switches to Read once the switch delay passes
func (b *PostBoard) SubmitPost(ctx context.Context) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrSuperseded
	}
	draft := b.state.Draft
	if err := ValidateDraft(draft); err != nil {
		b.state.Status = Status{Kind: StatusError, Message: err.Reason}
		b.mu.Unlock()
		b.logInfo.Printf("Can't submit post: invalid draft. Error: %s", err.Reason)
		b.notify()
		return err
	}
	b.seq++
	seq := b.seq
	b.state.Status = Status{Kind: StatusLoading}
	b.mu.Unlock()
	b.notify()

	b.logInfo.Printf("Submitting post. Request: %d", seq)
	err := b.store.Insert(ctx, models.NewPost{Title: draft.Title, Content: draft.Content})

	b.mu.Lock()
	if seq != b.seq {
		latest := b.seq
		if err == nil && b.state.Draft == draft {
			// the post is stored even though its result is discarded. Keeping the draft would invite a duplicate
			b.state.Draft = Draft{}
		}
		b.mu.Unlock()
		b.logInfo.Printf("Discarding submit result. Request: %d, latest: %d", seq, latest)
		b.notify()
		return ErrSuperseded
	}
	if err != nil {
		b.state.Status = Status{Kind: StatusError, Message: MessagePostFailed}
		b.mu.Unlock()
		b.logError.Printf("Error saving post: %s", err)
		b.notify()
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}
	b.state.Draft = Draft{}
	b.state.Status = Status{Kind: StatusSuccess, Message: MessagePosted}
	if b.switchTimer != nil {
		b.switchTimer.Stop()
	}
	b.switchTimer = time.AfterFunc(b.switchDelay, b.switchToReadAfterSubmit)
	b.mu.Unlock()

	b.logInfo.Print("Post saved")
	b.notify()
	return nil
}

func (b *PostBoard) switchToReadAfterSubmit() {
	b.mu.Lock()
	closed := b.closed
	b.switchTimer = nil
	b.mu.Unlock()
	if closed {
		return
	}

	err := b.SwitchSection(context.Background(), SectionRead)
	if err != nil && !errors.Is(err, ErrSuperseded) {
		b.logError.Printf("Error loading posts after submit: %s", err)
	}
}

// Close - stops pending switch to Read and cancels running load. Closed board ignores further store calls
func (b *PostBoard) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.switchTimer != nil {
		b.switchTimer.Stop()
		b.switchTimer = nil
	}
	if b.cancelLoad != nil {
		b.cancelLoad()
		b.cancelLoad = nil
	}
}

// sortNewestFirst - stores already order posts; sorting again keeps the order guarantee independent of the store
func sortNewestFirst(posts []models.Post) []models.Post {
	sorted := make([]models.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	return sorted
}
