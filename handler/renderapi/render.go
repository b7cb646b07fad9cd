package renderapi

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"math"
	"net/http"
	"time"

	"github.com/blinky-z/Board/board"
)

//go:embed layouts/*.html
var layouts embed.FS

const (
	timeFormat = "January 2 2006, 15:04:05"
	// SessionCookieName - cookie that keeps session ID
	SessionCookieName = "board_session"
	// EmptyMessage - shown in Read section when there are no posts
	EmptyMessage = "No posts yet. Write the first one."
)

// Handler - renders the page and applies form actions to the board of the caller's session
type Handler struct {
	sessions    *sessions
	page        *template.Template
	siteTitle   string
	switchDelay time.Duration
	logInfo     *log.Logger
	logError    *log.Logger
}

// NewRenderAPIHandler - creates handler. Every new browser session gets its own board over the given store
func NewRenderAPIHandler(store board.PostStore, siteTitle string, switchDelay, sessionTTL time.Duration,
	logInfo, logError *log.Logger) (*Handler, error) {
	page, err := template.New("").Funcs(renderFuncs).ParseFS(layouts, "layouts/*.html")
	if err != nil {
		return nil, err
	}

	newBoard := func() *board.PostBoard {
		return board.New(store,
			board.WithSwitchDelay(switchDelay),
			board.WithLoggers(logInfo, logError))
	}

	return &Handler{
		sessions:    newSessions(sessionTTL, newBoard),
		page:        page,
		siteTitle:   siteTitle,
		switchDelay: switchDelay,
		logInfo:     logInfo,
		logError:    logError,
	}, nil
}

// pageData - represents the page
type pageData struct {
	SiteTitle      string
	State          board.ViewState
	RefreshSeconds int
	MaxTitleLen    int
	EmptyMessage   string
}

func (p pageData) IsWrite() bool {
	return p.State.Section == board.SectionWrite
}

func (p pageData) IsLoading() bool {
	return p.State.Status.Kind == board.StatusLoading
}

func (p pageData) IsError() bool {
	return p.State.Status.Kind == board.StatusError
}

func (p pageData) IsSuccess() bool {
	return p.State.Status.Kind == board.StatusSuccess
}

var renderFuncs = template.FuncMap{
	"convertTime": convertTime,
}

func convertTime(t time.Time) string {
	return t.Local().Format(timeFormat)
}

// refreshSeconds - while a call is running or the success message waits for the switch to Read,
// the browser reloads the page after the switch delay
func (renderApi *Handler) refreshSeconds(state board.ViewState) int {
	switch state.Status.Kind {
	case board.StatusLoading, board.StatusSuccess:
		return int(math.Max(1, math.Ceil(renderApi.switchDelay.Seconds())))
	default:
		return 0
	}
}

// sessionBoard - returns the board of the caller's session, starting a session if there is none
func (renderApi *Handler) sessionBoard(w http.ResponseWriter, r *http.Request) *board.PostBoard {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if b, ok := renderApi.sessions.get(cookie.Value); ok {
			return b
		}
	}

	id, b := renderApi.sessions.create()
	renderApi.logInfo.Printf("Started new session %s", id)
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return b
}

func redirectToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RenderIndexPageHandler - handler for server-side rendering of the page
func (renderApi *Handler) RenderIndexPageHandler() http.Handler {
	logError := renderApi.logError
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := renderApi.sessionBoard(w, r).State()

		data := pageData{
			SiteTitle:      renderApi.siteTitle,
			State:          state,
			RefreshSeconds: renderApi.refreshSeconds(state),
			MaxTitleLen:    board.MaxTitleLen,
			EmptyMessage:   EmptyMessage,
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderApi.page.ExecuteTemplate(w, "page", data); err != nil {
			logError.Printf("Error executing page template: %s", err)
		}
	})
}

// SwitchSectionHandler - handles section buttons. Switching to Read waits for posts to load
func (renderApi *Handler) SwitchSectionHandler() http.Handler {
	logInfo := renderApi.logInfo
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := renderApi.sessionBoard(w, r)

		section, ok := board.ParseSection(r.PostFormValue("section"))
		if !ok {
			logInfo.Printf("Can't switch section: unknown section %q", r.PostFormValue("section"))
			http.Error(w, "unknown section", http.StatusBadRequest)
			return
		}

		renderApi.logBoardError(b.SwitchSection(r.Context(), section))
		redirectToPage(w, r)
	})
}

// ClearDraftHandler - handles clear button
func (renderApi *Handler) ClearDraftHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		renderApi.sessionBoard(w, r).ClearDraft()
		redirectToPage(w, r)
	})
}

// SubmitPostHandler - handles post button. The draft is taken from the form as typed
func (renderApi *Handler) SubmitPostHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := renderApi.sessionBoard(w, r)

		b.UpdateDraft(board.FieldTitle, r.PostFormValue("title"))
		b.UpdateDraft(board.FieldContent, r.PostFormValue("content"))

		renderApi.logBoardError(b.SubmitPost(r.Context()))
		redirectToPage(w, r)
	})
}

// logBoardError - board already turned err into a status message. Only unexpected errors are logged here
func (renderApi *Handler) logBoardError(err error) {
	var validationError *board.ValidationError
	switch {
	case err == nil,
		errors.As(err, &validationError),
		errors.Is(err, board.ErrSuperseded),
		errors.Is(err, board.ErrStoreRead),
		errors.Is(err, board.ErrStoreWrite):
		return
	case errors.Is(err, context.Canceled):
		renderApi.logInfo.Print("Request cancelled by client")
	default:
		renderApi.logError.Printf("Unexpected board error: %s", err)
	}
}

// Close - closes every session board
func (renderApi *Handler) Close() {
	renderApi.sessions.closeAll()
}
