// Package tui is a terminal front-end of the board built on bubbletea
package tui

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blinky-z/Board/board"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	timeFormat   = "January 2 2006, 15:04:05"
	emptyMessage = "No posts yet. Write the first one."
	contentWidth = 72
)

// refreshMsg - board state changed. The model reads the latest state, so out of order delivery is harmless
type refreshMsg struct{}

type focus int

const (
	focusTitle focus = iota
	focusContent
)

const (
	keyHelpWrite  = "ctrl+s post • ctrl+x clear • tab switch field • ctrl+r read • ctrl+c quit"
	keyHelpRead   = "ctrl+w write • ctrl+r reload • ctrl+c quit"
	loadingPosts  = "Loading posts..."
	submittingMsg = "Posting..."
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	tabStyle      = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("252")).Background(lipgloss.Color("235"))
	activeTab     = tabStyle.Copy().Foreground(lipgloss.Color("235")).Background(lipgloss.Color("62"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	faintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Faint(true)
	postTitle     = lipgloss.NewStyle().Bold(true)
	postBox       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1)
)

type model struct {
	ctx       context.Context
	board     *board.PostBoard
	siteTitle string

	state   board.ViewState
	title   textinput.Model
	content textarea.Model
	focus   focus
	width   int
}

func newModel(ctx context.Context, b *board.PostBoard, siteTitle string) model {
	m := model{
		ctx:       ctx,
		board:     b,
		siteTitle: siteTitle,
		state:     b.State(),
		focus:     focusTitle,
		width:     contentWidth,
	}

	m.title = textinput.New()
	m.title.Placeholder = "Title"
	m.title.CharLimit = board.MaxTitleLen
	m.title.Width = contentWidth
	m.title.Focus()

	m.content = textarea.New()
	m.content.Placeholder = "Write…"
	// content length is checked on submit so the reader sees "content too long"
	m.content.CharLimit = 0
	m.content.SetWidth(contentWidth)
	m.content.SetHeight(10)
	m.content.ShowLineNumbers = false

	return m
}

func (m model) Init() tea.Cmd { return textinput.Blink }

// do - runs a board operation outside of Update, store calls may block
func (m model) do(op func(ctx context.Context, b *board.PostBoard)) tea.Cmd {
	ctx, b := m.ctx, m.board
	return func() tea.Msg {
		op(ctx, b)
		return refreshMsg{}
	}
}

func switchTo(section board.Section) func(ctx context.Context, b *board.PostBoard) {
	return func(ctx context.Context, b *board.PostBoard) {
		_ = b.SwitchSection(ctx, section)
	}
}

func submit(ctx context.Context, b *board.PostBoard) {
	_ = b.SubmitPost(ctx)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = min(msg.Width, contentWidth)
		m.title.Width = m.width
		m.content.SetWidth(m.width)
		return m, nil

	case refreshMsg:
		m.state = m.board.State()
		m.syncInputs()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.board.Close()
			return m, tea.Quit
		case "ctrl+w":
			return m, m.do(switchTo(board.SectionWrite))
		case "ctrl+r":
			return m, m.do(switchTo(board.SectionRead))
		}
		if m.state.Section != board.SectionWrite {
			return m, nil
		}
		switch msg.String() {
		case "tab":
			return m, m.toggleFocus()
		case "ctrl+s":
			return m, m.do(submit)
		case "ctrl+x":
			m.board.ClearDraft()
			m.state = m.board.State()
			m.syncInputs()
			return m, nil
		}
		return m.updateInputs(msg)
	}

	return m.updateInputs(msg)
}

// syncInputs - board clears the draft after a successful submit. The inputs follow the board draft
func (m *model) syncInputs() {
	draft := m.state.Draft
	if m.title.Value() != draft.Title {
		m.title.SetValue(draft.Title)
	}
	if m.content.Value() != draft.Content {
		m.content.SetValue(draft.Content)
	}
}

func (m *model) toggleFocus() tea.Cmd {
	if m.focus == focusTitle {
		m.focus = focusContent
		m.title.Blur()
		return m.content.Focus()
	}
	m.focus = focusTitle
	m.content.Blur()
	return m.title.Focus()
}

func (m model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var titleCmd, contentCmd tea.Cmd
	m.title, titleCmd = m.title.Update(msg)
	m.content, contentCmd = m.content.Update(msg)

	m.board.UpdateDraft(board.FieldTitle, m.title.Value())
	m.board.UpdateDraft(board.FieldContent, m.content.Value())
	return m, tea.Batch(titleCmd, contentCmd)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(m.siteTitle))
	b.WriteString("\n\n")
	b.WriteString(m.tabs())
	b.WriteString("\n\n")

	if m.state.Section == board.SectionWrite {
		b.WriteString(m.writeView())
		b.WriteString("\n")
		b.WriteString(faintStyle.Render(keyHelpWrite))
	} else {
		b.WriteString(m.readView())
		b.WriteString("\n")
		b.WriteString(faintStyle.Render(keyHelpRead))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) tabs() string {
	write, read := tabStyle, tabStyle
	if m.state.Section == board.SectionWrite {
		write = activeTab
	} else {
		read = activeTab
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, write.Render("Write"), " ", read.Render("Read"))
}

func (m model) writeView() string {
	var b strings.Builder
	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(m.title.Value()), board.MaxTitleLen)))
	b.WriteString("\n\n")
	b.WriteString(m.content.View())
	b.WriteString("\n")
	b.WriteString(faintStyle.Render(fmt.Sprintf("%d/%d", utf8.RuneCountInString(m.content.Value()), board.MaxContentLen)))
	b.WriteString("\n\n")

	switch m.state.Status.Kind {
	case board.StatusLoading:
		b.WriteString(faintStyle.Render(submittingMsg))
	case board.StatusError:
		b.WriteString(errorStyle.Render(m.state.Status.Message))
	case board.StatusSuccess:
		b.WriteString(successStyle.Render(m.state.Status.Message))
	}
	b.WriteString("\n")
	return b.String()
}

func (m model) readView() string {
	var b strings.Builder
	if m.state.Status.Kind == board.StatusError {
		b.WriteString(errorStyle.Render(m.state.Status.Message))
		b.WriteString("\n")
	}

	switch {
	case m.state.Status.Kind == board.StatusLoading:
		b.WriteString(faintStyle.Render(loadingPosts))
		b.WriteString("\n")
	case len(m.state.Posts) == 0 && m.state.Status.Kind != board.StatusError:
		b.WriteString(emptyMessage)
		b.WriteString("\n")
	default:
		box := postBox.Copy().Width(m.width)
		for _, post := range m.state.Posts {
			body := postTitle.Render(post.Title) + "\n" +
				faintStyle.Render(post.CreatedAt.Local().Format(timeFormat)) + "\n\n" +
				post.Content
			b.WriteString(box.Render(body))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Run - runs terminal UI over store until the reader quits or ctx is done
func Run(ctx context.Context, store board.PostStore, siteTitle string, switchDelay time.Duration,
	logInfo, logError *log.Logger) error {
	var program *tea.Program
	b := board.New(store,
		board.WithSwitchDelay(switchDelay),
		board.WithLoggers(logInfo, logError),
		// the observer may run inside Update, where Send would block
		board.WithObserver(func(board.ViewState) {
			go program.Send(refreshMsg{})
		}))
	defer b.Close()

	program = tea.NewProgram(newModel(ctx, b, siteTitle), tea.WithAltScreen())

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-stop:
		}
	}()

	logInfo.Print("Starting terminal UI")
	_, err := program.Run()
	return err
}
