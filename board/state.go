package board

import "github.com/blinky-z/Board/models"

// Section - one of the two mutually exclusive modes of the page
type Section int

const (
	SectionWrite Section = iota
	SectionRead
)

func (s Section) String() string {
	switch s {
	case SectionWrite:
		return "write"
	case SectionRead:
		return "read"
	default:
		return "unknown"
	}
}

// ParseSection - parses "write" or "read"
func ParseSection(value string) (Section, bool) {
	switch value {
	case "write":
		return SectionWrite, true
	case "read":
		return SectionRead, true
	default:
		return SectionWrite, false
	}
}

// StatusKind - kind of the board status
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusLoading
	StatusError
	StatusSuccess
)

func (k StatusKind) String() string {
	switch k {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	case StatusSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Status - board status. Message is set for StatusError and StatusSuccess only
type Status struct {
	Kind    StatusKind
	Message string
}

// Field - draft field
type Field int

const (
	FieldTitle Field = iota
	FieldContent
)

// Draft - unsaved title and content
type Draft struct {
	Title   string
	Content string
}

// ViewState - everything needed to render the page
type ViewState struct {
	Section Section
	Draft   Draft
	// Posts - last loaded posts, newest first
	Posts  []models.Post
	Status Status
}

func (s ViewState) clone() ViewState {
	posts := make([]models.Post, len(s.Posts))
	copy(posts, s.Posts)
	s.Posts = posts
	return s
}
