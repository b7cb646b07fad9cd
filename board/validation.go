package board

import (
	"strings"
	"unicode/utf8"
)

// draft limits, counted in characters
const (
	MaxTitleLen   = 100
	MaxContentLen = 5000
)

// validation messages
const (
	ReasonBothFieldsRequired = "both fields required"
	ReasonTitleTooLong       = "title too long"
	ReasonContentTooLong     = "content too long"
)

// ValidationError - draft was rejected before reaching the store
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "board: invalid draft: " + e.Reason
}

// ValidateDraft - checks draft in order: both fields present, title length, content length.
// Returns the first failure or nil
func ValidateDraft(draft Draft) *ValidationError {
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Content) == "" {
		return &ValidationError{Reason: ReasonBothFieldsRequired}
	}
	if utf8.RuneCountInString(draft.Title) > MaxTitleLen {
		return &ValidationError{Reason: ReasonTitleTooLong}
	}
	if utf8.RuneCountInString(draft.Content) > MaxContentLen {
		return &ValidationError{Reason: ReasonContentTooLong}
	}
	return nil
}
