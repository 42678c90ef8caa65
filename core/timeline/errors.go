package timeline

import "github.com/pkg/errors"

var (
	// errors
	ErrNotFound             = errors.New("entry not found")
	ErrInvalidFilter        = errors.New("this status filter is not supported here; pick a different filter")
	ErrReminderNotSupported = errors.New("reminders are only available to students for live sessions")
)

// FetchError is a network/backend failure while retrieving entries.
// Already-displayed entries are kept when it occurs.
type FetchError struct {
	Op      string // "sessions" | "exams"
	Message string
}

func (e *FetchError) Error() string {
	return "fetching " + e.Op + ": " + e.Message
}

// ReminderError scopes a reminder-toggle failure to one entry's action row.
type ReminderError struct {
	EntryID string
	Message string
}

func (e *ReminderError) Error() string {
	return "toggling reminder for " + e.EntryID + ": " + e.Message
}

// ExportError scopes a calendar-export failure to one entry's action row.
type ExportError struct {
	EntryID string
	Message string
}

func (e *ExportError) Error() string {
	return "exporting " + e.EntryID + ": " + e.Message
}
