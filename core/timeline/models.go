package timeline

import (
	"strings"
	"time"

	"github.com/prajyots60/myskill-agenda/core"
)

// EntryKind discriminates the two schedulable item types merged into the agenda.
type EntryKind string

const (
	KindLiveSession EntryKind = "live_session"
	KindExam        EntryKind = "exam"
)

// SessionStatus applies to live-session entries only.
type SessionStatus string

const (
	SessionScheduled SessionStatus = "SCHEDULED"
	SessionLive      SessionStatus = "LIVE"
	SessionEnded     SessionStatus = "ENDED"
)

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionScheduled, SessionLive, SessionEnded:
		return true
	}
	return false
}

// ExamStatus applies to exam entries only.
type ExamStatus string

const (
	ExamDraft     ExamStatus = "DRAFT"
	ExamPublished ExamStatus = "PUBLISHED"
	ExamClosed    ExamStatus = "CLOSED"
)

func (s ExamStatus) Valid() bool {
	switch s {
	case ExamDraft, ExamPublished, ExamClosed:
		return true
	}
	return false
}

// Role of the viewer the agenda is assembled for.
type Role string

const (
	RoleStudent Role = "student"
	RoleCreator Role = "creator"
)

func (r Role) Valid() bool { return r == RoleStudent || r == RoleCreator }

// Viewer is the authenticated audience the agenda is assembled for.
type Viewer struct {
	ID    string
	Email string
	Role  Role
}

// AccessWindow is the open/close range during which an exam is actionable.
// A zero ClosesAt means the exam never closes.
type AccessWindow struct {
	OpensAt  time.Time `json:"opens_at"`
	ClosesAt time.Time `json:"closes_at,omitempty"`
}

// Open reports whether the window is open at `now`; the opening instant itself counts.
func (w AccessWindow) Open(now time.Time) bool {
	return !now.Before(w.OpensAt) && !w.Closed(now)
}

// Closed reports whether the window has already ended at `now`.
func (w AccessWindow) Closed(now time.Time) bool {
	return !w.ClosesAt.IsZero() && !now.Before(w.ClosesAt)
}

// Entry is one displayable agenda item. It is a tagged variant: SessionStatus
// is only ever set on live sessions, ExamStatus/AccessWindow/FormID only on
// exams, and the two status types can never be compared to each other.
// ScheduledAt is immutable once created; only the status fields and
// IsReminded change afterwards.
type Entry struct {
	ID              string    `json:"id"`
	Kind            EntryKind `json:"kind"`
	Title           string    `json:"title"`
	ContextName     string    `json:"context_name"`
	ScheduledAt     time.Time `json:"scheduled_at"` // UTC
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	OwnerName       string    `json:"owner_name,omitempty"`
	OwnerAvatarURL  string    `json:"owner_avatar_url,omitempty"`

	// live sessions only
	SessionStatus SessionStatus `json:"session_status,omitempty"`
	IsReminded    bool          `json:"is_reminded,omitempty"` // student view only

	// exams only
	ExamStatus   ExamStatus    `json:"exam_status,omitempty"`
	AccessWindow *AccessWindow `json:"access_window,omitempty"`
	FormID       string        `json:"form_id,omitempty"`
}

func (e Entry) IsLiveSession() bool { return e.Kind == KindLiveSession }

func (e Entry) IsExam() bool { return e.Kind == KindExam }

// Live reports whether the entry is a session currently on air.
func (e Entry) Live() bool {
	return e.Kind == KindLiveSession && e.SessionStatus == SessionLive
}

// Actionable reports whether an exam entry may be launched at `now`.
// Non-exam entries and unpublished exams are never actionable.
func (e Entry) Actionable(now time.Time) bool {
	if e.Kind != KindExam || e.ExamStatus != ExamPublished {
		return false
	}
	if e.AccessWindow == nil {
		return true
	}
	return e.AccessWindow.Open(now)
}

// Matches does a case-insensitive substring match against the entry's title,
// context name and owner name.
func (e Entry) Matches(search string) bool {
	search = strings.ToLower(core.CleanString(search))
	if search == "" {
		return true
	}
	for _, s := range []string{e.Title, e.ContextName, e.OwnerName} {
		if strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

// ViewMode selects the agenda presentation.
type ViewMode string

const (
	ViewCalendar ViewMode = "calendar"
	ViewList     ViewMode = "list"
)

// StatusFilter is the user-facing status selector. Every value except All is
// scoped to exactly one entry kind.
type StatusFilter string

const (
	StatusAll StatusFilter = "ALL"

	// live-session statuses
	StatusScheduled StatusFilter = "SCHEDULED"
	StatusLive      StatusFilter = "LIVE"
	StatusEnded     StatusFilter = "ENDED"

	// exam statuses
	StatusDraft     StatusFilter = "DRAFT"
	StatusPublished StatusFilter = "PUBLISHED"
	StatusClosed    StatusFilter = "CLOSED"
)

// Scope returns the entry kind the filter value is restricted to.
// ok is false for All and for unknown values.
func (f StatusFilter) Scope() (kind EntryKind, ok bool) {
	switch f {
	case StatusScheduled, StatusLive, StatusEnded:
		return KindLiveSession, true
	case StatusDraft, StatusPublished, StatusClosed:
		return KindExam, true
	}
	return "", false
}

func (f StatusFilter) Valid() bool {
	if f == StatusAll {
		return true
	}
	_, ok := f.Scope()
	return ok
}

// Filter holds the user's current agenda selection. It is hydrated from URL
// query parameters, mutated by interaction and written back to the URL;
// it is never persisted server-side.
type Filter struct {
	Status       StatusFilter
	Search       string
	View         ViewMode
	Page         int
	SelectedDate time.Time // date-only; zero means no selection
}

func DefaultFilter() Filter {
	return Filter{Status: StatusAll, View: ViewCalendar, Page: 1}
}

func (f *Filter) Clean() {
	f.Search = core.CleanString(f.Search)
	if f.Status == "" {
		f.Status = StatusAll
	}
	if f.View != ViewList {
		f.View = ViewCalendar
	}
	if f.Page < 1 {
		f.Page = 1
	}
}

// Validate reports ErrInvalidFilter for status values outside both enums.
func (f Filter) Validate() error {
	if !f.Status.Valid() {
		return ErrInvalidFilter
	}
	return nil
}

// DayBucket groups the entries falling on one local calendar date.
// Buckets are derived values; they are recomputed, never mutated in place.
type DayBucket struct {
	Date    time.Time `json:"date"`
	Entries []Entry   `json:"entries"`
}
