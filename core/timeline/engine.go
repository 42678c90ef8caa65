package timeline

import (
	"context"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prajyots60/myskill-agenda/core"
)

const (
	defaultPageSize = 10
	defaultTimeout  = 15 * time.Second
)

type (
	LoadOptions struct {
		// ShowLoading drives the loading callback; quick background refreshes
		// (e.g. after a search keystroke) pass false to avoid flicker.
		ShowLoading bool
	}

	// Result is one consistent agenda view. For list view Entries is the
	// requested page; for calendar view it is the whole visible grid window.
	Result struct {
		Entries   []Entry
		Total     int
		Page      int
		PageCount int
		From      time.Time
		To        time.Time
		Stale     bool // a newer Load superseded this one; Entries hold the newer set
	}

	// Engine owns the canonical in-memory entry set and orchestrates the
	// "give me the entries for the current view" operation. It is the only
	// writer of the set; the status synchronizer and reminder coordinator
	// mutate single fields through ApplyStatus/applyReminded, nothing else
	// may write to entries.
	Engine struct {
		adapter   adapter
		clock     core.Clock
		logger    core.Logger
		loc       *time.Location
		pageSize  int
		timeout   time.Duration
		onLoading func(bool)

		issued uint64 // last issued Load sequence

		mu      sync.Mutex
		applied uint64 // sequence of the Load whose result is currently held
		entries []Entry
	}

	EngineOption func(*Engine)
)

func WithClock(c core.Clock) EngineOption { return func(e *Engine) { e.clock = c } }

func WithLocation(loc *time.Location) EngineOption { return func(e *Engine) { e.loc = loc } }

func WithPageSize(n int) EngineOption { return func(e *Engine) { e.pageSize = n } }

func WithTimeout(d time.Duration) EngineOption { return func(e *Engine) { e.timeout = d } }

// WithLoadingFunc registers the loading-indicator callback toggled around
// Load calls that ask for it.
func WithLoadingFunc(fn func(bool)) EngineOption { return func(e *Engine) { e.onLoading = fn } }

func NewEngine(src Source, logger core.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		adapter:  adapter{src: src, logger: logger},
		clock:    core.NewClock(),
		logger:   logger,
		loc:      time.UTC,
		pageSize: defaultPageSize,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load fetches, normalizes and filters the entries for the given view and
// replaces the held set, unless a more recently issued Load already did.
// On failure the previously held entries are kept: stale-but-available
// beats empty.
func (e *Engine) Load(ctx context.Context, viewer Viewer, f Filter, opts LoadOptions) (Result, error) {
	f.Clean()
	if err := f.Validate(); err != nil {
		return e.currentResult(f), err
	}

	if opts.ShowLoading && e.onLoading != nil {
		e.onLoading(true)
		defer e.onLoading(false)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	seq := atomic.AddUint64(&e.issued, 1)
	from, to := e.window(f)

	entries, total, err := e.fetch(ctx, viewer, f, from, to)
	if err != nil {
		res := e.currentResult(f)
		res.From, res.To = from, to
		return res, err
	}

	filtered := entries[:0:0]
	for _, entry := range entries {
		if entry.Matches(f.Search) {
			filtered = append(filtered, entry)
		}
	}
	sortEntries(filtered)

	// a searched view reports what the search matched, not the window count
	if f.Search != "" {
		total = len(filtered)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if seq < e.applied {
		// an older response must never overwrite a newer one
		res := e.resultLocked(f, from, to, -1)
		res.Stale = true
		return res, nil
	}
	e.applied = seq

	// keep the held slice when nothing changed so downstream identity
	// checks (and the synchronizer's in-place mutations) stay valid
	if !reflect.DeepEqual(filtered, e.entries) {
		e.entries = filtered
	}
	return e.resultLocked(f, from, to, total), nil
}

// fetch delegates to the source once per kind, routing kind-scoped status
// filters only to the kind they apply to.
func (e *Engine) fetch(ctx context.Context, viewer Viewer, f Filter, from, to time.Time) ([]Entry, int, error) {
	q := Query{Role: viewer.Role, ViewerID: viewer.ID, From: from, To: to}
	scope, scoped := f.Status.Scope()

	var entries []Entry
	total := 0
	counted := true

	if !scoped || scope == KindLiveSession {
		sq := q
		if scoped {
			sq.SessionStatus = SessionStatus(f.Status)
		}
		sessions, n, err := e.adapter.fetchSessions(ctx, sq)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, sessions...)
		if n < 0 {
			counted = false
		} else {
			total += n
		}
	}

	if !scoped || scope == KindExam {
		eq := q
		if scoped {
			eq.ExamStatus = ExamStatus(f.Status)
		}
		exams, n, err := e.adapter.fetchExams(ctx, eq)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, exams...)
		if n < 0 {
			counted = false
		} else {
			total += n
		}
	}

	if !counted {
		total = -1
	}
	return dedupe(entries), total, nil
}

// window computes the effective date range: the full padded month grid for
// calendar view, a rolling one-year range from the selected day (or today)
// for list view.
func (e *Engine) window(f Filter) (from, to time.Time) {
	anchor := e.clock.Now().In(e.loc)
	if !f.SelectedDate.IsZero() {
		y, m, d := f.SelectedDate.Date()
		anchor = time.Date(y, m, d, 0, 0, 0, 0, e.loc)
	}

	if f.View == ViewCalendar {
		from, to = GridRange(anchor, e.loc)
	} else {
		from = time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, e.loc)
		to = from.AddDate(1, 0, 0)
	}
	return from.UTC(), to.UTC()
}

func (e *Engine) currentResult(f Filter) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resultLocked(f, time.Time{}, time.Time{}, -1)
}

func (e *Engine) resultLocked(f Filter, from, to time.Time, serverTotal int) Result {
	total := serverTotal
	if total < 0 {
		total = len(e.entries)
	}

	res := Result{Total: total, Page: 1, PageCount: 1, From: from, To: to}
	if f.View != ViewList {
		res.Entries = e.entries
		return res
	}

	res.PageCount = (total + e.pageSize - 1) / e.pageSize
	if res.PageCount < 1 {
		res.PageCount = 1
	}
	res.Page = f.Page
	if res.Page > res.PageCount {
		res.Page = res.PageCount
	}

	start := (res.Page - 1) * e.pageSize
	if start > len(e.entries) {
		start = len(e.entries)
	}
	end := start + e.pageSize
	if end > len(e.entries) {
		end = len(e.entries)
	}
	res.Entries = e.entries[start:end]
	return res
}

// Snapshot returns the canonical entry set. Callers must treat it as read-only.
func (e *Engine) Snapshot() []Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.entries
}

// ApplyStatus is the status synchronizer's single mutation entry point: it
// replaces the matching live session's status in place, touching no other
// field and no other entry. Unknown ids and repeated applications of the
// same status are no-ops.
func (e *Engine) ApplyStatus(entryID string, status SessionStatus) (Entry, bool) {
	if !status.Valid() {
		return Entry{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.entries {
		if e.entries[i].ID != entryID {
			continue
		}
		if e.entries[i].Kind != KindLiveSession || e.entries[i].SessionStatus == status {
			return e.entries[i], false
		}
		e.entries[i].SessionStatus = status
		return e.entries[i], true
	}
	return Entry{}, false
}

// get returns a copy of the entry with the given id.
func (e *Engine) get(entryID string) (Entry, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.entries {
		if e.entries[i].ID == entryID {
			return e.entries[i], true
		}
	}
	return Entry{}, false
}

// applyReminded flips the reminder flag after server acknowledgment; the
// reminder coordinator is its only caller.
func (e *Engine) applyReminded(entryID string, reminded bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.entries {
		if e.entries[i].ID == entryID {
			e.entries[i].IsReminded = reminded
			return true
		}
	}
	return false
}

// EmptyMessage is the guidance text for an empty agenda, per viewer role.
func EmptyMessage(role Role) string {
	if role == RoleCreator {
		return "No events found. Schedule a live session or publish an exam to see it here."
	}
	return "No events found. Upcoming live sessions and exams from your courses will show up here."
}

func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ScheduledAt.Equal(entries[j].ScheduledAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].ScheduledAt.Before(entries[j].ScheduledAt)
	})
}

// dedupe enforces the unique-id invariant, keeping the first occurrence.
func dedupe(entries []Entry) []Entry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0:0]
	for _, entry := range entries {
		if _, dup := seen[entry.ID]; dup {
			continue
		}
		seen[entry.ID] = struct{}{}
		out = append(out, entry)
	}
	return out
}
