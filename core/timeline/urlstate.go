package timeline

import (
	"net/url"
	"strconv"
	"sync"
	"time"
)

const dateParamLayout = "2006-01-02"

// query parameter names understood and produced by the filter codec
const (
	paramView   = "view"
	paramStatus = "status"
	paramQuery  = "query"
	paramPage   = "page"
	paramDate   = "date"
)

// EncodeFilter serializes a filter selection into URL query parameters,
// omitting parameters at their default value to keep URLs minimal.
func EncodeFilter(f Filter) url.Values {
	f.Clean()
	v := make(url.Values)
	if f.View != ViewCalendar {
		v.Set(paramView, string(f.View))
	}
	if f.Status != StatusAll {
		v.Set(paramStatus, string(f.Status))
	}
	if f.Search != "" {
		v.Set(paramQuery, f.Search)
	}
	if f.Page > 1 {
		v.Set(paramPage, strconv.Itoa(f.Page))
	}
	if !f.SelectedDate.IsZero() {
		v.Set(paramDate, f.SelectedDate.Format(dateParamLayout))
	}
	return v
}

// DecodeFilter hydrates a filter from URL query parameters. Absent or
// unusable values fall back to their documented defaults.
func DecodeFilter(v url.Values) Filter {
	f := DefaultFilter()
	if view := v.Get(paramView); view == string(ViewList) {
		f.View = ViewList
	}
	if status := StatusFilter(v.Get(paramStatus)); status != "" && status.Valid() {
		f.Status = status
	}
	f.Search = v.Get(paramQuery)
	if page, err := strconv.Atoi(v.Get(paramPage)); err == nil && page > 1 {
		f.Page = page
	}
	if date, err := time.Parse(dateParamLayout, v.Get(paramDate)); err == nil {
		f.SelectedDate = date
	}
	f.Clean()
	return f
}

// Navigator performs the actual URL change. Push adds a history entry,
// Replace swaps the current one.
type Navigator interface {
	Push(url string)
	Replace(url string)
}

// writeState is the URLWriter's explicit lifecycle.
type writeState int

const (
	writeIdle writeState = iota
	writePending
)

// URLWriter keeps the filter selection reflected in the navigable URL.
// Writes are debounced so a burst of rapid filter changes coalesces into a
// single navigation; a date-only selection replaces the current history
// entry instead of pushing a new one so day browsing does not pollute
// back-button history. Writing the same URL as the last write is a no-op.
type URLWriter struct {
	nav   Navigator
	path  string
	delay time.Duration

	mu          sync.Mutex
	state       writeState
	timer       *time.Timer
	pendingURL  string
	replaceOnly bool
	lastWritten string
	closed      bool
}

type URLWriterOption func(*URLWriter)

func WithWriteDelay(d time.Duration) URLWriterOption {
	return func(w *URLWriter) { w.delay = d }
}

func NewURLWriter(nav Navigator, path string, opts ...URLWriterOption) *URLWriter {
	w := &URLWriter{
		nav:   nav,
		path:  path,
		delay: 300 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write schedules a debounced URL update for the given selection. dateOnly
// marks the change as a bare calendar-day selection; a burst containing any
// non-date change is pushed, not replaced.
func (w *URLWriter) Write(f Filter, dateOnly bool) {
	target := w.path
	if query := EncodeFilter(f).Encode(); query != "" {
		target += "?" + query
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.state == writeIdle && target == w.lastWritten {
		return
	}

	if w.state == writePending {
		// cancel the pending timer exactly once per transition
		w.timer.Stop()
		w.replaceOnly = w.replaceOnly && dateOnly
	} else {
		w.replaceOnly = dateOnly
	}
	w.pendingURL = target
	w.state = writePending
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *URLWriter) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.state != writePending {
		return
	}
	w.state = writeIdle
	w.timer = nil
	if w.pendingURL == w.lastWritten {
		return
	}
	if w.replaceOnly {
		w.nav.Replace(w.pendingURL)
	} else {
		w.nav.Push(w.pendingURL)
	}
	w.lastWritten = w.pendingURL
}

// Flush performs any pending write immediately. Mainly for tests.
func (w *URLWriter) Flush() {
	w.mu.Lock()
	if w.state == writePending {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.flush()
}

// Close cancels any pending write. The writer must not be used afterwards;
// dangling timers acting after teardown are a bug.
func (w *URLWriter) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.state == writePending {
		w.timer.Stop()
		w.timer = nil
	}
	w.state = writeIdle
	w.closed = true
}
