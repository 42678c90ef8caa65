package timeline

import (
	"context"
	"time"
)

// nopLogger silences engine logging in tests.
type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeClock pins "now".
type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

// fakeSource serves canned records; sessionsFn/examsFn take over when set.
type fakeSource struct {
	sessions    []Record
	exams       []Record
	sessionsErr error
	examsErr    error

	sessionsFn func(Query) ([]Record, int, error)
	examsFn    func(Query) ([]Record, int, error)
}

func (s *fakeSource) FetchSessions(_ context.Context, q Query) ([]Record, int, error) {
	if s.sessionsFn != nil {
		return s.sessionsFn(q)
	}
	if s.sessionsErr != nil {
		return nil, 0, s.sessionsErr
	}
	return s.sessions, len(s.sessions), nil
}

func (s *fakeSource) FetchExams(_ context.Context, q Query) ([]Record, int, error) {
	if s.examsFn != nil {
		return s.examsFn(q)
	}
	if s.examsErr != nil {
		return nil, 0, s.examsErr
	}
	return s.exams, len(s.exams), nil
}

var testNow = time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)

func sessionRec(id, title string, at time.Time, status SessionStatus) Record {
	return Record{
		ID:          id,
		Title:       title,
		ContextName: "Go Bootcamp",
		ScheduledAt: at.Format(time.RFC3339),
		Status:      string(status),
		OwnerName:   "Jane Doe",
	}
}

func examRec(id, title string, at time.Time, status ExamStatus) Record {
	return Record{
		ID:          id,
		Title:       title,
		ContextName: "Go Bootcamp",
		ScheduledAt: at.Format(time.RFC3339),
		Status:      string(status),
		FormID:      "form-" + id,
	}
}

func newTestEngine(src Source, opts ...EngineOption) *Engine {
	opts = append([]EngineOption{WithClock(fakeClock{testNow})}, opts...)
	return NewEngine(src, nopLogger{}, opts...)
}

func loadTestEngine(src Source, f Filter, opts ...EngineOption) (*Engine, Result, error) {
	e := newTestEngine(src, opts...)
	res, err := e.Load(context.Background(), testViewer(), f, LoadOptions{})
	return e, res, err
}

func testViewer() Viewer {
	return Viewer{ID: "viewer-1", Email: "viewer@test.test", Role: RoleStudent}
}

func listFilter() Filter {
	f := DefaultFilter()
	f.View = ViewList
	return f
}
