package exportsvc

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

func testEntry() timeline.Entry {
	return timeline.Entry{
		ID:              "s1",
		Kind:            timeline.KindLiveSession,
		Title:           "Live Q&A: Channels",
		ContextName:     "Go Bootcamp",
		ScheduledAt:     time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC),
		DurationMinutes: 90,
	}
}

func TestService_Link_google(t *testing.T) {
	svc := NewService(&core.Config{AppName: "MySkill"})

	link, err := svc.Link(context.Background(), testEntry(), timeline.ProviderGoogle)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("Link() returned an unparseable URL: %v", err)
	}
	assert.Equal(t, "calendar.google.com", u.Host)

	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Live Q&A: Channels", q.Get("text"))
	assert.Equal(t, "20260115T093000Z/20260115T110000Z", q.Get("dates"))
	assert.Equal(t, "Live session - Go Bootcamp", q.Get("details"))
}

func TestService_Link_outlook(t *testing.T) {
	svc := NewService(&core.Config{AppName: "MySkill"})

	entry := testEntry()
	entry.Kind = timeline.KindExam
	entry.DurationMinutes = 0 // falls back to an hour

	link, err := svc.Link(context.Background(), entry, timeline.ProviderOutlook)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("Link() returned an unparseable URL: %v", err)
	}
	q := u.Query()
	assert.Equal(t, "2026-01-15T09:30:00Z", q.Get("startdt"))
	assert.Equal(t, "2026-01-15T10:30:00Z", q.Get("enddt"))
	assert.Equal(t, "Exam - Go Bootcamp", q.Get("body"))
}

func TestService_Link_ical(t *testing.T) {
	svc := NewService(&core.Config{AppName: "MySkill"})

	link, err := svc.Link(context.Background(), testEntry(), timeline.ProviderICal)
	if err != nil {
		t.Fatalf("Link() error = %v", err)
	}
	if !strings.HasPrefix(link, "data:text/calendar") {
		t.Fatalf("Link() = %q, want a data: calendar URL", link)
	}

	doc, err := url.PathUnescape(strings.TrimPrefix(link, "data:text/calendar;charset=utf-8,"))
	if err != nil {
		t.Fatalf("Link() payload unescape failed: %v", err)
	}
	assert.Contains(t, doc, "BEGIN:VCALENDAR")
	assert.Contains(t, doc, "UID:s1@MySkill")
	assert.Contains(t, doc, "SUMMARY:Live Q&A: Channels")
	assert.Contains(t, doc, "DTSTART:20260115T093000Z")
}

func TestService_Link_unknownProvider(t *testing.T) {
	svc := NewService(&core.Config{AppName: "MySkill"})

	if _, err := svc.Link(context.Background(), testEntry(), "yahoo"); err == nil {
		t.Error("Link() accepted an unknown provider")
	}
}
