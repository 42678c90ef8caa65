package exportsvc

import (
	"context"
	"fmt"
	"net/url"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

const (
	googleCalendarURL  = "https://calendar.google.com/calendar/render"
	outlookComposeURL  = "https://outlook.live.com/calendar/0/deeplink/compose"
	defaultDurationMin = 60
)

// Service builds external-calendar links for agenda entries: deterministic
// deep links for google/outlook, an inline RFC 5545 document for ical.
type Service struct {
	appName string
}

var _ timeline.ExportService = (*Service)(nil)

func NewService(conf *core.Config) *Service {
	return &Service{appName: conf.AppName}
}

func (svc Service) Link(_ context.Context, entry timeline.Entry, provider timeline.ExportProvider) (string, error) {
	start := entry.ScheduledAt.UTC()
	end := start.Add(duration(entry))

	switch provider {
	case timeline.ProviderGoogle:
		return svc.googleLink(entry, start, end), nil
	case timeline.ProviderOutlook:
		return svc.outlookLink(entry, start, end), nil
	case timeline.ProviderICal:
		return svc.icalData(entry, start, end)
	}
	return "", errors.Errorf("unknown provider %q", provider)
}

func (svc Service) googleLink(entry timeline.Entry, start, end time.Time) string {
	const stamp = "20060102T150405Z"
	v := make(url.Values)
	v.Set("action", "TEMPLATE")
	v.Set("text", entry.Title)
	v.Set("dates", start.Format(stamp)+"/"+end.Format(stamp))
	v.Set("details", details(entry))
	v.Set("ctz", "UTC")
	return googleCalendarURL + "?" + v.Encode()
}

func (svc Service) outlookLink(entry timeline.Entry, start, end time.Time) string {
	v := make(url.Values)
	v.Set("path", "/calendar/action/compose")
	v.Set("rru", "addevent")
	v.Set("subject", entry.Title)
	v.Set("startdt", start.Format(time.RFC3339))
	v.Set("enddt", end.Format(time.RFC3339))
	v.Set("body", details(entry))
	return outlookComposeURL + "?" + v.Encode()
}

func (svc Service) icalData(entry timeline.Entry, start, end time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	ev := cal.AddEvent(entry.ID + "@" + svc.appName)
	ev.SetCreatedTime(time.Now().UTC())
	ev.SetDtStampTime(time.Now().UTC())
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(entry.Title)
	ev.SetDescription(details(entry))

	return "data:text/calendar;charset=utf-8," + url.PathEscape(cal.Serialize()), nil
}

func duration(entry timeline.Entry) time.Duration {
	minutes := entry.DurationMinutes
	if minutes <= 0 {
		minutes = defaultDurationMin
	}
	return time.Duration(minutes) * time.Minute
}

func details(entry timeline.Entry) string {
	label := "Live session"
	if entry.IsExam() {
		label = "Exam"
	}
	if entry.ContextName == "" {
		return label
	}
	return fmt.Sprintf("%s - %s", label, entry.ContextName)
}
