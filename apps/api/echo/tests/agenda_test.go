package tests

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prajyots60/myskill-agenda/core/timeline"
)

const ownerID = "creator-1"

func seedAgenda(f *fixture) {
	rec := func(id, title string, at time.Time, status string) timeline.Record {
		return timeline.Record{
			ID:          id,
			Title:       title,
			ContextName: "Go Bootcamp",
			ScheduledAt: at.Format(time.RFC3339),
			Status:      status,
			OwnerName:   "Jane Doe",
		}
	}

	f.repo.AddSession(rec("s-live", "Live Q&A", testNow.Add(-15*time.Minute), "LIVE"), ownerID)
	f.repo.AddSession(rec("s-sched", "Profiling Workshop", testNow.Add(48*time.Hour), "SCHEDULED"), ownerID)
	f.repo.AddSession(rec("s-other", "Someone Else's Class", testNow.Add(24*time.Hour), "SCHEDULED"), "creator-2")

	open := rec("e-open", "Midterm", testNow.Add(-time.Hour), "PUBLISHED")
	open.FormID = "form-1"
	open.OpensAt = testNow.Add(-time.Hour).Format(time.RFC3339)
	open.ClosesAt = testNow.Add(time.Hour).Format(time.RFC3339)
	f.repo.AddExam(open, ownerID)

	gated := rec("e-gated", "Final", testNow.Add(96*time.Hour), "PUBLISHED")
	gated.FormID = "form-2"
	gated.OpensAt = testNow.Add(96 * time.Hour).Format(time.RFC3339)
	f.repo.AddExam(gated, ownerID)

	f.repo.AddExam(rec("e-draft", "Unfinished Draft", testNow.Add(120*time.Hour), "DRAFT"), ownerID)
}

type entryPayload struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	Action *struct {
		Label   string `json:"label"`
		URL     string `json:"url"`
		Enabled bool   `json:"enabled"`
	} `json:"action"`
}

type agendaPayload struct {
	Entries      []entryPayload `json:"entries"`
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	PageCount    int            `json:"page_count"`
	EmptyMessage string         `json:"empty_message"`
}

func Test_agendaApi_list(t *testing.T) {
	f := setup(t)
	seedAgenda(f)
	studentToken := getToken(t, f.conf, "student-1", "student@test.test", timeline.RoleStudent)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", "")
		f.app.ServeHTTP(rec, req)
		assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)
		var body httpErr
		decodeBody(t, rec, &body)
		assert.Equal(t, errMissingToken, body)
	})

	t.Run("student sees everything but drafts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body agendaPayload
		decodeBody(t, rec, &body)
		ids := make([]string, 0, len(body.Entries))
		for _, e := range body.Entries {
			ids = append(ids, e.ID)
		}
		assert.Equal(t, []string{"e-open", "s-live", "s-other", "s-sched", "e-gated"}, ids)
		assert.Equal(t, 5, body.Total)
	})

	t.Run("actions are gated", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", studentToken)
		f.app.ServeHTTP(rec, req)

		var body agendaPayload
		decodeBody(t, rec, &body)
		actions := make(map[string]*struct {
			Label   string `json:"label"`
			URL     string `json:"url"`
			Enabled bool   `json:"enabled"`
		}, len(body.Entries))
		for _, e := range body.Entries {
			actions[e.ID] = e.Action
		}

		if assert.NotNil(t, actions["s-live"]) {
			assert.Equal(t, "Join", actions["s-live"].Label)
			assert.Equal(t, "/live/s-live", actions["s-live"].URL)
			assert.True(t, actions["s-live"].Enabled)
		}
		if assert.NotNil(t, actions["e-open"]) {
			assert.Equal(t, "Take Exam", actions["e-open"].Label)
			assert.Equal(t, "/exams/form-1/take", actions["e-open"].URL)
			assert.True(t, actions["e-open"].Enabled)
		}
		if assert.NotNil(t, actions["e-gated"]) {
			assert.Equal(t, "Not Available Yet", actions["e-gated"].Label)
			assert.False(t, actions["e-gated"].Enabled, "a gated exam must render disabled, not hidden")
		}
		assert.Nil(t, actions["s-sched"], "scheduled sessions have no call to action")
	})

	t.Run("creator sees own entries only", func(t *testing.T) {
		token := getToken(t, f.conf, ownerID, "creator@test.test", timeline.RoleCreator)
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", token)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body agendaPayload
		decodeBody(t, rec, &body)
		for _, e := range body.Entries {
			assert.NotEqual(t, "s-other", e.ID)
		}
		// creators do see their own drafts
		ids := make([]string, 0, len(body.Entries))
		for _, e := range body.Entries {
			ids = append(ids, e.ID)
		}
		assert.Contains(t, ids, "e-draft")
	})

	t.Run("search filters", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda?query=midterm", studentToken)
		f.app.ServeHTTP(rec, req)

		var body agendaPayload
		decodeBody(t, rec, &body)
		if assert.Len(t, body.Entries, 1) {
			assert.Equal(t, "e-open", body.Entries[0].ID)
		}
	})

	t.Run("status filter scopes one kind", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda?status=LIVE", studentToken)
		f.app.ServeHTTP(rec, req)

		var body agendaPayload
		decodeBody(t, rec, &body)
		if assert.Len(t, body.Entries, 1) {
			assert.Equal(t, "s-live", body.Entries[0].ID)
		}
	})

	t.Run("unknown status filter rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda?status=EXPIRED", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda?date=someday", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_agendaApi_list_emptyMessage(t *testing.T) {
	f := setup(t)
	// no seed: the agenda is empty

	tests := []struct {
		name string
		role timeline.Role
		want string
	}{
		{name: "student", role: timeline.RoleStudent, want: "your courses"},
		{name: "creator", role: timeline.RoleCreator, want: "Schedule a live session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := getToken(t, f.conf, "v-"+tt.name, tt.name+"@test.test", tt.role)
			req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", token)
			f.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)

			var body agendaPayload
			decodeBody(t, rec, &body)
			assert.Empty(t, body.Entries)
			assert.Contains(t, body.EmptyMessage, tt.want)
		})
	}
}

func Test_agendaApi_calendar(t *testing.T) {
	f := setup(t)
	seedAgenda(f)
	token := getToken(t, f.conf, "student-1", "student@test.test", timeline.RoleStudent)

	req, rec := newAuthRequest(http.MethodGet, "/v1/agenda/calendar?date=2026-01-15", token)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Month string `json:"month"`
		Days  []struct {
			Date     string         `json:"date"`
			Entries  []entryPayload `json:"entries"`
			Overflow int            `json:"overflow"`
			HasLive  bool           `json:"has_live"`
		} `json:"days"`
	}
	decodeBody(t, rec, &body)

	assert.Equal(t, "2026-01", body.Month)
	// January 2026 renders as five Sunday-first weeks
	assert.Len(t, body.Days, 35)
	assert.Equal(t, "2025-12-28", body.Days[0].Date)

	byDate := make(map[string][]entryPayload)
	live := make(map[string]bool)
	for _, day := range body.Days {
		byDate[day.Date] = day.Entries
		live[day.Date] = day.HasLive
	}
	// s-live and e-open both fall on the 15th
	assert.Len(t, byDate["2026-01-15"], 2)
	assert.True(t, live["2026-01-15"])
	assert.Len(t, byDate["2026-01-17"], 1) // s-sched
	assert.False(t, live["2026-01-17"])
}

func Test_agendaApi_calendar_localZone(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)
	f := setupIn(t, loc)
	f.repo.AddSession(timeline.Record{
		ID:          "s-feb",
		Title:       "February Workshop",
		ContextName: "Go Bootcamp",
		ScheduledAt: time.Date(2026, time.February, 10, 20, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Status:      "SCHEDULED",
	}, ownerID)
	token := getToken(t, f.conf, "student-1", "student@test.test", timeline.RoleStudent)

	req, rec := newAuthRequest(http.MethodGet, "/v1/agenda/calendar?date=2026-02-01", token)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Month string `json:"month"`
		Days  []struct {
			Date    string         `json:"date"`
			Entries []entryPayload `json:"entries"`
		} `json:"days"`
	}
	decodeBody(t, rec, &body)

	// the projected grid must cover the month the engine fetched, not the
	// one the UTC rendering of the anchor falls into
	assert.Equal(t, "2026-02", body.Month)
	// February 2026 runs Sunday through Saturday with no padding
	if assert.Len(t, body.Days, 28) {
		assert.Equal(t, "2026-02-01", body.Days[0].Date)
		assert.Equal(t, "2026-02-28", body.Days[len(body.Days)-1].Date)
	}
	byDate := make(map[string][]entryPayload)
	for _, day := range body.Days {
		byDate[day.Date] = day.Entries
	}
	// 20:00 UTC is the 10th local time as well
	if assert.Len(t, byDate["2026-02-10"], 1) {
		assert.Equal(t, "s-feb", byDate["2026-02-10"][0].ID)
	}
}

func Test_agendaApi_list_closedExam(t *testing.T) {
	f := setup(t)
	f.repo.AddExam(timeline.Record{
		ID:          "e-closed",
		Title:       "Morning Quiz",
		ContextName: "Go Bootcamp",
		ScheduledAt: testNow.Add(time.Hour).Format(time.RFC3339),
		Status:      "PUBLISHED",
		FormID:      "form-9",
		OpensAt:     testNow.Add(-3 * time.Hour).Format(time.RFC3339),
		ClosesAt:    testNow.Add(-time.Hour).Format(time.RFC3339),
	}, ownerID)
	token := getToken(t, f.conf, "student-1", "student@test.test", timeline.RoleStudent)

	req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", token)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var body agendaPayload
	decodeBody(t, rec, &body)
	if assert.Len(t, body.Entries, 1) {
		action := body.Entries[0].Action
		if assert.NotNil(t, action) {
			assert.Equal(t, "Closed", action.Label, "a lapsed window is closed, not pending")
			assert.False(t, action.Enabled)
		}
	}
}

func Test_agendaApi_reminder(t *testing.T) {
	f := setup(t)
	seedAgenda(f)
	studentToken := getToken(t, f.conf, "student-1", "student@test.test", timeline.RoleStudent)

	// the engine only knows entries it has loaded
	req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", studentToken)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("toggle on", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/agenda/entries/s-sched/reminder", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			IsReminded bool `json:"is_reminded"`
		}
		decodeBody(t, rec, &body)
		assert.True(t, body.IsReminded)
	})

	t.Run("toggle off", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/agenda/entries/s-sched/reminder", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			IsReminded bool `json:"is_reminded"`
		}
		decodeBody(t, rec, &body)
		assert.False(t, body.IsReminded)
	})

	t.Run("exams have no reminders", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/agenda/entries/e-open/reminder", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown entry", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/agenda/entries/ghost/reminder", studentToken)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("creators have no reminders", func(t *testing.T) {
		token := getToken(t, f.conf, ownerID, "creator@test.test", timeline.RoleCreator)
		// load the creator's view first
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", token)
		f.app.ServeHTTP(rec, req)

		req, rec = newAuthRequest(http.MethodPost, "/v1/agenda/entries/s-sched/reminder", token)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func Test_agendaApi_export(t *testing.T) {
	f := setup(t)
	seedAgenda(f)
	token := getToken(t, f.conf, "student-1", "student@test.test", timeline.RoleStudent)

	// hydrate the engine
	req, rec := newAuthRequest(http.MethodGet, "/v1/agenda", token)
	f.app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	t.Run("link built", func(t *testing.T) {
		path := "/v1/agenda/entries/s-sched/export?" + url.Values{"provider": {"google"}}.Encode()
		req, rec := newAuthRequest(http.MethodGet, path, token)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			URL string `json:"url"`
		}
		decodeBody(t, rec, &body)
		assert.Equal(t, "https://calendar.test/add", body.URL)
	})

	t.Run("unknown provider rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda/entries/s-sched/export?provider=yahoo", token)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown entry", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/agenda/entries/ghost/export?provider=ical", token)
		f.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
