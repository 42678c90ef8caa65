package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/prajyots60/myskill-agenda/core/timeline"
)

// seed loads a small demo agenda around the current date so a fresh
// environment has something to render in both portals.
func (cli *commandLine) seed(owner string) error {
	ownerID := uuid.NewString()
	now := cli.clock.Now().UTC()

	sessions := []struct {
		title  string
		at     time.Time
		status timeline.SessionStatus
	}{
		{"Intro to Goroutines", now.Add(-48 * time.Hour), timeline.SessionEnded},
		{"Live Q&A: Channels", now.Add(-30 * time.Minute), timeline.SessionLive},
		{"Profiling Workshop", now.Add(72 * time.Hour), timeline.SessionScheduled},
		{"Office Hours", now.AddDate(0, 0, 14), timeline.SessionScheduled},
	}
	for _, s := range sessions {
		if _, err := cli.db.Exec(
			`INSERT INTO live_session (id, title, context_name, scheduled_at, status, duration_minutes, owner_id, owner_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.NewString(), s.title, "Go Bootcamp", s.at, string(s.status), 60, ownerID, owner,
		); err != nil {
			return errors.Wrapf(err, "seeding session %q", s.title)
		}
	}

	exams := []struct {
		title  string
		at     time.Time
		status timeline.ExamStatus
		opens  time.Time
		closes time.Time
	}{
		{"Concurrency Midterm", now.Add(24 * time.Hour), timeline.ExamPublished, now.Add(24 * time.Hour), now.Add(26 * time.Hour)},
		{"Final Project Review", now.AddDate(0, 0, 21), timeline.ExamDraft, time.Time{}, time.Time{}},
	}
	for _, e := range exams {
		if _, err := cli.db.Exec(
			`INSERT INTO exam (id, title, context_name, scheduled_at, status, duration_minutes, owner_id, owner_name, form_id, opens_at, closes_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			uuid.NewString(), e.title, "Go Bootcamp", e.at, string(e.status), 90, ownerID, owner,
			uuid.NewString(), nullableTime(e.opens), nullableTime(e.closes),
		); err != nil {
			return errors.Wrapf(err, "seeding exam %q", e.title)
		}
	}

	logger.Printf("seeded %d sessions and %d exams for owner %s (%s)", len(sessions), len(exams), owner, ownerID)
	return nil
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
