package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/prajyots60/myskill-agenda/core/timeline"
	notifsvc "github.com/prajyots60/myskill-agenda/services/notification"
)

// agendaRepository is the in-memory Source for tests and local dev.
// Scoping matches the SQL store: creators see what they own, students see
// everything except exam drafts.
type agendaRepository struct {
	db *DB
}

var (
	_ timeline.Source              = (*agendaRepository)(nil)
	_ timeline.ReminderService     = (*agendaRepository)(nil)
	_ notifsvc.SubscriberDirectory = (*agendaRepository)(nil)
)

func NewAgendaRepository(db *DB) *agendaRepository {
	return &agendaRepository{db: db}
}

// AddSession seeds one live-session record.
func (repo *agendaRepository) AddSession(rec timeline.Record, ownerID string) {
	repo.db.sessions.Lock()
	defer repo.db.sessions.Unlock()
	repo.db.sessions.table[rec.ID] = &entryRow{rec: rec, ownerID: ownerID}
}

// AddExam seeds one exam record.
func (repo *agendaRepository) AddExam(rec timeline.Record, ownerID string) {
	repo.db.exams.Lock()
	defer repo.db.exams.Unlock()
	repo.db.exams.table[rec.ID] = &entryRow{rec: rec, ownerID: ownerID}
}

func (repo *agendaRepository) FetchSessions(_ context.Context, q timeline.Query) ([]timeline.Record, int, error) {
	if q.ExamStatus != "" {
		return nil, 0, timeline.ErrInvalidFilter
	}

	repo.db.sessions.RLock()
	defer repo.db.sessions.RUnlock()

	recs := make([]timeline.Record, 0, len(repo.db.sessions.table))
	for _, row := range repo.db.sessions.table {
		if !inWindow(row.rec.ScheduledAt, q.From, q.To) {
			continue
		}
		if q.SessionStatus != "" && row.rec.Status != string(q.SessionStatus) {
			continue
		}
		if q.Role == timeline.RoleCreator && row.ownerID != q.ViewerID {
			continue
		}
		rec := row.rec
		rec.IsReminded = q.Role == timeline.RoleStudent && repo.hasReminder(rec.ID, q.ViewerID)
		recs = append(recs, rec)
	}
	sortRecords(recs)
	return recs, len(recs), nil
}

func (repo *agendaRepository) FetchExams(_ context.Context, q timeline.Query) ([]timeline.Record, int, error) {
	if q.SessionStatus != "" {
		return nil, 0, timeline.ErrInvalidFilter
	}

	repo.db.exams.RLock()
	defer repo.db.exams.RUnlock()

	recs := make([]timeline.Record, 0, len(repo.db.exams.table))
	for _, row := range repo.db.exams.table {
		if !inWindow(row.rec.ScheduledAt, q.From, q.To) {
			continue
		}
		if q.ExamStatus != "" && row.rec.Status != string(q.ExamStatus) {
			continue
		}
		if q.Role == timeline.RoleCreator {
			if row.ownerID != q.ViewerID {
				continue
			}
		} else if row.rec.Status == string(timeline.ExamDraft) {
			continue
		}
		recs = append(recs, row.rec)
	}
	sortRecords(recs)
	return recs, len(recs), nil
}

func (repo *agendaRepository) SetReminder(_ context.Context, viewer timeline.Viewer, entryID string, enabled bool) error {
	repo.db.sessions.RLock()
	_, found := repo.db.sessions.table[entryID]
	repo.db.sessions.RUnlock()
	if !found {
		return timeline.ErrNotFound
	}

	repo.db.reminders.Lock()
	defer repo.db.reminders.Unlock()
	if enabled {
		if repo.db.reminders.table[entryID] == nil {
			repo.db.reminders.table[entryID] = make(map[string]string)
		}
		repo.db.reminders.table[entryID][viewer.ID] = viewer.Email
	} else {
		delete(repo.db.reminders.table[entryID], viewer.ID)
	}
	return nil
}

func (repo *agendaRepository) RemindedEmails(_ context.Context, entryID string) ([]string, error) {
	repo.db.reminders.RLock()
	defer repo.db.reminders.RUnlock()

	emails := make([]string, 0, len(repo.db.reminders.table[entryID]))
	for _, email := range repo.db.reminders.table[entryID] {
		if email != "" {
			emails = append(emails, email)
		}
	}
	sort.Strings(emails)
	return emails, nil
}

func (repo *agendaRepository) hasReminder(entryID, viewerID string) bool {
	repo.db.reminders.RLock()
	defer repo.db.reminders.RUnlock()
	_, ok := repo.db.reminders.table[entryID][viewerID]
	return ok
}

func inWindow(scheduledAt string, from, to time.Time) bool {
	t, err := time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		// let the adapter drop it
		return true
	}
	return !t.Before(from) && t.Before(to)
}

func sortRecords(recs []timeline.Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ScheduledAt == recs[j].ScheduledAt {
			return recs[i].ID < recs[j].ID
		}
		return recs[i].ScheduledAt < recs[j].ScheduledAt
	})
}
