package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/prajyots60/myskill-agenda/core/timeline"
	notifsvc "github.com/prajyots60/myskill-agenda/services/notification"
)

type (
	sessionRow struct {
		ID              string      `db:"id"`
		Title           string      `db:"title"`
		ContextName     string      `db:"context_name"`
		ScheduledAt     time.Time   `db:"scheduled_at"`
		Status          string      `db:"status"`
		DurationMinutes null.Int    `db:"duration_minutes"`
		OwnerName       string      `db:"owner_name"`
		OwnerAvatarURL  null.String `db:"owner_avatar_url"`
		IsReminded      bool        `db:"is_reminded"`
	}

	examRow struct {
		ID              string      `db:"id"`
		Title           string      `db:"title"`
		ContextName     string      `db:"context_name"`
		ScheduledAt     time.Time   `db:"scheduled_at"`
		Status          string      `db:"status"`
		DurationMinutes null.Int    `db:"duration_minutes"`
		OwnerName       string      `db:"owner_name"`
		OwnerAvatarURL  null.String `db:"owner_avatar_url"`
		FormID          string      `db:"form_id"`
		OpensAt         null.Time   `db:"opens_at"`
		ClosesAt        null.Time   `db:"closes_at"`
	}

	// agendaRepository serves the agenda read model straight from the
	// platform database, already scoped per audience: creators see what
	// they own, students see everything except exam drafts.
	agendaRepository struct {
		db *sqlx.DB
	}
)

var (
	_ timeline.Source              = (*agendaRepository)(nil)
	_ timeline.ReminderService     = (*agendaRepository)(nil)
	_ notifsvc.SubscriberDirectory = (*agendaRepository)(nil)
)

func NewAgendaRepository(db *sqlx.DB) *agendaRepository {
	return &agendaRepository{db: db}
}

func (repo *agendaRepository) FetchSessions(ctx context.Context, q timeline.Query) ([]timeline.Record, int, error) {
	if q.ExamStatus != "" {
		return nil, 0, timeline.ErrInvalidFilter
	}

	query := `
		SELECT s.id, s.title, s.context_name, s.scheduled_at, s.status,
		       s.duration_minutes, s.owner_name, s.owner_avatar_url,
		       EXISTS (
		           SELECT 1 FROM session_reminder r
		           WHERE r.session_id = s.id AND r.viewer_id = $1
		       ) AS is_reminded
		FROM live_session s
		WHERE s.scheduled_at >= $2 AND s.scheduled_at < $3`
	args := []interface{}{q.ViewerID, q.From, q.To}

	if q.SessionStatus != "" {
		args = append(args, string(q.SessionStatus))
		query += fmt.Sprintf(` AND s.status = $%d`, len(args))
	}
	if q.Role == timeline.RoleCreator {
		args = append(args, q.ViewerID)
		query += fmt.Sprintf(` AND s.owner_id = $%d`, len(args))
	}
	query += ` ORDER BY s.scheduled_at, s.id`

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting live sessions")
	}

	recs := make([]timeline.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, timeline.Record{
			ID:              row.ID,
			Title:           row.Title,
			ContextName:     row.ContextName,
			ScheduledAt:     row.ScheduledAt.UTC().Format(time.RFC3339),
			Status:          row.Status,
			DurationMinutes: int(row.DurationMinutes.Int),
			OwnerName:       row.OwnerName,
			OwnerAvatarURL:  row.OwnerAvatarURL.String,
			IsReminded:      row.IsReminded && q.Role == timeline.RoleStudent,
		})
	}
	return recs, len(recs), nil
}

func (repo *agendaRepository) FetchExams(ctx context.Context, q timeline.Query) ([]timeline.Record, int, error) {
	if q.SessionStatus != "" {
		return nil, 0, timeline.ErrInvalidFilter
	}

	query := `
		SELECT e.id, e.title, e.context_name, e.scheduled_at, e.status,
		       e.duration_minutes, e.owner_name, e.owner_avatar_url,
		       e.form_id, e.opens_at, e.closes_at
		FROM exam e
		WHERE e.scheduled_at >= $1 AND e.scheduled_at < $2`
	args := []interface{}{q.From, q.To}

	if q.ExamStatus != "" {
		args = append(args, string(q.ExamStatus))
		query += fmt.Sprintf(` AND e.status = $%d`, len(args))
	}
	if q.Role == timeline.RoleCreator {
		args = append(args, q.ViewerID)
		query += fmt.Sprintf(` AND e.owner_id = $%d`, len(args))
	} else {
		// drafts are the creator's private business
		query += ` AND e.status <> 'DRAFT'`
	}
	query += ` ORDER BY e.scheduled_at, e.id`

	var rows []examRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, errors.Wrap(err, "selecting exams")
	}

	recs := make([]timeline.Record, 0, len(rows))
	for _, row := range rows {
		rec := timeline.Record{
			ID:              row.ID,
			Title:           row.Title,
			ContextName:     row.ContextName,
			ScheduledAt:     row.ScheduledAt.UTC().Format(time.RFC3339),
			Status:          row.Status,
			DurationMinutes: int(row.DurationMinutes.Int),
			OwnerName:       row.OwnerName,
			OwnerAvatarURL:  row.OwnerAvatarURL.String,
			FormID:          row.FormID,
		}
		if row.OpensAt.Valid {
			rec.OpensAt = row.OpensAt.Time.UTC().Format(time.RFC3339)
		}
		if row.ClosesAt.Valid {
			rec.ClosesAt = row.ClosesAt.Time.UTC().Format(time.RFC3339)
		}
		recs = append(recs, rec)
	}
	return recs, len(recs), nil
}

func (repo *agendaRepository) SetReminder(ctx context.Context, viewer timeline.Viewer, entryID string, enabled bool) error {
	if !enabled {
		_, err := repo.db.ExecContext(ctx,
			`DELETE FROM session_reminder WHERE session_id = $1 AND viewer_id = $2`,
			entryID, viewer.ID,
		)
		return errors.Wrap(err, "deleting reminder")
	}

	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO session_reminder (session_id, viewer_id, email)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (session_id, viewer_id) DO NOTHING`,
		entryID, viewer.ID, viewer.Email,
	)
	return errors.Wrap(err, "inserting reminder")
}

func (repo *agendaRepository) RemindedEmails(ctx context.Context, entryID string) ([]string, error) {
	var emails []string
	err := repo.db.SelectContext(ctx, &emails,
		`SELECT email FROM session_reminder WHERE session_id = $1 AND email <> ''`,
		entryID,
	)
	return emails, errors.Wrap(err, "selecting reminded emails")
}
