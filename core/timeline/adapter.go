package timeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/prajyots60/myskill-agenda/core"
)

type (
	// Query scopes one retrieval against a Source. From/To bound ScheduledAt
	// (inclusive/exclusive, UTC). At most one of SessionStatus/ExamStatus may
	// be set, and only against the matching fetch operation.
	Query struct {
		Role     Role
		ViewerID string
		From     time.Time
		To       time.Time

		SessionStatus SessionStatus
		ExamStatus    ExamStatus
	}

	// Record is the loose wire shape entries arrive in. Timestamps are
	// RFC 3339 strings and the status is an untyped label; normalization
	// turns a Record into a well-formed Entry or drops it.
	Record struct {
		ID              string `json:"id"`
		Title           string `json:"title"`
		ContextName     string `json:"context_name"`
		ScheduledAt     string `json:"scheduled_at"`
		Status          string `json:"status"`
		DurationMinutes int    `json:"duration_minutes"`
		OwnerName       string `json:"owner_name"`
		OwnerAvatarURL  string `json:"owner_avatar_url"`
		IsReminded      bool   `json:"is_reminded"`
		OpensAt         string `json:"opens_at"`
		ClosesAt        string `json:"closes_at"`
		FormID          string `json:"form_id"`
	}

	// Source retrieves the two backend entry collections, already scoped to
	// the querying viewer. The int result is the server-reported total for
	// the window, or -1 when the source does not count.
	Source interface {
		FetchSessions(ctx context.Context, q Query) ([]Record, int, error)
		FetchExams(ctx context.Context, q Query) ([]Record, int, error)
	}
)

// adapter normalizes Source payloads into entries. It never lets a backend
// failure escape as anything but a typed *FetchError, and it never fails a
// whole batch for one bad record.
type adapter struct {
	src    Source
	logger core.Logger
}

func (a adapter) fetchSessions(ctx context.Context, q Query) ([]Entry, int, error) {
	recs, total, err := a.src.FetchSessions(ctx, q)
	if err != nil {
		if errors.Cause(err) == ErrInvalidFilter {
			return nil, 0, err
		}
		return nil, 0, &FetchError{Op: "sessions", Message: core.ErrorMessage(err)}
	}
	return a.normalizeBatch(recs, KindLiveSession), total, nil
}

func (a adapter) fetchExams(ctx context.Context, q Query) ([]Entry, int, error) {
	recs, total, err := a.src.FetchExams(ctx, q)
	if err != nil {
		if errors.Cause(err) == ErrInvalidFilter {
			return nil, 0, err
		}
		return nil, 0, &FetchError{Op: "exams", Message: core.ErrorMessage(err)}
	}
	return a.normalizeBatch(recs, KindExam), total, nil
}

func (a adapter) normalizeBatch(recs []Record, kind EntryKind) []Entry {
	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		entry, err := normalizeRecord(rec, kind)
		if err != nil {
			// one malformed record must not fail the batch
			a.logger.Warn("agenda: dropping malformed record", err, map[string]interface{}{
				"id": rec.ID, "kind": string(kind),
			})
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

func normalizeRecord(rec Record, kind EntryKind) (Entry, error) {
	if rec.ID == "" {
		return Entry{}, errors.New("missing id")
	}
	if rec.Title == "" {
		return Entry{}, errors.New("missing title")
	}
	scheduledAt, err := time.Parse(time.RFC3339, rec.ScheduledAt)
	if err != nil {
		return Entry{}, errors.Wrap(err, "parsing scheduled_at")
	}

	entry := Entry{
		ID:              rec.ID,
		Kind:            kind,
		Title:           rec.Title,
		ContextName:     rec.ContextName,
		ScheduledAt:     scheduledAt.UTC(),
		DurationMinutes: rec.DurationMinutes,
		OwnerName:       rec.OwnerName,
		OwnerAvatarURL:  rec.OwnerAvatarURL,
	}

	switch kind {
	case KindLiveSession:
		status := SessionStatus(rec.Status)
		if !status.Valid() {
			return Entry{}, errors.Errorf("unknown session status %q", rec.Status)
		}
		entry.SessionStatus = status
		entry.IsReminded = rec.IsReminded
	case KindExam:
		status := ExamStatus(rec.Status)
		if !status.Valid() {
			return Entry{}, errors.Errorf("unknown exam status %q", rec.Status)
		}
		entry.ExamStatus = status
		entry.FormID = rec.FormID
		if rec.OpensAt != "" {
			w, err := parseAccessWindow(rec.OpensAt, rec.ClosesAt)
			if err != nil {
				return Entry{}, err
			}
			entry.AccessWindow = w
		}
	default:
		return Entry{}, errors.Errorf("unknown entry kind %q", kind)
	}
	return entry, nil
}

func parseAccessWindow(opensAt, closesAt string) (*AccessWindow, error) {
	opens, err := time.Parse(time.RFC3339, opensAt)
	if err != nil {
		return nil, errors.Wrap(err, "parsing opens_at")
	}
	w := &AccessWindow{OpensAt: opens.UTC()}
	if closesAt != "" {
		closes, err := time.Parse(time.RFC3339, closesAt)
		if err != nil {
			return nil, errors.Wrap(err, "parsing closes_at")
		}
		w.ClosesAt = closes.UTC()
	}
	return w, nil
}
