package timeline

import (
	"context"

	"github.com/prajyots60/myskill-agenda/core"
)

// ExportProvider identifies an external calendar tool.
type ExportProvider string

const (
	ProviderGoogle  ExportProvider = "google"
	ProviderOutlook ExportProvider = "outlook"
	ProviderICal    ExportProvider = "ical"
)

func (p ExportProvider) Valid() bool {
	switch p {
	case ProviderGoogle, ProviderOutlook, ProviderICal:
		return true
	}
	return false
}

type (
	// ReminderService persists the per-entry reminder opt-in.
	ReminderService interface {
		SetReminder(ctx context.Context, viewer Viewer, entryID string, enabled bool) error
	}

	// ExportService builds a provider-specific link for one entry.
	ExportService interface {
		Link(ctx context.Context, entry Entry, provider ExportProvider) (string, error)
	}

	// Coordinator manages reminder toggling and calendar-export links.
	// Both operations are local to one entry; their failures never disturb
	// the rest of the agenda.
	Coordinator struct {
		engine    *Engine
		reminders ReminderService
		exports   ExportService
	}
)

func NewCoordinator(engine *Engine, reminders ReminderService, exports ExportService) *Coordinator {
	return &Coordinator{engine: engine, reminders: reminders, exports: exports}
}

// ToggleReminder flips the entry's reminder flag, committing the in-memory
// state only after the backend acknowledges. Reminder state controls actual
// notification delivery, so consistency is worth the extra latency over an
// optimistic flip.
func (c *Coordinator) ToggleReminder(ctx context.Context, viewer Viewer, entryID string) (bool, error) {
	if viewer.Role != RoleStudent {
		return false, ErrReminderNotSupported
	}
	entry, ok := c.engine.get(entryID)
	if !ok {
		return false, ErrNotFound
	}
	if entry.Kind != KindLiveSession {
		return false, ErrReminderNotSupported
	}

	enabled := !entry.IsReminded
	if err := c.reminders.SetReminder(ctx, viewer, entryID, enabled); err != nil {
		return entry.IsReminded, &ReminderError{EntryID: entryID, Message: core.ErrorMessage(err)}
	}
	c.engine.applyReminded(entryID, enabled)
	return enabled, nil
}

// ExportLink returns the provider link for one entry. Read-only with respect
// to the entry set; a failure is reported and nothing changes.
func (c *Coordinator) ExportLink(ctx context.Context, entryID string, provider ExportProvider) (string, error) {
	if !provider.Valid() {
		return "", &ExportError{EntryID: entryID, Message: "unknown provider " + string(provider)}
	}
	entry, ok := c.engine.get(entryID)
	if !ok {
		return "", ErrNotFound
	}

	link, err := c.exports.Link(ctx, entry, provider)
	if err != nil {
		return "", &ExportError{EntryID: entryID, Message: core.ErrorMessage(err)}
	}
	return link, nil
}
