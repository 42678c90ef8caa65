package timeline

import (
	"context"

	"github.com/pkg/errors"

	"github.com/prajyots60/myskill-agenda/core"
)

type (
	// StatusChange is one out-of-band session status transition.
	StatusChange struct {
		EntryID string        `json:"entry_id"`
		Status  SessionStatus `json:"status"`
	}

	// PushChannel delivers status changes asynchronously. Duplicate delivery
	// of the same transition must be tolerated by consumers.
	PushChannel interface {
		Subscribe(ctx context.Context) (<-chan StatusChange, error)
	}

	// Notifier surfaces the one-time "session is live" notice.
	Notifier interface {
		SessionLive(entry Entry)
	}

	// StatusSynchronizer applies push updates to the engine's held set
	// without refetching. It never invents or removes entries; it only
	// mutates the status field through the engine's documented entry point.
	StatusSynchronizer struct {
		engine   *Engine
		channel  PushChannel
		notifier Notifier
		logger   core.Logger
	}
)

// NewStatusSynchronizer wires the synchronizer to an explicit push channel
// handle; there is no ambient/global socket lookup.
func NewStatusSynchronizer(engine *Engine, channel PushChannel, notifier Notifier, logger core.Logger) *StatusSynchronizer {
	return &StatusSynchronizer{
		engine:   engine,
		channel:  channel,
		notifier: notifier,
		logger:   logger,
	}
}

// Run consumes the push channel until ctx is cancelled or the channel closes.
func (s *StatusSynchronizer) Run(ctx context.Context) error {
	msgs, err := s.channel.Subscribe(ctx)
	if err != nil {
		return errors.Wrap(err, "subscribing to push channel")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				s.logger.Info("agenda: push channel closed")
				return nil
			}
			s.Apply(msg)
		}
	}
}

// Apply reconciles one status change into the current entry set. Unknown ids
// are a no-op (the entry will appear on the next full load if still
// relevant); re-delivery of an already-applied transition changes nothing
// and emits no second notification.
func (s *StatusSynchronizer) Apply(msg StatusChange) {
	entry, changed := s.engine.ApplyStatus(msg.EntryID, msg.Status)
	if !changed {
		return
	}
	if msg.Status == SessionLive && s.notifier != nil {
		s.notifier.SessionLive(entry)
	}
}
