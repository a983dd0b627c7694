package worker

import (
	"context"
	"log/slog"

	audit "tagdex/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. It keeps
// background processing testable without wiring queue implementations into
// the engine.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run consumes until ctx is done. A failed append loses that event and is
// logged; the audit trail degrades before user-serving operations do, so a
// flaky sink must never stop consumption or take the process down.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				if w.logger != nil {
					w.logger.ErrorContext(ctx, "failed to append audit event",
						"error", err, "action", event.Action, "owner_id", event.OwnerID.String())
				}
			}
		}
	}
}
