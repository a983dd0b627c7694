package audit

import (
	"context"
	"log/slog"
)

// ChannelPublisher hands events to a buffered channel consumed by a Worker.
// A full buffer drops the event with a warning rather than blocking the
// engine: audit visibility degrades before user operations do.
type ChannelPublisher struct {
	inbox  chan<- Event
	logger *slog.Logger
}

// NewChannelPublisher wraps an inbox channel as a Publisher.
func NewChannelPublisher(inbox chan<- Event, logger *slog.Logger) *ChannelPublisher {
	return &ChannelPublisher{inbox: inbox, logger: logger}
}

func (p *ChannelPublisher) Emit(ctx context.Context, event Event) error {
	select {
	case p.inbox <- event:
		return nil
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit inbox full, dropping event",
				"action", event.Action, "owner_id", event.OwnerID.String())
		}
		return nil
	}
}
