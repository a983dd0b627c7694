// Package audit captures key engine actions for operational visibility.
//
// Events are emitted from domain logic, buffered through a channel, and
// persisted or published by a background worker. Keep the event transport-
// agnostic so stores and sinks can fan out.
package audit

import (
	"context"
	"time"

	id "tagdex/pkg/domain"
)

// Event is emitted from engine operations after their batch commits.
type Event struct {
	Timestamp time.Time
	OwnerID   id.OwnerID
	Action    string
	// Subject is the id of the primary entity acted on.
	Subject string
	// RequestID correlates the event with the HTTP request that caused it.
	RequestID string
}

// Engine actions.
const (
	ActionTagCreated        = "tag_created"
	ActionTagRenamed        = "tag_renamed"
	ActionTagUpdated        = "tag_updated"
	ActionTagDeleted        = "tag_deleted"
	ActionTagAssigned       = "tag_assigned"
	ActionTagUnassigned     = "tag_unassigned"
	ActionContactCreated    = "contact_created"
	ActionContactDeleted    = "contact_deleted"
	ActionGroupCreated      = "group_created"
	ActionGroupUpdated      = "group_updated"
	ActionGroupDeleted      = "group_deleted"
	ActionGroupMemberAdded  = "group_member_added"
	ActionGroupMemberRemove = "group_member_removed"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher delivers audit events to a sink. Emit must not block domain
// operations on sink latency.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
}
