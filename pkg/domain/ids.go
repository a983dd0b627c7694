// Package domain defines the typed identifiers shared across the engine.
//
// IDs are distinct types over uuid.UUID so that an owner id can never be
// passed where a contact id is expected. Parse functions enforce the
// invariant that ids are valid, non-nil UUIDs at trust boundaries.
package domain

import (
	"github.com/google/uuid"

	dErrors "tagdex/pkg/domain-errors"
)

type (
	// OwnerID identifies the user whose data partition an operation acts on.
	OwnerID uuid.UUID
	// ContactID identifies a contact within an owner scope.
	ContactID uuid.UUID
	// TagID identifies a tag within an owner scope.
	TagID uuid.UUID
	// GroupID identifies a group within an owner scope.
	GroupID uuid.UUID
)

func (id OwnerID) String() string   { return uuid.UUID(id).String() }
func (id ContactID) String() string { return uuid.UUID(id).String() }
func (id TagID) String() string     { return uuid.UUID(id).String() }
func (id GroupID) String() string   { return uuid.UUID(id).String() }

func (id OwnerID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id ContactID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id TagID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id GroupID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// The defined types do not inherit uuid.UUID's methods, so each implements
// encoding.TextMarshaler explicitly to serialize as the canonical string form.

func (id OwnerID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id ContactID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id TagID) MarshalText() ([]byte, error)     { return []byte(id.String()), nil }
func (id GroupID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }

func (id *OwnerID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = OwnerID(u)
	return nil
}

func (id *ContactID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = ContactID(u)
	return nil
}

func (id *TagID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = TagID(u)
	return nil
}

func (id *GroupID) UnmarshalText(b []byte) error {
	u, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*id = GroupID(u)
	return nil
}

// NewContactID returns a fresh random contact id.
func NewContactID() ContactID { return ContactID(uuid.New()) }

// NewTagID returns a fresh random tag id.
func NewTagID() TagID { return TagID(uuid.New()) }

// NewGroupID returns a fresh random group id.
func NewGroupID() GroupID { return GroupID(uuid.New()) }

// ParseOwnerID parses and validates an owner id from its string form.
func ParseOwnerID(s string) (OwnerID, error) {
	u, err := parseUUID(s, "owner id")
	return OwnerID(u), err
}

// ParseContactID parses and validates a contact id from its string form.
func ParseContactID(s string) (ContactID, error) {
	u, err := parseUUID(s, "contact id")
	return ContactID(u), err
}

// ParseTagID parses and validates a tag id from its string form.
func ParseTagID(s string) (TagID, error) {
	u, err := parseUUID(s, "tag id")
	return TagID(u), err
}

// ParseGroupID parses and validates a group id from its string form.
func ParseGroupID(s string) (GroupID, error) {
	u, err := parseUUID(s, "group id")
	return GroupID(u), err
}

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" is not a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" must not be the nil UUID")
	}
	return u, nil
}
