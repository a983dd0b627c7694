package models

import (
	"strings"
	"time"

	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

// Contact is a person record the owner organizes with tags.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - TagIDs holds no duplicates; order carries no meaning
//   - GroupIDs mirrors group membership: G appears here iff this contact
//     appears in G.MemberIDs (kept by the engine, never edited directly)
type Contact struct {
	ID        id.ContactID `json:"id"`
	OwnerID   id.OwnerID   `json:"owner_id"`
	Name      string       `json:"name"`
	TagIDs    []id.TagID   `json:"tag_ids"`
	GroupIDs  []id.GroupID `json:"group_ids"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewContact constructs a contact, validating its invariants.
func NewContact(contactID id.ContactID, owner id.OwnerID, name string, now time.Time) (*Contact, error) {
	if strings.TrimSpace(name) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "contact name must be 128 characters or less")
	}
	return &Contact{
		ID:        contactID,
		OwnerID:   owner,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// HasTag reports whether the contact carries the tag.
func (c *Contact) HasTag(tagID id.TagID) bool {
	for _, t := range c.TagIDs {
		if t == tagID {
			return true
		}
	}
	return false
}

// AddTag appends the tag if absent. Returns false when it was already present,
// letting callers treat repeat assignment as a no-op.
func (c *Contact) AddTag(tagID id.TagID, now time.Time) bool {
	if c.HasTag(tagID) {
		return false
	}
	c.TagIDs = append(c.TagIDs, tagID)
	c.UpdatedAt = now
	return true
}

// RemoveTag drops the tag if present. Returns false when it was absent.
func (c *Contact) RemoveTag(tagID id.TagID, now time.Time) bool {
	for i, t := range c.TagIDs {
		if t == tagID {
			c.TagIDs = append(c.TagIDs[:i], c.TagIDs[i+1:]...)
			c.UpdatedAt = now
			return true
		}
	}
	return false
}

// InGroup reports whether the contact's back-pointer set references the group.
func (c *Contact) InGroup(groupID id.GroupID) bool {
	for _, g := range c.GroupIDs {
		if g == groupID {
			return true
		}
	}
	return false
}

// LinkGroup records membership in the contact's back-pointer set.
func (c *Contact) LinkGroup(groupID id.GroupID) bool {
	if c.InGroup(groupID) {
		return false
	}
	c.GroupIDs = append(c.GroupIDs, groupID)
	return true
}

// UnlinkGroup removes the group from the contact's back-pointer set.
func (c *Contact) UnlinkGroup(groupID id.GroupID) bool {
	for i, g := range c.GroupIDs {
		if g == groupID {
			c.GroupIDs = append(c.GroupIDs[:i], c.GroupIDs[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy so engine operations can stage mutations without
// aliasing store-held state.
func (c *Contact) Clone() *Contact {
	cp := *c
	cp.TagIDs = append([]id.TagID(nil), c.TagIDs...)
	cp.GroupIDs = append([]id.GroupID(nil), c.GroupIDs...)
	return &cp
}
