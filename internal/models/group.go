package models

import (
	"strings"
	"time"

	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

// GroupType distinguishes how a group's membership is authored.
//
// Manual groups hold an explicit, user-controlled member set. Auto and smart
// groups are both derived: membership is materialized from which contacts
// currently carry any of the group's defining tags. The auto/smart split is
// cosmetic for callers; the engine treats them identically.
type GroupType string

const (
	GroupTypeManual GroupType = "manual"
	GroupTypeAuto   GroupType = "auto"
	GroupTypeSmart  GroupType = "smart"
)

// Valid reports whether the type is one of the known kinds.
func (t GroupType) Valid() bool {
	switch t {
	case GroupTypeManual, GroupTypeAuto, GroupTypeSmart:
		return true
	}
	return false
}

// Derived reports whether membership is materialized from defining tags.
func (t GroupType) Derived() bool {
	return t == GroupTypeAuto || t == GroupTypeSmart
}

// Group is a named collection of contacts.
//
// Invariants:
//   - Name is non-empty and at most 64 characters, unique per owner
//   - For derived groups, MemberIDs equals exactly the set of the owner's
//     contacts sharing at least one tag with TagIDs; an empty TagIDs set
//     yields strictly empty membership, never "all contacts"
//   - For manual groups, TagIDs is inert: it must never be read to alter
//     membership, and MemberIDs changes only through explicit member
//     operations
//   - MemberIDs mirrors Contact.GroupIDs (symmetry kept by the engine)
type Group struct {
	ID        id.GroupID     `json:"id"`
	OwnerID   id.OwnerID     `json:"owner_id"`
	Name      string         `json:"name"`
	Type      GroupType      `json:"type"`
	TagIDs    []id.TagID     `json:"tag_ids"`
	MemberIDs []id.ContactID `json:"member_ids"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewGroup constructs a group, validating its invariants. Defining tags are
// only accepted for derived types; a manual group starts with none.
func NewGroup(groupID id.GroupID, owner id.OwnerID, name string, groupType GroupType, tagIDs []id.TagID, now time.Time) (*Group, error) {
	if err := validateGroupName(name); err != nil {
		return nil, err
	}
	if !groupType.Valid() {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "unknown group type %q", groupType)
	}
	if !groupType.Derived() && len(tagIDs) > 0 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "manual groups cannot carry defining tags")
	}
	return &Group{
		ID:        groupID,
		OwnerID:   owner,
		Name:      name,
		Type:      groupType,
		TagIDs:    dedupeTagIDs(tagIDs),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsDerived reports whether the group's membership is tag-derived.
func (g *Group) IsDerived() bool { return g.Type.Derived() }

// Rename replaces the group name. Uniqueness is the caller's responsibility.
func (g *Group) Rename(name string, now time.Time) error {
	if err := validateGroupName(name); err != nil {
		return err
	}
	g.Name = name
	g.UpdatedAt = now
	return nil
}

// HasDefiningTag reports whether tagID is part of the defining set.
func (g *Group) HasDefiningTag(tagID id.TagID) bool {
	for _, t := range g.TagIDs {
		if t == tagID {
			return true
		}
	}
	return false
}

// ReplaceDefiningTags swaps the defining set wholesale. Only valid on derived
// groups; the caller must follow up with a full recomputation.
func (g *Group) ReplaceDefiningTags(tagIDs []id.TagID, now time.Time) error {
	if !g.IsDerived() {
		return dErrors.New(dErrors.CodeInvariantViolation, "manual groups cannot carry defining tags")
	}
	g.TagIDs = dedupeTagIDs(tagIDs)
	g.UpdatedAt = now
	return nil
}

// RemoveDefiningTag drops tagID from the defining set. Returns false when the
// tag was not part of it.
func (g *Group) RemoveDefiningTag(tagID id.TagID, now time.Time) bool {
	for i, t := range g.TagIDs {
		if t == tagID {
			g.TagIDs = append(g.TagIDs[:i], g.TagIDs[i+1:]...)
			g.UpdatedAt = now
			return true
		}
	}
	return false
}

// Qualifies reports whether a contact with the given tag set belongs in this
// derived group: at least one tag shared with the defining set. Always false
// for manual groups and for an empty defining set.
func (g *Group) Qualifies(tagIDs []id.TagID) bool {
	if !g.IsDerived() || len(g.TagIDs) == 0 {
		return false
	}
	for _, t := range tagIDs {
		if g.HasDefiningTag(t) {
			return true
		}
	}
	return false
}

// HasMember reports whether the contact is in the member set.
func (g *Group) HasMember(contactID id.ContactID) bool {
	for _, m := range g.MemberIDs {
		if m == contactID {
			return true
		}
	}
	return false
}

// AddMember appends the contact if absent. Returns false when already present.
func (g *Group) AddMember(contactID id.ContactID, now time.Time) bool {
	if g.HasMember(contactID) {
		return false
	}
	g.MemberIDs = append(g.MemberIDs, contactID)
	g.UpdatedAt = now
	return true
}

// RemoveMember drops the contact if present. Returns false when absent.
func (g *Group) RemoveMember(contactID id.ContactID, now time.Time) bool {
	for i, m := range g.MemberIDs {
		if m == contactID {
			g.MemberIDs = append(g.MemberIDs[:i], g.MemberIDs[i+1:]...)
			g.UpdatedAt = now
			return true
		}
	}
	return false
}

// Clone returns a deep copy so engine operations can stage mutations without
// aliasing store-held state.
func (g *Group) Clone() *Group {
	cp := *g
	cp.TagIDs = append([]id.TagID(nil), g.TagIDs...)
	cp.MemberIDs = append([]id.ContactID(nil), g.MemberIDs...)
	return &cp
}

func validateGroupName(name string) error {
	if strings.TrimSpace(name) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "group name cannot be empty")
	}
	if len(name) > 64 {
		return dErrors.New(dErrors.CodeInvariantViolation, "group name must be 64 characters or less")
	}
	return nil
}

func dedupeTagIDs(tagIDs []id.TagID) []id.TagID {
	if len(tagIDs) == 0 {
		return nil
	}
	seen := make(map[id.TagID]struct{}, len(tagIDs))
	out := make([]id.TagID, 0, len(tagIDs))
	for _, t := range tagIDs {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
