package models

import (
	"strings"
	"time"

	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

// Tag is a free-form label an owner attaches to contacts.
//
// Invariants:
//   - Name is non-empty and at most 64 characters
//   - Name is unique within an owner scope, case-sensitively (enforced by the store)
//   - OwnerID is immutable after construction
type Tag struct {
	ID          id.TagID   `json:"id"`
	OwnerID     id.OwnerID `json:"owner_id"`
	Name        string     `json:"name"`
	Color       string     `json:"color,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTag constructs a tag, validating its invariants.
func NewTag(tagID id.TagID, owner id.OwnerID, name, color string, now time.Time) (*Tag, error) {
	if err := validateTagName(name); err != nil {
		return nil, err
	}
	return &Tag{
		ID:        tagID,
		OwnerID:   owner,
		Name:      name,
		Color:     color,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Rename replaces the tag name. Uniqueness against sibling tags is the
// caller's responsibility; only the local invariants are checked here.
func (t *Tag) Rename(name string, now time.Time) error {
	if err := validateTagName(name); err != nil {
		return err
	}
	t.Name = name
	t.UpdatedAt = now
	return nil
}

// Clone returns a copy so engine operations can stage mutations without
// aliasing store-held state.
func (t *Tag) Clone() *Tag {
	cp := *t
	return &cp
}

func validateTagName(name string) error {
	if strings.TrimSpace(name) == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "tag name cannot be empty")
	}
	if len(name) > 64 {
		return dErrors.New(dErrors.CodeInvariantViolation, "tag name must be 64 characters or less")
	}
	return nil
}
