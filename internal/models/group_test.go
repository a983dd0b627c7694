package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
)

func TestNewGroup(t *testing.T) {
	owner := id.OwnerID(uuid.New())
	now := time.Now()

	t.Run("creates a derived group with deduped defining tags", func(t *testing.T) {
		tagA, tagB := id.NewTagID(), id.NewTagID()
		g, err := NewGroup(id.NewGroupID(), owner, "Friends", GroupTypeAuto, []id.TagID{tagA, tagB, tagA}, now)
		require.NoError(t, err)
		assert.Len(t, g.TagIDs, 2)
		assert.True(t, g.IsDerived())
		assert.Empty(t, g.MemberIDs)
	})

	t.Run("rejects defining tags on a manual group", func(t *testing.T) {
		_, err := NewGroup(id.NewGroupID(), owner, "Friends", GroupTypeManual, []id.TagID{id.NewTagID()}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("rejects an unknown type", func(t *testing.T) {
		_, err := NewGroup(id.NewGroupID(), owner, "Friends", GroupType("magical"), nil, now)
		require.Error(t, err)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		_, err := NewGroup(id.NewGroupID(), owner, "   ", GroupTypeManual, nil, now)
		require.Error(t, err)
	})
}

func TestGroupTypeDerived(t *testing.T) {
	assert.False(t, GroupTypeManual.Derived())
	assert.True(t, GroupTypeAuto.Derived())
	assert.True(t, GroupTypeSmart.Derived())
}

func TestQualifies(t *testing.T) {
	owner := id.OwnerID(uuid.New())
	now := time.Now()
	tagA, tagB, tagC := id.NewTagID(), id.NewTagID(), id.NewTagID()

	derived, err := NewGroup(id.NewGroupID(), owner, "Derived", GroupTypeSmart, []id.TagID{tagA, tagB}, now)
	require.NoError(t, err)

	t.Run("matches on any shared tag", func(t *testing.T) {
		assert.True(t, derived.Qualifies([]id.TagID{tagB}))
		assert.True(t, derived.Qualifies([]id.TagID{tagC, tagA}))
	})

	t.Run("does not match without overlap", func(t *testing.T) {
		assert.False(t, derived.Qualifies([]id.TagID{tagC}))
		assert.False(t, derived.Qualifies(nil))
	})

	t.Run("empty defining set matches nothing", func(t *testing.T) {
		empty, err := NewGroup(id.NewGroupID(), owner, "Empty", GroupTypeAuto, nil, now)
		require.NoError(t, err)
		assert.False(t, empty.Qualifies([]id.TagID{tagA}))
	})

	t.Run("manual groups never qualify", func(t *testing.T) {
		manual, err := NewGroup(id.NewGroupID(), owner, "Manual", GroupTypeManual, nil, now)
		require.NoError(t, err)
		assert.False(t, manual.Qualifies([]id.TagID{tagA}))
	})
}

func TestDefiningTagEdits(t *testing.T) {
	owner := id.OwnerID(uuid.New())
	now := time.Now()
	tagA, tagB := id.NewTagID(), id.NewTagID()

	t.Run("replace is rejected on manual groups", func(t *testing.T) {
		manual, err := NewGroup(id.NewGroupID(), owner, "Manual", GroupTypeManual, nil, now)
		require.NoError(t, err)
		err = manual.ReplaceDefiningTags([]id.TagID{tagA}, now)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("remove reports whether the tag was present", func(t *testing.T) {
		g, err := NewGroup(id.NewGroupID(), owner, "Derived", GroupTypeAuto, []id.TagID{tagA, tagB}, now)
		require.NoError(t, err)

		assert.True(t, g.RemoveDefiningTag(tagA, now))
		assert.False(t, g.RemoveDefiningTag(tagA, now))
		assert.Equal(t, []id.TagID{tagB}, g.TagIDs)
	})
}

func TestMemberEdits(t *testing.T) {
	owner := id.OwnerID(uuid.New())
	now := time.Now()

	g, err := NewGroup(id.NewGroupID(), owner, "Manual", GroupTypeManual, nil, now)
	require.NoError(t, err)

	contact := id.NewContactID()
	assert.True(t, g.AddMember(contact, now))
	assert.False(t, g.AddMember(contact, now), "adding twice is a no-op")
	assert.True(t, g.HasMember(contact))

	assert.True(t, g.RemoveMember(contact, now))
	assert.False(t, g.RemoveMember(contact, now), "removing twice is a no-op")
	assert.False(t, g.HasMember(contact))
}

func TestGroupClone(t *testing.T) {
	owner := id.OwnerID(uuid.New())
	now := time.Now()
	tagA := id.NewTagID()

	g, err := NewGroup(id.NewGroupID(), owner, "Derived", GroupTypeAuto, []id.TagID{tagA}, now)
	require.NoError(t, err)
	g.AddMember(id.NewContactID(), now)

	cp := g.Clone()
	cp.TagIDs[0] = id.NewTagID()
	cp.MemberIDs[0] = id.NewContactID()

	assert.Equal(t, tagA, g.TagIDs[0], "clone must not alias the original's slices")
	assert.NotEqual(t, cp.MemberIDs[0], g.MemberIDs[0])
}
