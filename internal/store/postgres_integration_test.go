//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"tagdex/internal/models"
	"tagdex/internal/store"
	id "tagdex/pkg/domain"
	"tagdex/pkg/platform/sentinel"
	"tagdex/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
	ctx      context.Context
	owner    id.OwnerID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(s.ctx, "contacts", "tags", "groups"))
	s.owner = id.OwnerID(uuid.New())
}

func (s *PostgresStoreSuite) newTag(name string) *models.Tag {
	tag, err := models.NewTag(id.NewTagID(), s.owner, name, "#abcdef", time.Now().UTC())
	s.Require().NoError(err)
	return tag
}

func (s *PostgresStoreSuite) newContact(name string) *models.Contact {
	c, err := models.NewContact(id.NewContactID(), s.owner, name, time.Now().UTC())
	s.Require().NoError(err)
	return c
}

func (s *PostgresStoreSuite) newGroup(name string, groupType models.GroupType, tagIDs []id.TagID) *models.Group {
	g, err := models.NewGroup(id.NewGroupID(), s.owner, name, groupType, tagIDs, time.Now().UTC())
	s.Require().NoError(err)
	return g
}

func (s *PostgresStoreSuite) apply(fn func(b *store.WriteBatch)) {
	batch := store.NewWriteBatch()
	fn(batch)
	s.Require().NoError(s.store.ApplyBatch(s.ctx, s.owner, batch))
}

// TestRoundTrips verifies entities survive the uuid[] column mapping intact.
func (s *PostgresStoreSuite) TestRoundTrips() {
	tag := s.newTag("vip")
	contact := s.newContact("Ada")
	contact.AddTag(tag.ID, time.Now().UTC())
	group := s.newGroup("VIPs", models.GroupTypeAuto, []id.TagID{tag.ID})
	group.AddMember(contact.ID, time.Now().UTC())
	contact.LinkGroup(group.ID)

	s.apply(func(b *store.WriteBatch) {
		b.PutTag(tag)
		b.PutContact(contact)
		b.PutGroup(group)
	})

	gotTag, err := s.store.GetTag(s.ctx, s.owner, tag.ID)
	s.Require().NoError(err)
	s.Equal("vip", gotTag.Name)
	s.Equal("#abcdef", gotTag.Color)

	gotContact, err := s.store.GetContact(s.ctx, s.owner, contact.ID)
	s.Require().NoError(err)
	s.Equal([]id.TagID{tag.ID}, gotContact.TagIDs)
	s.Equal([]id.GroupID{group.ID}, gotContact.GroupIDs)

	gotGroup, err := s.store.GetGroup(s.ctx, s.owner, group.ID)
	s.Require().NoError(err)
	s.Equal(models.GroupTypeAuto, gotGroup.Type)
	s.Equal([]id.TagID{tag.ID}, gotGroup.TagIDs)
	s.Equal([]id.ContactID{contact.ID}, gotGroup.MemberIDs)
}

// TestNotFound verifies sentinel translation for missing rows.
func (s *PostgresStoreSuite) TestNotFound() {
	_, err := s.store.GetTag(s.ctx, s.owner, id.NewTagID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.GetContact(s.ctx, s.owner, id.NewContactID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.GetGroup(s.ctx, s.owner, id.NewGroupID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindTagByName(s.ctx, s.owner, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestOwnerIsolation verifies rows never leak across owner scopes.
func (s *PostgresStoreSuite) TestOwnerIsolation() {
	tag := s.newTag("mine")
	s.apply(func(b *store.WriteBatch) { b.PutTag(tag) })

	_, err := s.store.GetTag(s.ctx, id.OwnerID(uuid.New()), tag.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	tags, err := s.store.ListTags(s.ctx, id.OwnerID(uuid.New()))
	s.Require().NoError(err)
	s.Empty(tags)
}

// TestNameUniqueness verifies the unique constraint surfaces as ErrAlreadyUsed
// and that a rejected batch rolls back completely.
func (s *PostgresStoreSuite) TestNameUniqueness() {
	existing := s.newTag("vip")
	s.apply(func(b *store.WriteBatch) { b.PutTag(existing) })

	dup := s.newTag("vip")
	bystander := s.newContact("Ada")
	batch := store.NewWriteBatch()
	batch.PutContact(bystander)
	batch.PutTag(dup)

	err := s.store.ApplyBatch(s.ctx, s.owner, batch)
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)

	_, err = s.store.GetContact(s.ctx, s.owner, bystander.ID)
	s.ErrorIs(err, sentinel.ErrNotFound, "the transaction must roll back entirely")

	// Case differs, so no conflict.
	upper := s.newTag("VIP")
	s.apply(func(b *store.WriteBatch) { b.PutTag(upper) })
}

// TestUpsert verifies re-putting an entity updates it in place.
func (s *PostgresStoreSuite) TestUpsert() {
	tag := s.newTag("recolor")
	s.apply(func(b *store.WriteBatch) { b.PutTag(tag) })

	tag.Color = "#00ff00"
	s.apply(func(b *store.WriteBatch) { b.PutTag(tag) })

	got, err := s.store.GetTag(s.ctx, s.owner, tag.ID)
	s.Require().NoError(err)
	s.Equal("#00ff00", got.Color)
}

// TestReferencingTag verifies the array-containment reverse lookup.
func (s *PostgresStoreSuite) TestReferencingTag() {
	tagA := s.newTag("a")
	tagB := s.newTag("b")
	groupA := s.newGroup("A", models.GroupTypeAuto, []id.TagID{tagA.ID})
	groupAB := s.newGroup("AB", models.GroupTypeSmart, []id.TagID{tagA.ID, tagB.ID})
	groupB := s.newGroup("B", models.GroupTypeAuto, []id.TagID{tagB.ID})

	s.apply(func(b *store.WriteBatch) {
		b.PutTag(tagA)
		b.PutTag(tagB)
		b.PutGroup(groupA)
		b.PutGroup(groupAB)
		b.PutGroup(groupB)
	})

	groups, err := s.store.ListGroupsReferencingTag(s.ctx, s.owner, tagA.ID)
	s.Require().NoError(err)
	s.Len(groups, 2)

	ids := map[id.GroupID]bool{}
	for _, g := range groups {
		ids[g.ID] = true
	}
	s.True(ids[groupA.ID])
	s.True(ids[groupAB.ID])
}

// TestDeletes verifies puts and deletes commit together.
func (s *PostgresStoreSuite) TestDeletes() {
	tag := s.newTag("doomed")
	contact := s.newContact("Bob")
	s.apply(func(b *store.WriteBatch) {
		b.PutTag(tag)
		b.PutContact(contact)
	})

	contact.Name = "Robert"
	s.apply(func(b *store.WriteBatch) {
		b.PutContact(contact)
		b.DeleteTag(tag.ID)
	})

	_, err := s.store.GetTag(s.ctx, s.owner, tag.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	got, err := s.store.GetContact(s.ctx, s.owner, contact.ID)
	s.Require().NoError(err)
	s.Equal("Robert", got.Name)
}
