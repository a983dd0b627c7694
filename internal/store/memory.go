package store

import (
	"context"
	"sync"

	"tagdex/internal/models"
	id "tagdex/pkg/domain"
	"tagdex/pkg/platform/sentinel"
)

// InMemory keeps all entities in per-owner maps. It favors clarity over
// performance and backs unit tests and single-process deployments.
//
// Reads hand out deep copies so callers can stage mutations without touching
// store state until ApplyBatch commits them.
type InMemory struct {
	mu     sync.RWMutex
	owners map[id.OwnerID]*ownerData
}

type ownerData struct {
	contacts map[id.ContactID]*models.Contact
	tags     map[id.TagID]*models.Tag
	groups   map[id.GroupID]*models.Group
}

// NewInMemory constructs an empty in-memory store.
func NewInMemory() *InMemory {
	return &InMemory{owners: make(map[id.OwnerID]*ownerData)}
}

func (s *InMemory) scope(owner id.OwnerID) *ownerData {
	data, ok := s.owners[owner]
	if !ok {
		data = &ownerData{
			contacts: make(map[id.ContactID]*models.Contact),
			tags:     make(map[id.TagID]*models.Tag),
			groups:   make(map[id.GroupID]*models.Group),
		}
		s.owners[owner] = data
	}
	return data
}

func (s *InMemory) GetContact(_ context.Context, owner id.OwnerID, contactID id.ContactID) (*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.owners[owner]; ok {
		if c, ok := data.contacts[contactID]; ok {
			return c.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) GetTag(_ context.Context, owner id.OwnerID, tagID id.TagID) (*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.owners[owner]; ok {
		if t, ok := data.tags[tagID]; ok {
			return t.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) GetGroup(_ context.Context, owner id.OwnerID, groupID id.GroupID) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.owners[owner]; ok {
		if g, ok := data.groups[groupID]; ok {
			return g.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) ListContacts(_ context.Context, owner id.OwnerID) ([]*models.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.owners[owner]
	if !ok {
		return nil, nil
	}
	out := make([]*models.Contact, 0, len(data.contacts))
	for _, c := range data.contacts {
		out = append(out, c.Clone())
	}
	return out, nil
}

func (s *InMemory) ListTags(_ context.Context, owner id.OwnerID) ([]*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.owners[owner]
	if !ok {
		return nil, nil
	}
	out := make([]*models.Tag, 0, len(data.tags))
	for _, t := range data.tags {
		out = append(out, t.Clone())
	}
	return out, nil
}

func (s *InMemory) ListGroups(_ context.Context, owner id.OwnerID) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.owners[owner]
	if !ok {
		return nil, nil
	}
	out := make([]*models.Group, 0, len(data.groups))
	for _, g := range data.groups {
		out = append(out, g.Clone())
	}
	return out, nil
}

func (s *InMemory) ListGroupsReferencingTag(_ context.Context, owner id.OwnerID, tagID id.TagID) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.owners[owner]
	if !ok {
		return nil, nil
	}
	var out []*models.Group
	for _, g := range data.groups {
		if g.HasDefiningTag(tagID) {
			out = append(out, g.Clone())
		}
	}
	return out, nil
}

func (s *InMemory) FindTagByName(_ context.Context, owner id.OwnerID, name string) (*models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.owners[owner]; ok {
		for _, t := range data.tags {
			if t.Name == name {
				return t.Clone(), nil
			}
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) FindGroupByName(_ context.Context, owner id.OwnerID, name string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if data, ok := s.owners[owner]; ok {
		for _, g := range data.groups {
			if g.Name == name {
				return g.Clone(), nil
			}
		}
	}
	return nil, sentinel.ErrNotFound
}

// ApplyBatch validates the whole batch first and only then mutates, so a
// rejected batch leaves no partial state behind.
func (s *InMemory) ApplyBatch(_ context.Context, owner id.OwnerID, batch *WriteBatch) error {
	if batch == nil || batch.Empty() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data := s.scope(owner)

	// Name uniqueness across the post-batch state.
	for _, t := range batch.Tags() {
		for _, existing := range data.tags {
			if existing.ID != t.ID && existing.Name == t.Name {
				return sentinel.ErrAlreadyUsed
			}
		}
	}
	for _, g := range batch.Groups() {
		for _, existing := range data.groups {
			if existing.ID != g.ID && existing.Name == g.Name {
				return sentinel.ErrAlreadyUsed
			}
		}
	}

	for _, c := range batch.Contacts() {
		data.contacts[c.ID] = c.Clone()
	}
	for _, t := range batch.Tags() {
		data.tags[t.ID] = t.Clone()
	}
	for _, g := range batch.Groups() {
		data.groups[g.ID] = g.Clone()
	}
	for _, contactID := range batch.ContactDeletes() {
		delete(data.contacts, contactID)
	}
	for _, tagID := range batch.TagDeletes() {
		delete(data.tags, tagID)
	}
	for _, groupID := range batch.GroupDeletes() {
		delete(data.groups, groupID)
	}
	return nil
}
