package invitation

import (
	"context"
	"sync"

	"github.com/ngjiaxun/platter/internal/domain"
)

// In-memory stand-ins for the persistence ports.

type memEntities struct {
	mu   sync.Mutex
	byID map[domain.EntityID]*domain.Entity
}

func newMemEntities() *memEntities {
	return &memEntities{byID: make(map[domain.EntityID]*domain.Entity)}
}

func (m *memEntities) Create(_ context.Context, e *domain.Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[e.ID] = e
	return nil
}

func (m *memEntities) Get(_ context.Context, id domain.EntityID) (*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[id], nil
}

func (m *memEntities) ListByIDs(_ context.Context, ids []domain.EntityID) ([]*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := m.byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntities) Children(_ context.Context, parent domain.EntityID) ([]*domain.Entity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Entity
	for _, e := range m.byID {
		if e.ParentID != nil && *e.ParentID == parent {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memEntities) ChildIDs(_ context.Context, parents []domain.EntityID) ([]domain.EntityID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	parentSet := make(map[domain.EntityID]struct{}, len(parents))
	for _, p := range parents {
		parentSet[p] = struct{}{}
	}
	var out []domain.EntityID
	for _, e := range m.byID {
		if e.ParentID == nil {
			continue
		}
		if _, ok := parentSet[*e.ParentID]; ok {
			out = append(out, e.ID)
		}
	}
	return out, nil
}

func (m *memEntities) DescendantIDs(ctx context.Context, root domain.EntityID) ([]domain.EntityID, error) {
	var out []domain.EntityID
	frontier := []domain.EntityID{root}
	for len(frontier) > 0 {
		next, err := m.ChildIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		out = append(out, next...)
		frontier = next
	}
	return out, nil
}

func (m *memEntities) UpdateContent(_ context.Context, id domain.EntityID, content domain.Content) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.byID[id]; ok {
		e.Content = content
	}
	return nil
}

func (m *memEntities) Delete(ctx context.Context, id domain.EntityID) error {
	descendants, _ := m.DescendantIDs(ctx, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	for _, d := range descendants {
		delete(m.byID, d)
	}
	return nil
}

type memGroups struct {
	mu       sync.Mutex
	entities *memEntities
	byID     map[domain.GroupID]*domain.AccessGroup
	byKey    map[string]domain.GroupID
	actions  map[domain.GroupID]map[domain.Action]struct{}
	members  map[domain.GroupID]map[domain.UserID]struct{}
}

func newMemGroups(entities *memEntities) *memGroups {
	return &memGroups{
		entities: entities,
		byID:     make(map[domain.GroupID]*domain.AccessGroup),
		byKey:    make(map[string]domain.GroupID),
		actions:  make(map[domain.GroupID]map[domain.Action]struct{}),
		members:  make(map[domain.GroupID]map[domain.UserID]struct{}),
	}
}

func groupKey(entityID domain.EntityID, role domain.RoleName) string {
	return entityID.String() + "/" + string(role)
}

func (m *memGroups) GetOrCreate(_ context.Context, group *domain.AccessGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := groupKey(group.EntityID, group.Role)
	if id, ok := m.byKey[key]; ok {
		group.ID = id
		return nil
	}
	cp := *group
	m.byID[group.ID] = &cp
	m.byKey[key] = group.ID
	m.actions[group.ID] = make(map[domain.Action]struct{})
	m.members[group.ID] = make(map[domain.UserID]struct{})
	return nil
}

func (m *memGroups) GrantActions(_ context.Context, groupID domain.GroupID, actions []domain.Action) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range actions {
		m.actions[groupID][a] = struct{}{}
	}
	return nil
}

func (m *memGroups) GetByEntityAndRole(_ context.Context, entityID domain.EntityID, role domain.RoleName) (*domain.AccessGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byKey[groupKey(entityID, role)]
	if !ok {
		return nil, nil
	}
	return m.byID[id], nil
}

func (m *memGroups) ListForEntity(_ context.Context, entityID domain.EntityID) ([]*domain.AccessGroup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.AccessGroup
	for _, g := range m.byID {
		if g.EntityID == entityID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *memGroups) DeleteForEntities(_ context.Context, entityIDs []domain.EntityID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doomed := make(map[domain.EntityID]struct{}, len(entityIDs))
	for _, id := range entityIDs {
		doomed[id] = struct{}{}
	}
	for id, g := range m.byID {
		if _, ok := doomed[g.EntityID]; !ok {
			continue
		}
		delete(m.byID, id)
		delete(m.byKey, groupKey(g.EntityID, g.Role))
		delete(m.actions, id)
		delete(m.members, id)
	}
	return nil
}

func (m *memGroups) AddMember(_ context.Context, groupID domain.GroupID, userID domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mm, ok := m.members[groupID]; ok {
		mm[userID] = struct{}{}
	}
	return nil
}

func (m *memGroups) RemoveMember(_ context.Context, groupID domain.GroupID, userID domain.UserID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mm, ok := m.members[groupID]; ok {
		delete(mm, userID)
	}
	return nil
}

func (m *memGroups) ListMembers(_ context.Context, groupID domain.GroupID) ([]domain.UserID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.UserID
	for u := range m.members[groupID] {
		out = append(out, u)
	}
	return out, nil
}

func (m *memGroups) EntityIDsGranted(_ context.Context, userID domain.UserID, entityType domain.EntityType, action domain.Action) ([]domain.EntityID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.EntityID
	for id, g := range m.byID {
		entity := m.entities.byID[g.EntityID]
		if entity == nil || entity.Type != entityType {
			continue
		}
		if _, ok := m.actions[id][action]; !ok {
			continue
		}
		if _, ok := m.members[id][userID]; !ok {
			continue
		}
		out = append(out, g.EntityID)
	}
	return out, nil
}

type memTx struct{}

func (memTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memInvitations struct {
	mu   sync.Mutex
	byID map[domain.InvitationID]*domain.Invitation
}

func newMemInvitations() *memInvitations {
	return &memInvitations{byID: make(map[domain.InvitationID]*domain.Invitation)}
}

func (m *memInvitations) Create(_ context.Context, inv *domain.Invitation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.byID[inv.ID] = &cp
	return nil
}

func (m *memInvitations) Get(_ context.Context, id domain.InvitationID) (*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *inv
	return &cp, nil
}

func (m *memInvitations) MarkAccepted(_ context.Context, id domain.InvitationID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.byID[id]
	if !ok || inv.Accepted {
		return false, nil
	}
	inv.Accepted = true
	return true, nil
}

func (m *memInvitations) Delete(_ context.Context, id domain.InvitationID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byID, id)
	return nil
}

func (m *memInvitations) ListPendingByInviter(_ context.Context, invitedBy domain.UserID) ([]*domain.Invitation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Invitation
	for _, inv := range m.byID {
		if inv.InvitedBy == invitedBy && !inv.Accepted {
			cp := *inv
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	sent []string
	fail error
}

func (f *fakeEnqueuer) EnqueueSendInvitation(_ context.Context, email, entityName, role, invitationID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.sent = append(f.sent, email)
	return nil
}
