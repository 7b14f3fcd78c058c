package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Every mutating call is appended to an
// operation log so callers can assert on ordering.
type MemoryStore struct {
	mu          sync.RWMutex
	tenants     map[string]*Tenant
	users       map[string]*User
	roles       map[string]*RoleAssignment
	extra       map[string]int
	ops         []string
	failures    map[string]error
	closed      bool
	pingFailure error
}

// NewMemoryStore returns an empty store exposing the built-in kinds.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:  make(map[string]*Tenant),
		users:    make(map[string]*User),
		roles:    make(map[string]*RoleAssignment),
		extra:    make(map[string]int),
		failures: make(map[string]error),
	}
}

// Register adds a resource kind holding count opaque records. It stands in
// for kinds contributed by application plugins.
func (m *MemoryStore) Register(kind string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.extra[kind] = count
}

// FailOn makes the named operation return err until cleared with a nil err.
// Operation names match the method names, e.g. "CreateTenant".
func (m *MemoryStore) FailOn(op string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// SetPingError controls the result of Ping.
func (m *MemoryStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingFailure = err
}

// Ops returns a copy of the operation log.
func (m *MemoryStore) Ops() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.ops))
	copy(out, m.ops)
	return out
}

// Count returns the number of records of kind.
func (m *MemoryStore) Count(kind string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch kind {
	case KindTenants:
		return len(m.tenants)
	case KindUsers:
		return len(m.users)
	case KindRoleAssignments:
		return len(m.roles)
	default:
		return m.extra[kind]
	}
}

// Tenants returns a snapshot of every tenant sorted by name.
func (m *MemoryStore) Tenants() []Tenant {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Users returns a snapshot of every user sorted by email.
func (m *MemoryStore) Users() []User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

// RolesOf returns the roles granted to userID.
func (m *MemoryStore) RolesOf(userID string) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, r := range m.roles {
		if r.UserID == userID {
			out = append(out, r.Role)
		}
	}
	sort.Strings(out)
	return out
}

// record must be called with the write lock held.
func (m *MemoryStore) record(op string, args ...any) error {
	entry := op
	if len(args) > 0 {
		entry = fmt.Sprintf("%s %v", op, args[0])
	}
	m.ops = append(m.ops, entry)
	if err := m.failures[op]; err != nil {
		return err
	}
	if m.closed {
		return fmt.Errorf("%s: store is closed", op)
	}
	return nil
}

// Kinds implements Store.
func (m *MemoryStore) Kinds(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("Kinds"); err != nil {
		return nil, err
	}
	kinds := []string{KindTenants, KindUsers, KindRoleAssignments}
	for kind := range m.extra {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds, nil
}

// DestroyAll implements Store.
func (m *MemoryStore) DestroyAll(_ context.Context, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DestroyAll", kind); err != nil {
		return err
	}
	switch kind {
	case KindTenants:
		m.tenants = make(map[string]*Tenant)
	case KindUsers:
		m.users = make(map[string]*User)
	case KindRoleAssignments:
		m.roles = make(map[string]*RoleAssignment)
	default:
		if _, ok := m.extra[kind]; !ok {
			return fmt.Errorf("unknown kind %s", kind)
		}
		m.extra[kind] = 0
	}
	return nil
}

// FindTenantByName implements Store.
func (m *MemoryStore) FindTenantByName(_ context.Context, name string) (*Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("FindTenantByName", name); err != nil {
		return nil, err
	}
	for _, t := range m.tenants {
		if t.Name == name {
			found := *t
			return &found, nil
		}
	}
	return nil, nil
}

// CreateTenant implements Store.
func (m *MemoryStore) CreateTenant(_ context.Context, t *Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateTenant", t.Name); err != nil {
		return err
	}
	for _, existing := range m.tenants {
		if existing.Name == t.Name {
			return fmt.Errorf("tenant %s already exists", t.Name)
		}
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	stored := *t
	m.tenants[t.ID] = &stored
	return nil
}

// DeleteTenant implements Store.
func (m *MemoryStore) DeleteTenant(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteTenant", id); err != nil {
		return err
	}
	if _, ok := m.tenants[id]; !ok {
		return fmt.Errorf("tenant %s: %w", id, ErrNotFound)
	}
	delete(m.tenants, id)
	return nil
}

// DeleteUserByEmail implements Store.
func (m *MemoryStore) DeleteUserByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteUserByEmail", email); err != nil {
		return err
	}
	for id, u := range m.users {
		if u.Email == email {
			m.deleteUserLocked(id)
		}
	}
	return nil
}

// CreateUser implements Store.
func (m *MemoryStore) CreateUser(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateUser", u.Email); err != nil {
		return err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return fmt.Errorf("user %s already exists", u.Email)
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	stored := *u
	m.users[u.ID] = &stored
	return nil
}

// DeleteUser implements Store.
func (m *MemoryStore) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteUser", id); err != nil {
		return err
	}
	if _, ok := m.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	m.deleteUserLocked(id)
	return nil
}

func (m *MemoryStore) deleteUserLocked(id string) {
	delete(m.users, id)
	for rid, r := range m.roles {
		if r.UserID == id {
			delete(m.roles, rid)
		}
	}
}

// GrantRole implements Store.
func (m *MemoryStore) GrantRole(_ context.Context, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GrantRole", userID); err != nil {
		return err
	}
	if _, ok := m.users[userID]; !ok {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	id := uuid.NewString()
	m.roles[id] = &RoleAssignment{ID: id, UserID: userID, Role: role}
	return nil
}

// Ping implements Store.
func (m *MemoryStore) Ping(_ context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return fmt.Errorf("store is closed")
	}
	return m.pingFailure
}

// Close implements Store. The data stays readable through the snapshot helpers.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
