package testing

import (
	"context"
	"sync"

	"github.com/imamik/adapt-install/internal/store"
)

// FakeApplication is an application server double. Start hands out Store
// unless StartErr is set.
type FakeApplication struct {
	mu       sync.Mutex
	Store    *store.MemoryStore
	StartErr error
	StopErr  error

	Started []store.DBConfig
	Stopped int
}

// NewFakeApplication creates a fake backed by an empty memory store.
func NewFakeApplication() *FakeApplication {
	return &FakeApplication{Store: store.NewMemoryStore()}
}

// Start records cfg and returns the memory store.
func (f *FakeApplication) Start(_ context.Context, cfg store.DBConfig) (store.Store, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Started = append(f.Started, cfg)
	if f.StartErr != nil {
		return nil, f.StartErr
	}
	return f.Store, nil
}

// Stop counts the call.
func (f *FakeApplication) Stop(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Stopped++
	return f.StopErr
}

// WithExistingTenant seeds a tenant with the given name.
func (f *FakeApplication) WithExistingTenant(name string) *FakeApplication {
	_ = f.Store.CreateTenant(context.Background(), &store.Tenant{Name: name, DisplayName: name, IsMaster: true})
	return f
}

// WithExistingUser seeds a user with the given email.
func (f *FakeApplication) WithExistingUser(email string) *FakeApplication {
	_ = f.Store.CreateUser(context.Background(), &store.User{Email: email, Auth: "local"})
	return f
}
