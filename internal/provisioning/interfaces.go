package provisioning

import (
	"context"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/store"
)

// Phase defines the interface for an install step.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Stage returns the run stage this phase executes in.
	Stage() Stage

	// Provision executes the logic for this phase.
	Provision(ctx *Context) error
}

// Application starts and stops the transient application server.
// Implemented by internal/server.App.
type Application interface {
	// Start opens the data store and blocks until the server is ready.
	Start(ctx context.Context, cfg store.DBConfig) (store.Store, error)

	// Stop shuts the server down and releases the store.
	Stop(ctx context.Context) error
}

// Persister writes configuration records.
// Implemented by internal/config/persist.Persister.
type Persister interface {
	Save(record config.Record) error
}
