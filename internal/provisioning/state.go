package provisioning

import (
	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/store"
)

// RunState references the resources created by this run. It is written only
// by the phase that creates a resource and read only by rollback.
type RunState struct {
	Tenant *store.Tenant
	User   *store.User
}

// Empty reports whether nothing was created.
func (r RunState) Empty() bool {
	return r.Tenant == nil && r.User == nil
}

// State holds the shared results of install phases.
// It is progressively populated as each phase completes.
type State struct {
	Stage Stage

	// Configuration results (populated by the configure phase)
	FrameworkTag string
	Config       config.Record
	TenantInfo   config.Record
	Credentials  config.Record

	Created RunState
}

// NewState creates an empty state in the pending stage.
func NewState() *State {
	return &State{Stage: StagePending}
}

// Advance moves the state to the given stage.
func (s *State) Advance(to Stage) error {
	if !s.Stage.CanTransition(to) {
		return &TransitionError{From: s.Stage, To: to}
	}
	s.Stage = to
	return nil
}
