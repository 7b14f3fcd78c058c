package provisioning

import (
	"context"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/adapt-install/internal/artifact"
	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/config/collector"
	"github.com/imamik/adapt-install/internal/metrics"
	"github.com/imamik/adapt-install/internal/store"
)

// Context wraps all dependencies and state needed for an install phase.
type Context struct {
	context.Context
	Mode      config.Mode
	Collector *collector.Collector
	Prompter  collector.Prompter
	Persister Persister
	Installer artifact.Installer
	App       Application

	// Store is set once the application server has been started.
	Store store.Store

	Observer Observer
	Metrics  *metrics.Recorder
	Log      logr.Logger
	State    *State
}

// Dependencies are the collaborators of a run.
type Dependencies struct {
	Overrides config.Overrides
	Prompter  collector.Prompter
	Persister Persister
	Installer artifact.Installer
	App       Application
	Metrics   *metrics.Recorder
	Log       logr.Logger
	Output    io.Writer
}

// NewContext creates a run context in the pending stage.
func NewContext(ctx context.Context, mode config.Mode, deps Dependencies) *Context {
	out := deps.Output
	if out == nil {
		out = os.Stdout
	}
	prompter := deps.Prompter
	if !mode.Interactive() {
		prompter = nil
	}

	deps.Metrics.SetMode(mode.String())

	return &Context{
		Context:   ctx,
		Mode:      mode,
		Collector: collector.New(mode, deps.Overrides, prompter, deps.Log.WithName("collector")),
		Prompter:  prompter,
		Persister: deps.Persister,
		Installer: deps.Installer,
		App:       deps.App,
		Observer:  NewConsoleObserver(out, deps.Log),
		Metrics:   deps.Metrics,
		Log:       deps.Log,
		State:     NewState(),
	}
}

// Confirm asks the operator a yes/no question defaulting to no. Unattended
// runs never confirm.
func (c *Context) Confirm(title, description string) (bool, error) {
	if !c.Mode.Interactive() || c.Prompter == nil {
		return false, nil
	}
	return c.Prompter.Confirm(c, title, description, false)
}
