package orchestration

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/provisioning"
	"github.com/imamik/adapt-install/internal/provisioning/configure"
	"github.com/imamik/adapt-install/internal/provisioning/framework"
	"github.com/imamik/adapt-install/internal/provisioning/frontend"
	"github.com/imamik/adapt-install/internal/provisioning/rollback"
	"github.com/imamik/adapt-install/internal/provisioning/superuser"
	"github.com/imamik/adapt-install/internal/provisioning/tenant"
)

// Options control a single install run.
type Options struct {
	Mode config.Mode

	// Force discards an existing framework checkout.
	Force bool

	// BuildCommand is run in Root once the accounts exist. Empty skips it.
	BuildCommand string
	Root         string

	// HashCost is the bcrypt cost for the super user password.
	HashCost int
}

// Installer orchestrates the install workflow.
type Installer struct {
	opts Options
	deps provisioning.Dependencies

	// Phases
	configureProvisioner *configure.Provisioner
	frameworkProvisioner *framework.Provisioner
	tenantProvisioner    *tenant.Provisioner
	superuserProvisioner *superuser.Provisioner
	frontendProvisioner  *frontend.Provisioner
	rollbackProvisioner  *rollback.Provisioner
}

// NewInstaller creates a new installer.
func NewInstaller(opts Options, deps provisioning.Dependencies) *Installer {
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	return &Installer{
		opts:                 opts,
		deps:                 deps,
		configureProvisioner: configure.NewProvisioner(),
		frameworkProvisioner: framework.NewProvisioner(opts.Force),
		tenantProvisioner:    tenant.NewProvisioner(),
		superuserProvisioner: superuser.NewProvisioner().WithHashCost(opts.HashCost),
		frontendProvisioner:  frontend.NewProvisioner(opts.BuildCommand, opts.Root),
		rollbackProvisioner:  rollback.NewProvisioner(),
	}
}

// Frontend exposes the front-end phase so callers can replace its runner.
func (i *Installer) Frontend() *frontend.Provisioner {
	return i.frontendProvisioner
}

// Pipeline returns the phases in execution order with rollback attached.
func (i *Installer) Pipeline() *provisioning.Pipeline {
	return provisioning.NewPipeline(
		i.configureProvisioner,
		i.frameworkProvisioner,
		i.tenantProvisioner,
		i.superuserProvisioner,
		i.frontendProvisioner,
	).WithRollback(i.rollbackProvisioner)
}

// Run executes one install. The returned state reflects how far the run got
// and is never nil.
func (i *Installer) Run(ctx context.Context) (*provisioning.State, error) {
	pCtx := provisioning.NewContext(ctx, i.opts.Mode, i.deps)
	pCtx.Log.Info("starting install", "mode", i.opts.Mode.String(), "force", i.opts.Force)

	err := i.Pipeline().Run(pCtx)
	return pCtx.State, err
}
