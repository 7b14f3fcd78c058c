package rollback

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/imamik/adapt-install/internal/provisioning"
)

const phaseName = "rollback"

// Provisioner handles rollback.
type Provisioner struct{}

// NewProvisioner creates a new rollback provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string { return phaseName }

// Stage implements provisioning.Phase.
func (p *Provisioner) Stage() provisioning.Stage { return provisioning.StageAborted }

// Provision deletes the created user and tenant and returns every failure combined.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	created := &ctx.State.Created
	if created.Empty() {
		return nil
	}
	if ctx.Store == nil {
		return fmt.Errorf("no store available to roll back with")
	}

	// The operator may have interrupted the run; deletions still go through.
	bg := context.WithoutCancel(ctx)
	var errs error

	if user := created.User; user != nil {
		provisioning.LogResourceDeleting(ctx.Observer, phaseName, "user", user.Email)
		err := ctx.Store.DeleteUser(bg, user.ID)
		ctx.Metrics.RecordRollback("user", err)
		if err != nil {
			provisioning.LogResourceFailed(ctx.Observer, phaseName, "user", user.Email, err)
			errs = multierr.Append(errs, fmt.Errorf("failed to delete user %s: %w", user.Email, err))
		} else {
			provisioning.LogResourceDeleted(ctx.Observer, phaseName, "user", user.Email)
			created.User = nil
		}
	}

	if tenant := created.Tenant; tenant != nil {
		provisioning.LogResourceDeleting(ctx.Observer, phaseName, "tenant", tenant.Name)
		err := ctx.Store.DeleteTenant(bg, tenant.ID)
		ctx.Metrics.RecordRollback("tenant", err)
		if err != nil {
			provisioning.LogResourceFailed(ctx.Observer, phaseName, "tenant", tenant.Name, err)
			errs = multierr.Append(errs, fmt.Errorf("failed to delete tenant %s: %w", tenant.Name, err))
		} else {
			provisioning.LogResourceDeleted(ctx.Observer, phaseName, "tenant", tenant.Name)
			created.Tenant = nil
		}
	}

	if errs != nil {
		ctx.Observer.Printf("Rollback incomplete: %v", errs)
		return errs
	}
	ctx.Observer.Printf("Rollback complete.")
	return nil
}
