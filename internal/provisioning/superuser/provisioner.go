// Package superuser registers the super user account under the master tenant.
package superuser

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/provisioning"
	"github.com/imamik/adapt-install/internal/store"
)

// MsgCreate is reported when the account cannot be created or elevated.
const MsgCreate = "Failed to create admin user account. Please check the console output."

// AuthLocal marks accounts that sign in with a password.
const AuthLocal = "local"

const phaseName = "superuser"

var (
	// ErrNoTenant is returned when no master tenant was created before this phase.
	ErrNoTenant = errors.New("no master tenant to register the user under")
	// ErrPasswordMismatch is returned when the retyped password differs.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// Provisioner handles super user registration.
type Provisioner struct {
	cost int
}

// NewProvisioner creates a new super user provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{cost: bcrypt.DefaultCost}
}

// WithHashCost sets the bcrypt cost.
func (p *Provisioner) WithHashCost(cost int) *Provisioner {
	p.cost = cost
	return p
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string { return phaseName }

// Stage implements provisioning.Phase.
func (p *Provisioner) Stage() provisioning.Stage { return provisioning.StageProvisioningUser }

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	tenant := ctx.State.Created.Tenant
	if tenant == nil {
		return provisioning.NewError(provisioning.KindProvisioning, MsgCreate, ErrNoTenant)
	}

	creds := ctx.State.Credentials
	email := creds.String(config.KeyEmail)

	if err := ctx.Store.DeleteUserByEmail(ctx, email); err != nil {
		return provisioning.NewError(provisioning.KindProvisioning, MsgCreate,
			fmt.Errorf("failed to remove existing account %s: %w", email, err))
	}

	user, err := p.register(ctx, tenant.ID, email, creds.String(config.KeyPassword), creds.String(config.KeyRetypePassword))
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phaseName, "user", email, err)
		return provisioning.NewError(provisioning.KindProvisioning, MsgCreate, err)
	}
	ctx.State.Created.User = user
	provisioning.LogResourceCreated(ctx.Observer, phaseName, "user", email, user.ID)

	if err := ctx.Store.GrantRole(ctx, user.ID, store.RoleSuperAdmin); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phaseName, "role", store.RoleSuperAdmin, err)
		return provisioning.NewError(provisioning.KindProvisioning, MsgCreate,
			fmt.Errorf("failed to grant %s: %w", store.RoleSuperAdmin, err))
	}

	ctx.Observer.Printf("Super user account %s created.", email)
	return nil
}

// register creates a local-auth account bound to tenantID.
func (p *Provisioner) register(ctx *provisioning.Context, tenantID, email, password, retype string) (*store.User, error) {
	if password != retype {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &store.User{
		Email:        email,
		PasswordHash: string(hash),
		Auth:         AuthLocal,
		TenantID:     tenantID,
	}
	provisioning.LogResourceCreating(ctx.Observer, phaseName, "user", email)
	if err := ctx.Store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
