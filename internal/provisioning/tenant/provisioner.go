// Package tenant creates the master tenant.
//
// The application server is started first since the data store is only
// reachable through it. An existing tenant with the requested name is a
// conflict: unattended runs stop, interactive runs may confirm a purge of
// every resource kind the store reports before the tenant is created.
package tenant

import (
	"fmt"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/provisioning"
	"github.com/imamik/adapt-install/internal/store"
)

// Messages reported for tenant failures.
const (
	MsgServerStart   = "Failed to start the application server. Please check the console output."
	MsgLookup        = "Failed to look up existing tenants. Please check the console output."
	MsgConflict      = "Tenant '%s' already exists, automatic install cannot continue."
	MsgDeclined      = "Exiting install ... "
	MsgPurge         = "Failed to remove the existing installation. Please check the console output."
	MsgCreate        = "Failed to create master tenant. Please check the console output."
	MsgSaveTenantIDs = "Failed to save configuration items."
)

const phaseName = "tenant"

// Provisioner handles master tenant creation.
type Provisioner struct{}

// NewProvisioner creates a new tenant provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string { return phaseName }

// Stage implements provisioning.Phase.
func (p *Provisioner) Stage() provisioning.Stage { return provisioning.StageProvisioningTenant }

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := startApplication(ctx); err != nil {
		return err
	}

	name := ctx.State.TenantInfo.String(config.KeyTenantName)
	if name == "" {
		name = config.DefaultTenantName
	}

	existing, err := ctx.Store.FindTenantByName(ctx, name)
	if err != nil {
		return provisioning.NewError(provisioning.KindDependency, MsgLookup, err)
	}
	if existing != nil {
		provisioning.LogResourceExists(ctx.Observer, phaseName, "tenant", name, existing.ID)
		if err := resolveConflict(ctx, name); err != nil {
			return err
		}
	}

	tenant, err := createTenant(ctx, name)
	if err != nil {
		return err
	}
	return saveTenantIDs(ctx, tenant)
}

func startApplication(ctx *provisioning.Context) error {
	if ctx.Store != nil {
		return nil
	}
	ctx.Observer.Printf("Starting the application server...")
	s, err := ctx.App.Start(ctx, store.DBConfigFromRecord(ctx.State.Config))
	if err != nil {
		return provisioning.NewError(provisioning.KindDependency, MsgServerStart, err)
	}
	ctx.Store = s
	return nil
}

// resolveConflict purges the store when the operator confirms it. It never
// creates or destroys anything in unattended mode.
func resolveConflict(ctx *provisioning.Context, name string) error {
	if !ctx.Mode.Interactive() {
		return provisioning.NewError(provisioning.KindConflict, fmt.Sprintf(MsgConflict, name),
			fmt.Errorf("tenant %s exists", name))
	}

	confirmed, err := ctx.Confirm(
		"Continue?",
		fmt.Sprintf("Tenant '%s' already exists. It must be deleted for install to continue.", name),
	)
	if err != nil {
		return provisioning.NewError(provisioning.KindConflict, MsgDeclined, err)
	}
	if !confirmed {
		return provisioning.NewError(provisioning.KindConflict, MsgDeclined, provisioning.ErrDeclined)
	}

	ctx.Observer.Printf("Deleting the existing installation data...")
	kinds, err := ctx.Store.Kinds(ctx)
	if err != nil {
		return provisioning.NewError(provisioning.KindProvisioning, MsgPurge, err)
	}
	for _, kind := range kinds {
		provisioning.LogResourceDeleting(ctx.Observer, phaseName, "kind", kind)
		if err := ctx.Store.DestroyAll(ctx, kind); err != nil {
			return provisioning.NewError(provisioning.KindProvisioning, MsgPurge, err)
		}
		provisioning.LogResourceDeleted(ctx.Observer, phaseName, "kind", kind)
	}
	ctx.Metrics.RecordPurge(len(kinds))
	return nil
}

func createTenant(ctx *provisioning.Context, name string) (*store.Tenant, error) {
	displayName := ctx.State.TenantInfo.String(config.KeyTenantDisplayName)
	if displayName == "" {
		displayName = name
	}

	tenant := &store.Tenant{
		Name:        name,
		DisplayName: displayName,
		IsMaster:    true,
		Database:    store.DBConfigFromRecord(ctx.State.Config).Info(),
	}

	provisioning.LogResourceCreating(ctx.Observer, phaseName, "tenant", name)
	if err := ctx.Store.CreateTenant(ctx, tenant); err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phaseName, "tenant", name, err)
		return nil, provisioning.NewError(provisioning.KindProvisioning, MsgCreate, err)
	}
	ctx.State.Created.Tenant = tenant
	provisioning.LogResourceCreated(ctx.Observer, phaseName, "tenant", name, tenant.ID)
	ctx.Observer.Printf("Master tenant '%s' created.", name)
	return tenant, nil
}

// saveTenantIDs rewrites the configuration with the new tenant's identity.
// The tenant already exists at this point, so failure rolls it back.
func saveTenantIDs(ctx *provisioning.Context, tenant *store.Tenant) error {
	record := ctx.State.Config.Clone()
	record[config.KeyMasterTenantName] = tenant.Name
	record[config.KeyMasterTenantID] = tenant.ID

	if err := ctx.Persister.Save(record); err != nil {
		return provisioning.NewError(provisioning.KindProvisioning, MsgSaveTenantIDs, err)
	}
	ctx.State.Config = record
	return nil
}
