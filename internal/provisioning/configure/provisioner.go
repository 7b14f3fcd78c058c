// Package configure resolves and saves the install configuration.
//
// It looks up the newest framework release to seed the default revision,
// collects the install settings, writes them to disk, then collects the
// master tenant details and super user credentials so that an incomplete
// unattended run stops before anything is created.
package configure

import (
	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/provisioning"
)

// Messages reported for configuration failures.
const (
	MsgLatestVersion = "Failed to get latest framework version"
	MsgInvalidConfig = "Configuration is incomplete or invalid."
	MsgSaveConfig    = "Failed to save configuration items."
)

// Provisioner handles configuration collection.
type Provisioner struct{}

// NewProvisioner creates a new configure provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string { return "configure" }

// Stage implements provisioning.Phase.
func (p *Provisioner) Stage() provisioning.Stage { return provisioning.StageCollectingConfig }

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	repository := config.DefaultFrameworkRepository
	if override, ok := ctx.Collector.Override(config.KeyFrameworkRepository); ok && override != "" {
		repository = override
	}

	ctx.Observer.Printf("Checking the latest framework version...")
	tag, err := ctx.Installer.LatestVersion(ctx, repository)
	if err != nil {
		return provisioning.NewError(provisioning.KindDependency, MsgLatestVersion, err)
	}
	ctx.State.FrameworkTag = tag
	ctx.Log.Info("latest framework version", "repository", repository, "tag", tag)

	if ctx.Mode.Interactive() {
		ctx.Observer.Printf("Now we need to configure the installation. Press ENTER to accept a default.")
	}
	record, err := ctx.Collector.Collect(ctx, config.DefaultSchema(tag))
	if err != nil {
		return provisioning.NewError(provisioning.KindValidation, MsgInvalidConfig, err)
	}

	if err := ctx.Persister.Save(record); err != nil {
		return provisioning.NewError(provisioning.KindPersistence, MsgSaveConfig, err)
	}
	ctx.State.Config = record
	ctx.Log.Info("configuration saved", "settings", len(record))

	if ctx.Mode.Interactive() {
		ctx.Observer.Printf("Now create the master tenant.")
	}
	tenantInfo, err := ctx.Collector.Collect(ctx, config.TenantSchema())
	if err != nil {
		return provisioning.NewError(provisioning.KindValidation, MsgInvalidConfig, err)
	}
	ctx.State.TenantInfo = tenantInfo

	if ctx.Mode.Interactive() {
		ctx.Observer.Printf("Now create the super user account.")
	}
	credentials, err := ctx.Collector.Collect(ctx, config.SuperUserSchema())
	if err != nil {
		return provisioning.NewError(provisioning.KindValidation, MsgInvalidConfig, err)
	}
	ctx.State.Credentials = credentials
	return nil
}
