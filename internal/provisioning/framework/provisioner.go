// Package framework installs the framework artifact the application builds against.
package framework

import (
	"github.com/imamik/adapt-install/internal/artifact"
	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/provisioning"
)

// MsgInstallFailed is reported when the framework cannot be installed.
const MsgInstallFailed = "Framework install failed. See console output for possible reasons."

// Provisioner handles the framework install.
type Provisioner struct {
	force bool
}

// NewProvisioner creates a framework provisioner. force discards any existing copy.
func NewProvisioner(force bool) *Provisioner {
	return &Provisioner{force: force}
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string { return "framework" }

// Stage implements provisioning.Phase.
func (p *Provisioner) Stage() provisioning.Stage { return provisioning.StageInstallingArtifact }

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	src := artifact.Source{
		Repository: ctx.State.Config.String(config.KeyFrameworkRepository),
		Revision:   ctx.State.Config.String(config.KeyFrameworkRevision),
		Force:      p.force,
	}

	ctx.Observer.Printf("Installing the framework from %s (%s)...", src.Repository, src.Revision)
	if err := ctx.Installer.Install(ctx, src); err != nil {
		return provisioning.NewError(provisioning.KindDependency, MsgInstallFailed, err)
	}
	ctx.Observer.Printf("Framework installed.")
	return nil
}
