// Package frontend runs the optional front-end build after the accounts exist.
//
// A build failure is reported as a warning; the install itself has succeeded
// by then and the build can be rerun by hand.
package frontend

import (
	"context"
	"strings"

	"github.com/imamik/adapt-install/internal/artifact"
	"github.com/imamik/adapt-install/internal/provisioning"
	"github.com/imamik/adapt-install/internal/ui"
)

// Provisioner runs the build command.
type Provisioner struct {
	command string
	dir     string
	run     artifact.CommandRunner
}

// NewProvisioner creates a provisioner that runs command through the shell in
// dir. An empty command skips the build.
func NewProvisioner(command, dir string) *Provisioner {
	return &Provisioner{command: strings.TrimSpace(command), dir: dir, run: artifact.ExecRunner}
}

// WithRunner replaces the command runner.
func (p *Provisioner) WithRunner(run artifact.CommandRunner) *Provisioner {
	p.run = run
	return p
}

// Name implements provisioning.Phase.
func (p *Provisioner) Name() string { return "frontend" }

// Stage implements provisioning.Phase.
func (p *Provisioner) Stage() provisioning.Stage { return provisioning.StageFinalizing }

// Provision implements provisioning.Phase.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if p.command == "" {
		ctx.Log.V(1).Info("no front-end build command configured")
		return nil
	}

	ctx.Observer.Printf("Building the front-end (%s)...", p.command)
	out, err := p.run(context.WithoutCancel(ctx), p.dir, "sh", "-c", p.command)
	if err != nil {
		ctx.Log.Error(err, "front-end build failed", "output", strings.TrimSpace(string(out)))
		ctx.Observer.Printf("%s", ui.Warning("Front-end build failed. Run '"+p.command+"' manually before starting the application."))
		return nil
	}
	ctx.Observer.Printf("Front-end built.")
	return nil
}
