// Package main is the entry point for the adapt-install CLI.
//
// adapt-install prepares a fresh application install: it collects the
// configuration, fetches the course framework, and creates the master
// tenant and its super user.
//
// Run without arguments to be asked for every setting. Any argument or flag
// switches to unattended mode, where settings come from flags, environment
// variables, a values file, or their defaults:
//
//	adapt-install --email admin@example.com --password s3cret --retypePassword s3cret
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/adapt-install/cmd/adapt-install/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
