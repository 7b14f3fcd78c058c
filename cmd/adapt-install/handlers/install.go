// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/imamik/adapt-install/internal/artifact"
	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/config/collector"
	"github.com/imamik/adapt-install/internal/config/persist"
	"github.com/imamik/adapt-install/internal/logging"
	"github.com/imamik/adapt-install/internal/metrics"
	"github.com/imamik/adapt-install/internal/orchestration"
	"github.com/imamik/adapt-install/internal/provisioning"
	"github.com/imamik/adapt-install/internal/server"
	"github.com/imamik/adapt-install/internal/ui"
	"github.com/imamik/adapt-install/internal/util/prerequisites"
)

// FrameworkDir is the framework checkout location relative to the install root.
const FrameworkDir = "adapt_framework"

// Messages printed around a run.
const (
	MsgIntro      = "This script will install the application."
	MsgContinue   = "Would you like to continue?"
	MsgPleaseWait = "This script will install the application. Please wait ..."
	MsgBye        = "Bye!"
	MsgSuccess    = "Installation completed successfully, the application can now be started with node server."
)

// InstallOptions are the run options of the install command.
type InstallOptions struct {
	Mode      config.Mode
	Overrides config.Overrides

	Root         string
	LogLevel     string
	BuildCommand string
	MetricsAddr  string
	S3           artifact.S3Options
}

// Runner interface for testing - matches orchestration.Installer.
type Runner interface {
	Run(ctx context.Context) (*provisioning.State, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newLogger builds the structured logger.
	newLogger = logging.New

	// newPrompter creates the terminal prompter used in interactive mode.
	newPrompter = func() collector.Prompter {
		return collector.NewFormPrompter()
	}

	// newPersister creates the configuration writer for the install root.
	newPersister = func(root string) (provisioning.Persister, error) {
		return persist.New(root)
	}

	// newArtifactInstaller creates the framework installer.
	newArtifactInstaller = func(dir string, s3opts artifact.S3Options, log logr.Logger) artifact.Installer {
		return &artifact.Router{
			Git: artifact.NewGitInstaller(dir, log.WithName("git")),
			NewS3: func(ctx context.Context) (artifact.Installer, error) {
				client, err := artifact.NewS3Client(ctx, s3opts)
				if err != nil {
					return nil, err
				}
				return artifact.NewS3Installer(client, dir, log.WithName("s3")), nil
			},
		}
	}

	// newApplication creates the transient application server.
	newApplication = func(opts server.Options) provisioning.Application {
		return server.New(opts, server.OpenPostgres)
	}

	// newRunner creates the install orchestrator.
	newRunner = func(opts orchestration.Options, deps provisioning.Dependencies) Runner {
		return orchestration.NewInstaller(opts, deps)
	}

	// checkPrerequisites verifies external tools.
	checkPrerequisites = prerequisites.CheckInstall

	// stdout receives operator-facing output.
	stdout io.Writer = os.Stdout
)

// Install runs the installer.
//
// Interactive runs ask for confirmation first; declining exits cleanly. A
// failed run prints its reason and returns the error so the process exits
// non-zero.
func Install(ctx context.Context, opts InstallOptions) error {
	log, flush, err := newLogger(logging.Options{Level: opts.LogLevel})
	if err != nil {
		return err
	}
	defer flush()

	var prompter collector.Prompter
	if opts.Mode.Interactive() {
		prompter = newPrompter()
		ok, err := prompter.Confirm(ctx, MsgIntro, MsgContinue, true)
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if !ok {
			fmt.Fprintln(stdout, MsgBye)
			return nil
		}
	} else {
		fmt.Fprintln(stdout, MsgPleaseWait)
	}

	repository, _ := opts.Overrides.Get(config.KeyFrameworkRepository)
	prereqs := checkPrerequisites(!artifact.IsObjectStorage(repository), opts.BuildCommand != "")
	if err := prereqs.Error(); err != nil {
		return err
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve install root %s: %w", opts.Root, err)
	}
	persister, err := newPersister(root)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()
	app := newApplication(server.Options{
		Addr:     opts.MetricsAddr,
		Registry: recorder.Registry(),
		Log:      log.WithName("server"),
	})

	runner := newRunner(
		orchestration.Options{
			Mode:         opts.Mode,
			Force:        true,
			BuildCommand: opts.BuildCommand,
			Root:         root,
		},
		provisioning.Dependencies{
			Overrides: opts.Overrides,
			Prompter:  prompter,
			Persister: persister,
			Installer: newArtifactInstaller(filepath.Join(root, FrameworkDir), opts.S3, log.WithName("artifact")),
			App:       app,
			Metrics:   recorder,
			Log:       log,
			Output:    stdout,
		},
	)

	if _, err := runner.Run(ctx); err != nil {
		fmt.Fprintln(stdout, failureBanner(err))
		return err
	}

	fmt.Fprintln(stdout, ui.Success(MsgSuccess))
	return nil
}

func failureBanner(err error) string {
	var runErr *provisioning.RunError
	if !errors.As(err, &runErr) {
		return ui.FailureBanner(provisioning.MessageOf(err))
	}
	details := []string{ui.Dim(fmt.Sprintf("Failed while %s.", runErr.Stage.Label()))}
	if runErr.RollbackErr != nil {
		details = append(details, ui.Warning(fmt.Sprintf("Rollback incomplete: %v", runErr.RollbackErr)))
	}
	return ui.FailureBanner(runErr.Message, details...)
}
