// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument parsing,
// flag binding, and validation. Command execution is delegated to handler
// functions in the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/adapt-install/cmd/adapt-install/handlers"
	"github.com/imamik/adapt-install/internal/artifact"
	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/server"
)

// installHandler is replaced in tests.
var installHandler = handlers.Install

// Root returns the root command for the adapt-install CLI.
//
// The root command runs the installer itself. Every setting of the install,
// tenant and super user schemas is also a flag of the same name.
func Root() *cobra.Command {
	var (
		opts       handlers.InstallOptions
		valuesFile string
	)

	cmd := &cobra.Command{
		Use:   "adapt-install [flags]",
		Short: "Install the application and create its master tenant",
		Long: `Install the application and create its master tenant and super user.

Without arguments every setting is asked for interactively. Supplying any
argument or flag runs unattended: each setting comes from its flag, from an
ADAPT_INSTALL_<NAME> environment variable, from the --values file, or from
its default.

The data store is PostgreSQL. The dbPort default of 27017 is kept for
existing configuration files; pass --dbPort 5432 for a stock PostgreSQL.

Examples:
  # Interactive install
  adapt-install

  # Unattended install with default settings
  adapt-install --email admin@example.com --password s3cret --retypePassword s3cret

  # Unattended install against a local PostgreSQL
  adapt-install --dbPort 5432 --email admin@example.com --password s3cret --retypePassword s3cret

  # Unattended install from a values file
  adapt-install --values install.yaml`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Mode = config.ModeFromArgs(cmd.Flags().NFlag() + len(args))

			overrides, err := config.LoadOverrides(cmd.Flags(), valuesFile, config.OverrideNames())
			if err != nil {
				return err
			}
			opts.Overrides = overrides

			return installHandler(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	for _, s := range installSchema() {
		flags.String(s.Name, "", s.Description)
	}

	flags.StringVar(&valuesFile, "values", "", "YAML or JSON file with setting values")
	flags.StringVar(&opts.Root, "root", ".", "Install root for .env and conf/config.json")
	flags.StringVar(&opts.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&opts.BuildCommand, "build-command", "", "Front-end build command run after the accounts exist")
	flags.StringVar(&opts.MetricsAddr, "metrics-addr", server.DefaultAddr, "Listen address of the transient server exposing /healthz and /metrics")
	addS3Flags(cmd, &opts.S3)

	cmd.AddCommand(Config())
	cmd.AddCommand(Version())

	return cmd
}

func installSchema() config.Schema {
	return config.DefaultSchema("").Merge(config.TenantSchema()).Merge(config.SuperUserSchema())
}

func addS3Flags(cmd *cobra.Command, opts *artifact.S3Options) {
	flags := cmd.Flags()
	flags.StringVar(&opts.Endpoint, "s3-endpoint", "", "Endpoint of an S3-compatible framework mirror")
	flags.StringVar(&opts.Region, "s3-region", "", "Region of the framework mirror")
	flags.StringVar(&opts.AccessKey, "s3-access-key", "", "Access key for the framework mirror")
	flags.StringVar(&opts.SecretKey, "s3-secret-key", "", "Secret key for the framework mirror")
}
