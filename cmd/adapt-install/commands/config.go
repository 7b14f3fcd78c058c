package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/adapt-install/cmd/adapt-install/handlers"
)

// configShowHandler is replaced in tests.
var configShowHandler = handlers.ConfigShow

// Config returns the command group for inspecting an install's configuration.
func Config() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the saved configuration",
	}
	cmd.AddCommand(configShow())
	return cmd
}

func configShow() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the saved configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return configShowHandler(root)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "Install root to read the configuration from")
	return cmd
}
