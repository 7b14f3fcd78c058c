package handlers

import (
	"fmt"
	"sort"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/config/persist"
	"github.com/imamik/adapt-install/internal/ui"
)

// ConfigShow prints the persisted settings of the install at root as YAML
// with sensitive values masked, followed by the keys of the environment file.
func ConfigShow(root string) error {
	p, err := persist.New(root)
	if err != nil {
		return err
	}

	settings, err := p.LoadSettings()
	if err != nil {
		return fmt.Errorf("no configuration found, run the installer first: %w", err)
	}

	values := make(map[string]string, len(settings))
	for k, v := range settings {
		values[k] = config.FormatValue(v)
	}
	sensitive := config.DefaultSchema("").SensitiveNames()

	fmt.Fprintln(stdout, ui.Title(p.ConfigPath()))
	if err := persist.WriteYAML(stdout, values, sensitive); err != nil {
		return err
	}

	env, err := p.LoadEnv()
	if err != nil {
		fmt.Fprintln(stdout, ui.Warning(fmt.Sprintf("%s is missing or unreadable", p.EnvPath())))
		return nil
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintln(stdout, ui.Title(p.EnvPath()))
	for _, k := range keys {
		fmt.Fprintln(stdout, "  "+k)
	}
	return nil
}
