package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides
// (ADAPT_INSTALL_SERVERPORT, ADAPT_INSTALL_EMAIL, ...).
const EnvPrefix = "ADAPT_INSTALL"

// Overrides maps setting names to raw values supplied ahead of prompting.
type Overrides map[string]string

// Get returns the override for name, if one was supplied.
func (o Overrides) Get(name string) (string, bool) {
	v, ok := o[name]
	return v, ok
}

// Keys returns the overridden names in sorted order.
func (o Overrides) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadOverrides merges override sources for the given setting names.
// Precedence is flags > environment > values file. Only names that were
// actually supplied end up in the result; flag defaults never count.
func LoadOverrides(flags *pflag.FlagSet, valuesFile string, names []string) (Overrides, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if valuesFile != "" {
		v.SetConfigFile(valuesFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read values file %s: %w", valuesFile, err)
		}
	}

	if flags != nil {
		for _, name := range names {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(name, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	out := make(Overrides)
	for _, name := range names {
		if v.IsSet(name) {
			out[name] = v.GetString(name)
		}
	}
	return out, nil
}
