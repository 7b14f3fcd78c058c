package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlagSet(names ...string) *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	for _, name := range names {
		fs.String(name, "", "")
	}
	return fs
}

func TestLoadOverrides_FlagsOnlyWhenChanged(t *testing.T) {
	fs := newFlagSet(KeyServerPort, KeyDBName)
	require.NoError(t, fs.Parse([]string{"--serverPort", "8080"}))

	overrides, err := LoadOverrides(fs, "", []string{KeyServerPort, KeyDBName})
	require.NoError(t, err)

	assert.Equal(t, Overrides{KeyServerPort: "8080"}, overrides)
}

func TestLoadOverrides_Environment(t *testing.T) {
	t.Setenv("ADAPT_INSTALL_DBNAME", "from-env")

	overrides, err := LoadOverrides(newFlagSet(KeyDBName), "", []string{KeyDBName})
	require.NoError(t, err)

	v, ok := overrides.Get(KeyDBName)
	require.True(t, ok)
	assert.Equal(t, "from-env", v)
}

func TestLoadOverrides_ValuesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("email: admin@example.com\nserverPort: 6000\n"), 0o600))

	fs := newFlagSet(KeyServerPort, KeyEmail)
	require.NoError(t, fs.Parse([]string{"--serverPort", "7000"}))

	overrides, err := LoadOverrides(fs, path, []string{KeyServerPort, KeyEmail})
	require.NoError(t, err)

	assert.Equal(t, "admin@example.com", overrides[KeyEmail])
	assert.Equal(t, "7000", overrides[KeyServerPort], "flags win over the values file")
	assert.Equal(t, []string{KeyEmail, KeyServerPort}, overrides.Keys())
}

func TestLoadOverrides_MissingValuesFile(t *testing.T) {
	_, err := LoadOverrides(nil, filepath.Join(t.TempDir(), "missing.yaml"), []string{KeyEmail})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read values file")
}
