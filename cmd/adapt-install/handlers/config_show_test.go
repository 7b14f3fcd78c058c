package handlers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/config/persist"
	testutil "github.com/imamik/adapt-install/internal/testing"
)

func TestConfigShow(t *testing.T) {
	origStdout := stdout
	t.Cleanup(func() { stdout = origStdout })
	out := &bytes.Buffer{}
	stdout = out

	root := t.TempDir()
	p, err := persist.New(root)
	require.NoError(t, err)
	require.NoError(t, p.Save(testutil.NewRecordBuilder().With(config.KeySessionSecret, "hunter2").Build()))

	require.NoError(t, ConfigShow(root))

	text := out.String()
	assert.Contains(t, text, `serverPort: "5000"`)
	assert.Contains(t, text, `dbType: "mongoose"`)
	assert.Contains(t, text, `sessionSecret: "********"`)
	assert.NotContains(t, text, "hunter2")
	assert.Contains(t, text, p.EnvPath())
	assert.Contains(t, text, "  frameworkRevision\n")
}

func TestConfigShow_NotInstalled(t *testing.T) {
	origStdout := stdout
	t.Cleanup(func() { stdout = origStdout })
	stdout = &bytes.Buffer{}

	err := ConfigShow(t.TempDir())
	assert.ErrorContains(t, err, "run the installer first")
}
