package configure

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/provisioning"
	testutil "github.com/imamik/adapt-install/internal/testing"
)

func newContext(mode config.Mode, overrides config.Overrides, prompter *testutil.ScriptedPrompter, installer *testutil.MockInstaller, persister *testutil.MockPersister) *provisioning.Context {
	deps := provisioning.Dependencies{
		Overrides: overrides,
		Installer: installer,
		Persister: persister,
		Log:       logr.Discard(),
		Output:    &bytes.Buffer{},
	}
	if prompter != nil {
		deps.Prompter = prompter
	}
	ctx := provisioning.NewContext(context.Background(), mode, deps)
	_ = ctx.State.Advance(provisioning.StageCollectingConfig)
	return ctx
}

func TestProvisionerName(t *testing.T) {
	p := NewProvisioner()
	assert.Equal(t, "configure", p.Name())
	assert.Equal(t, provisioning.StageCollectingConfig, p.Stage())
}

func TestProvision_InteractiveDefaults(t *testing.T) {
	installer := testutil.NewMockInstaller("v2.1.0")
	persister := testutil.NewMockPersister()
	prompter := testutil.NewScriptedPrompter().
		Answer(config.KeyEmail, testutil.TestEmail).
		Answer(config.KeyPassword, testutil.TestPassword).
		Answer(config.KeyRetypePassword, testutil.TestPassword)

	ctx := newContext(config.ModeInteractive, nil, prompter, installer, persister)
	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, "v2.1.0", ctx.State.FrameworkTag)
	assert.Equal(t, 5000, ctx.State.Config[config.KeyServerPort])
	assert.Equal(t, "adapt-tenant-master", ctx.State.Config[config.KeyDBName])
	assert.Equal(t, "tags/v2.1.0", ctx.State.Config[config.KeyFrameworkRevision])
	assert.Equal(t, config.DefaultTenantName, ctx.State.TenantInfo[config.KeyTenantName])
	assert.Equal(t, testutil.TestEmail, ctx.State.Credentials[config.KeyEmail])

	saved := persister.Saved()
	require.Len(t, saved, 1)
	assert.NotContains(t, saved[0], config.KeyEmail, "credentials are never persisted")
	installer.AssertCalled(t, "LatestVersion", mock.Anything, config.DefaultFrameworkRepository)
}

func TestProvision_RepositoryOverride(t *testing.T) {
	installer := testutil.NewMockInstaller("v1.0.0")
	overrides := testutil.MergeOverrides(testutil.CredentialOverrides(), config.Overrides{
		config.KeyFrameworkRepository: "s3://releases/framework",
	})

	ctx := newContext(config.ModeUnattended, overrides, nil, installer, testutil.NewMockPersister())
	require.NoError(t, NewProvisioner().Provision(ctx))

	installer.AssertCalled(t, "LatestVersion", mock.Anything, "s3://releases/framework")
	assert.Equal(t, "s3://releases/framework", ctx.State.Config[config.KeyFrameworkRepository])
}

func TestProvision_Failures(t *testing.T) {
	t.Run("latest version lookup", func(t *testing.T) {
		installer := &testutil.MockInstaller{}
		installer.On("LatestVersion", mock.Anything, mock.Anything).Return("", errors.New("network down"))
		persister := testutil.NewMockPersister()

		ctx := newContext(config.ModeUnattended, testutil.CredentialOverrides(), nil, installer, persister)
		err := NewProvisioner().Provision(ctx)

		assert.True(t, provisioning.IsKind(err, provisioning.KindDependency))
		assert.Equal(t, MsgLatestVersion, provisioning.MessageOf(err))
		persister.AssertNotCalled(t, "Save", mock.Anything)
	})

	t.Run("invalid unattended override", func(t *testing.T) {
		overrides := testutil.MergeOverrides(testutil.CredentialOverrides(), config.Overrides{config.KeyServerPort: "eighty"})
		persister := testutil.NewMockPersister()

		ctx := newContext(config.ModeUnattended, overrides, nil, testutil.NewMockInstaller("v2.1.0"), persister)
		err := NewProvisioner().Provision(ctx)

		assert.True(t, provisioning.IsKind(err, provisioning.KindValidation))
		persister.AssertNotCalled(t, "Save", mock.Anything)
	})

	t.Run("save failure", func(t *testing.T) {
		persister := &testutil.MockPersister{}
		persister.On("Save", mock.Anything).Return(errors.New("read-only file system"))

		ctx := newContext(config.ModeUnattended, testutil.CredentialOverrides(), nil, testutil.NewMockInstaller("v2.1.0"), persister)
		err := NewProvisioner().Provision(ctx)

		assert.True(t, provisioning.IsKind(err, provisioning.KindPersistence))
		assert.Equal(t, MsgSaveConfig, provisioning.MessageOf(err))
	})

	t.Run("missing unattended credentials", func(t *testing.T) {
		ctx := newContext(config.ModeUnattended, nil, nil, testutil.NewMockInstaller("v2.1.0"), testutil.NewMockPersister())
		err := NewProvisioner().Provision(ctx)

		assert.True(t, provisioning.IsKind(err, provisioning.KindValidation))
		assert.ErrorIs(t, err, config.ErrRequired)
		assert.Nil(t, ctx.State.Credentials)
	})
}
