package orchestration_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/imamik/adapt-install/internal/config"
	"github.com/imamik/adapt-install/internal/config/persist"
	"github.com/imamik/adapt-install/internal/metrics"
	"github.com/imamik/adapt-install/internal/orchestration"
	"github.com/imamik/adapt-install/internal/provisioning"
	"github.com/imamik/adapt-install/internal/store"
	testutil "github.com/imamik/adapt-install/internal/testing"
)

var _ = Describe("Installer", func() {
	var (
		root      string
		app       *testutil.FakeApplication
		installer *testutil.MockInstaller
		prompter  *testutil.ScriptedPrompter
		persister *persist.Persister
		out       *bytes.Buffer
		overrides config.Overrides
	)

	run := func(mode config.Mode) (*provisioning.State, error) {
		inst := orchestration.NewInstaller(
			orchestration.Options{Mode: mode, Root: root, HashCost: bcrypt.MinCost},
			provisioning.Dependencies{
				Overrides: overrides,
				Prompter:  prompter,
				Persister: persister,
				Installer: installer,
				App:       app,
				Metrics:   metrics.NewRecorder(),
				Log:       logr.Discard(),
				Output:    out,
			},
		)
		return inst.Run(context.Background())
	}

	BeforeEach(func() {
		root = GinkgoT().TempDir()
		app = testutil.NewFakeApplication()
		installer = testutil.NewMockInstaller(testutil.TestTag)
		prompter = testutil.NewScriptedPrompter()
		out = &bytes.Buffer{}
		overrides = testutil.CredentialOverrides()

		var err error
		persister, err = persist.New(root)
		Expect(err).NotTo(HaveOccurred())
	})

	Context("unattended with defaults", func() {
		It("reaches the done stage", func() {
			state, err := run(config.ModeUnattended)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Stage).To(Equal(provisioning.StageDone))
			Expect(prompter.Asked).To(BeEmpty())
		})

		It("writes both configuration files", func() {
			state, err := run(config.ModeUnattended)
			Expect(err).NotTo(HaveOccurred())

			env, err := persister.LoadEnv()
			Expect(err).NotTo(HaveOccurred())
			Expect(env).To(HaveKeyWithValue(config.KeyServerPort, "5000"))
			Expect(env).To(HaveKeyWithValue(config.KeyDBName, "adapt-tenant-master"))
			Expect(env).To(HaveKeyWithValue(config.KeyFrameworkRevision, "tags/"+testutil.TestTag))
			Expect(env).To(HaveKeyWithValue(config.KeyMasterTenantID, state.Created.Tenant.ID))
			Expect(env).NotTo(HaveKey(config.KeyEmail))

			settings, err := persister.LoadSettings()
			Expect(err).NotTo(HaveOccurred())
			Expect(settings).To(HaveKeyWithValue(persist.KeyRoot, persister.Root()))
			Expect(settings).To(HaveKeyWithValue(persist.KeyUseSMTP, true))
			Expect(settings).To(HaveKeyWithValue(persist.KeyDBType, persist.DBType))
			Expect(settings).To(HaveKeyWithValue(config.KeyMasterTenantName, "master"))
			Expect(settings).NotTo(HaveKey(config.KeyFrameworkRevision))
		})

		It("creates the master tenant and a Super Admin", func() {
			state, err := run(config.ModeUnattended)
			Expect(err).NotTo(HaveOccurred())

			Expect(app.Store.Tenants()).To(HaveLen(1))
			users := app.Store.Users()
			Expect(users).To(HaveLen(1))
			Expect(users[0].Email).To(Equal(testutil.TestEmail))
			Expect(users[0].TenantID).To(Equal(state.Created.Tenant.ID))
			Expect(app.Store.RolesOf(users[0].ID)).To(ConsistOf(store.RoleSuperAdmin))
		})

		It("installs the latest framework tag and stops the server", func() {
			_, err := run(config.ModeUnattended)
			Expect(err).NotTo(HaveOccurred())

			installer.AssertNumberOfCalls(GinkgoT(), "Install", 1)
			Expect(app.Stopped).To(Equal(1))
		})
	})

	Context("unattended with an existing tenant", func() {
		BeforeEach(func() {
			app.WithExistingTenant("master")
		})

		It("fails with a conflict and touches nothing", func() {
			seeded := len(app.Store.Ops())

			state, err := run(config.ModeUnattended)

			var runErr *provisioning.RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			Expect(runErr.Kind).To(Equal(provisioning.KindConflict))
			Expect(runErr.Stage).To(Equal(provisioning.StageProvisioningTenant))
			Expect(runErr.Message).To(Equal("Tenant 'master' already exists, automatic install cannot continue."))
			Expect(state.Stage).To(Equal(provisioning.StageAborted))
			Expect(app.Store.Ops()[seeded:]).To(Equal([]string{"FindTenantByName master"}))
			Expect(app.Stopped).To(Equal(1))
		})
	})

	Context("interactive with an existing tenant", func() {
		BeforeEach(func() {
			app.WithExistingTenant("master").WithExistingUser(testutil.TestEmail)
			overrides = nil
			prompter.
				Answer(config.KeyEmail, testutil.TestEmail).
				Answer(config.KeyPassword, testutil.TestPassword).
				Answer(config.KeyRetypePassword, testutil.TestPassword)
		})

		It("purges every kind before creating the tenant when confirmed", func() {
			prompter.ConfirmWith(true)
			seeded := len(app.Store.Ops())

			state, err := run(config.ModeInteractive)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Stage).To(Equal(provisioning.StageDone))

			ops := app.Store.Ops()[seeded:]
			create := indexOf(ops, "CreateTenant master")
			Expect(create).To(BeNumerically(">", 0))
			for _, kind := range []string{store.KindTenants, store.KindUsers, store.KindRoleAssignments} {
				Expect(indexOf(ops, "DestroyAll "+kind)).To(BeNumerically("<", create))
			}
			Expect(app.Store.Tenants()).To(HaveLen(1))
			Expect(app.Store.Tenants()[0].ID).To(Equal(state.Created.Tenant.ID))
		})

		It("aborts without changes when declined", func() {
			prompter.ConfirmWith(false)

			state, err := run(config.ModeInteractive)
			Expect(err).To(MatchError(provisioning.ErrDeclined))
			Expect(state.Stage).To(Equal(provisioning.StageAborted))
			Expect(app.Store.Tenants()).To(HaveLen(1))
			Expect(app.Store.Users()).To(HaveLen(1))
		})

		It("asks again when the retyped password differs", func() {
			prompter = testutil.NewScriptedPrompter().
				Answer(config.KeyEmail, testutil.TestEmail).
				Answer(config.KeyPassword, testutil.TestPassword).
				Answer(config.KeyRetypePassword, "typo", testutil.TestPassword).
				ConfirmWith(true)

			_, err := run(config.ModeInteractive)
			Expect(err).NotTo(HaveOccurred())
			Expect(countOf(prompter.Asked, config.KeyRetypePassword)).To(Equal(2))
		})
	})

	Context("when elevation fails", func() {
		BeforeEach(func() {
			app.Store.FailOn("GrantRole", errors.New("write conflict"))
		})

		It("rolls back both the user and the tenant", func() {
			state, err := run(config.ModeUnattended)

			var runErr *provisioning.RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			Expect(runErr.Kind).To(Equal(provisioning.KindProvisioning))
			Expect(runErr.Stage).To(Equal(provisioning.StageProvisioningUser))
			Expect(runErr.RollbackErr).NotTo(HaveOccurred())

			Expect(app.Store.Tenants()).To(BeEmpty())
			Expect(app.Store.Users()).To(BeEmpty())
			Expect(state.Created.Empty()).To(BeTrue())
			Expect(out.String()).To(ContainSubstring("Rolling back changes made by this install..."))
		})
	})

	Context("when credentials are missing in unattended mode", func() {
		BeforeEach(func() {
			overrides = nil
		})

		It("aborts during collection before the server starts", func() {
			state, err := run(config.ModeUnattended)

			Expect(err).To(MatchError(config.ErrRequired))
			Expect(provisioning.KindOf(err)).To(Equal(provisioning.KindValidation))
			Expect(state.Stage).To(Equal(provisioning.StageAborted))
			Expect(app.Started).To(BeEmpty())
			installer.AssertNumberOfCalls(GinkgoT(), "Install", 0)
		})
	})

	Context("when the configuration cannot be written", func() {
		BeforeEach(func() {
			file := filepath.Join(root, "not-a-dir")
			Expect(os.WriteFile(file, []byte("x"), 0o600)).To(Succeed())
			var err error
			persister, err = persist.New(file)
			Expect(err).NotTo(HaveOccurred())
		})

		It("aborts without rollback or server startup", func() {
			_, err := run(config.ModeUnattended)

			var runErr *provisioning.RunError
			Expect(errors.As(err, &runErr)).To(BeTrue())
			Expect(runErr.Kind).To(Equal(provisioning.KindPersistence))
			Expect(runErr.Message).To(Equal("Failed to save configuration items."))
			Expect(app.Started).To(BeEmpty())
			Expect(out.String()).NotTo(ContainSubstring("Rolling back"))
		})
	})
})

func indexOf(items []string, want string) int {
	for i, item := range items {
		if item == want {
			return i
		}
	}
	return -1
}

func countOf(items []string, want string) int {
	n := 0
	for _, item := range items {
		if item == want {
			n++
		}
	}
	return n
}
