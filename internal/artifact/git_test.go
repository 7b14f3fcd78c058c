package artifact

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGit struct {
	calls   []string
	outputs map[string]string
	fail    map[string]error
}

func (f *fakeGit) run(_ context.Context, _ string, name string, args ...string) ([]byte, error) {
	call := name + " " + strings.Join(args, " ")
	f.calls = append(f.calls, call)
	if err := f.fail[args[0]]; err != nil {
		return []byte("fatal: " + args[0] + " failed"), err
	}
	return []byte(f.outputs[args[0]]), nil
}

func TestGitInstaller_LatestVersion(t *testing.T) {
	fake := &fakeGit{outputs: map[string]string{
		"ls-remote": "abc123\trefs/tags/v2.0.17\n" +
			"def456\trefs/tags/v2.1.0\n" +
			"0a0a0a\trefs/tags/v3.0.0-alpha\n" +
			"\n",
	}}
	g := &GitInstaller{Dir: t.TempDir(), Run: fake.run, Log: logr.Discard()}

	tag, err := g.LatestVersion(context.Background(), "https://example.com/framework.git")
	require.NoError(t, err)
	assert.Equal(t, "v2.1.0", tag)
	assert.Equal(t, []string{"git ls-remote --tags --refs https://example.com/framework.git"}, fake.calls)
}

func TestGitInstaller_LatestVersionFailure(t *testing.T) {
	fake := &fakeGit{fail: map[string]error{"ls-remote": errors.New("exit status 128")}}
	g := &GitInstaller{Run: fake.run, Log: logr.Discard()}

	_, err := g.LatestVersion(context.Background(), "https://example.com/missing.git")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fatal: ls-remote failed")
}

func TestGitInstaller_FreshClone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "adapt_framework")
	fake := &fakeGit{}
	g := &GitInstaller{Dir: dir, Run: fake.run, Log: logr.Discard()}

	err := g.Install(context.Background(), Source{Repository: "repo.git", Revision: "tags/v2.1.0"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"git clone repo.git " + dir,
		"git checkout tags/v2.1.0",
	}, fake.calls)
}

func TestGitInstaller_ExistingCheckout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker"), []byte("x"), 0o600))

	t.Run("reused without force", func(t *testing.T) {
		fake := &fakeGit{}
		g := &GitInstaller{Dir: dir, Run: fake.run, Log: logr.Discard()}

		require.NoError(t, g.Install(context.Background(), Source{Repository: "repo.git", Revision: "develop"}))
		assert.Equal(t, []string{"git fetch --tags origin", "git checkout develop"}, fake.calls)
		assert.FileExists(t, filepath.Join(dir, "marker"))
	})

	t.Run("discarded with force", func(t *testing.T) {
		fake := &fakeGit{}
		g := &GitInstaller{Dir: dir, Run: fake.run, Log: logr.Discard()}

		require.NoError(t, g.Install(context.Background(), Source{Repository: "repo.git", Force: true}))
		assert.Equal(t, []string{"git clone repo.git " + dir}, fake.calls)
		assert.NoDirExists(t, dir, "the fake clone does not recreate the directory")
	})
}

func TestGitInstaller_UnknownRevision(t *testing.T) {
	fake := &fakeGit{fail: map[string]error{"checkout": errors.New("exit status 1")}}
	g := &GitInstaller{Dir: filepath.Join(t.TempDir(), "fw"), Run: fake.run, Log: logr.Discard()}

	err := g.Install(context.Background(), Source{Repository: "repo.git", Revision: "tags/v9.9.9"})
	assert.ErrorIs(t, err, ErrRevisionNotFound)
}

func TestGitInstaller_TargetIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	g := &GitInstaller{Dir: path, Run: (&fakeGit{}).run, Log: logr.Discard()}
	err := g.Install(context.Background(), Source{Repository: "repo.git"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
