package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
)

// CommandRunner executes name with args in dir and returns its combined output.
type CommandRunner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	// #nosec G204 - the binary is fixed by the caller; args are repository coordinates
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// GitInstaller installs the framework by cloning a git repository.
type GitInstaller struct {
	Dir string
	Run CommandRunner
	Log logr.Logger
}

// NewGitInstaller returns an installer that checks out into dir.
func NewGitInstaller(dir string, log logr.Logger) *GitInstaller {
	return &GitInstaller{Dir: dir, Run: ExecRunner, Log: log}
}

// LatestVersion lists the remote tags and returns the newest release.
func (g *GitInstaller) LatestVersion(ctx context.Context, repository string) (string, error) {
	out, err := g.git(ctx, "", "ls-remote", "--tags", "--refs", repository)
	if err != nil {
		return "", fmt.Errorf("failed to list tags of %s: %w", repository, err)
	}

	var tags []string
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		tags = append(tags, strings.TrimPrefix(fields[1], "refs/tags/"))
	}

	tag, err := LatestTag(tags)
	if err != nil {
		return "", fmt.Errorf("%s: %w", repository, err)
	}
	return tag, nil
}

// Install clones src.Repository into the target directory and checks out
// src.Revision. An existing checkout is reused unless src.Force is set.
func (g *GitInstaller) Install(ctx context.Context, src Source) error {
	exists, err := dirExists(g.Dir)
	if err != nil {
		return err
	}

	if exists && src.Force {
		g.Log.Info("removing existing framework checkout", "dir", g.Dir)
		if err := os.RemoveAll(g.Dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", g.Dir, err)
		}
		exists = false
	}

	if exists {
		g.Log.Info("updating existing framework checkout", "dir", g.Dir)
		if _, err := g.git(ctx, g.Dir, "fetch", "--tags", "origin"); err != nil {
			return fmt.Errorf("failed to fetch %s: %w", src.Repository, err)
		}
	} else {
		g.Log.Info("cloning framework", "repository", src.Repository, "dir", g.Dir)
		if _, err := g.git(ctx, "", "clone", src.Repository, g.Dir); err != nil {
			return fmt.Errorf("failed to clone %s: %w", src.Repository, err)
		}
	}

	if src.Revision == "" {
		return nil
	}
	if _, err := g.git(ctx, g.Dir, "checkout", src.Revision); err != nil {
		return fmt.Errorf("failed to check out %s: %w: %w", src.Revision, ErrRevisionNotFound, err)
	}
	g.Log.Info("framework installed", "revision", src.Revision)
	return nil
}

func (g *GitInstaller) git(ctx context.Context, dir string, args ...string) ([]byte, error) {
	run := g.Run
	if run == nil {
		run = ExecRunner
	}
	out, err := run(ctx, dir, "git", args...)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return out, err
		}
		return out, fmt.Errorf("%w: %s", err, msg)
	}
	return out, nil
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", path, err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("%s exists and is not a directory", path)
	}
	return true, nil
}
