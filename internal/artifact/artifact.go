// Package artifact fetches the framework source the application builds against.
//
// A Source names a repository and a revision. Repositories are either git
// remotes, fetched with the git binary, or s3://bucket/prefix locations that
// hold one <tag>.tar.gz archive per release.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// TagRefPrefix marks a revision that names a tag rather than a branch.
const TagRefPrefix = "tags/"

var (
	// ErrNoVersions is returned when a repository has no release tags.
	ErrNoVersions = errors.New("no release versions found")

	// ErrRevisionNotFound is returned when the requested revision does not exist.
	ErrRevisionNotFound = errors.New("revision not found")
)

// Source identifies what to install.
type Source struct {
	Repository string
	// Revision is a branch name or "tags/<tag>". Empty means the default branch.
	Revision string
	// Force discards any existing copy before installing.
	Force bool
}

// Tag returns the tag named by Revision, or "" when Revision is a branch.
func (s Source) Tag() string {
	if strings.HasPrefix(s.Revision, TagRefPrefix) {
		return strings.TrimPrefix(s.Revision, TagRefPrefix)
	}
	return ""
}

// Installer resolves and installs framework releases.
type Installer interface {
	// LatestVersion returns the newest stable release tag of repository.
	LatestVersion(ctx context.Context, repository string) (string, error)

	// Install places the requested revision in the installer's target directory.
	Install(ctx context.Context, src Source) error
}

// LatestTag returns the highest semantic version among tags, ignoring
// pre-releases and tags that are not versions. The tag is returned as given.
func LatestTag(tags []string) (string, error) {
	type candidate struct {
		tag     string
		version *semver.Version
	}

	var candidates []candidate
	for _, tag := range tags {
		v, err := semver.NewVersion(strings.TrimSpace(tag))
		if err != nil || v.Prerelease() != "" {
			continue
		}
		candidates = append(candidates, candidate{tag: strings.TrimSpace(tag), version: v})
	}
	if len(candidates) == 0 {
		return "", ErrNoVersions
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].version.GreaterThan(candidates[j].version)
	})
	return candidates[0].tag, nil
}

// Router dispatches to the installer matching a repository's scheme.
type Router struct {
	Git Installer
	// NewS3 builds the object-storage installer on first use.
	NewS3 func(ctx context.Context) (Installer, error)

	s3 Installer
}

// IsObjectStorage reports whether repository is an s3:// location.
func IsObjectStorage(repository string) bool {
	return strings.HasPrefix(repository, "s3://")
}

// LatestVersion implements Installer.
func (r *Router) LatestVersion(ctx context.Context, repository string) (string, error) {
	inst, err := r.pick(ctx, repository)
	if err != nil {
		return "", err
	}
	return inst.LatestVersion(ctx, repository)
}

// Install implements Installer.
func (r *Router) Install(ctx context.Context, src Source) error {
	inst, err := r.pick(ctx, src.Repository)
	if err != nil {
		return err
	}
	return inst.Install(ctx, src)
}

func (r *Router) pick(ctx context.Context, repository string) (Installer, error) {
	if !IsObjectStorage(repository) {
		if r.Git == nil {
			return nil, fmt.Errorf("no git installer configured")
		}
		return r.Git, nil
	}
	if r.s3 == nil {
		if r.NewS3 == nil {
			return nil, fmt.Errorf("object storage repositories are not supported")
		}
		inst, err := r.NewS3(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create object storage installer: %w", err)
		}
		r.s3 = inst
	}
	return r.s3, nil
}
