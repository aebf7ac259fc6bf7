package git

import (
	"fmt"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
)

// originRemote is the remote consulted for a repository's source URL.
const originRemote = "origin"

// Repository is the narrow view of a local repository handle needed to read
// remote and revision information. *go-git.Repository satisfies it.
type Repository interface {
	Config() (*gitconfig.Config, error)
	Head() (*plumbing.Reference, error)
}

// RepoInfo aggregates the origin URL and current revision of a repository.
type RepoInfo struct {
	Origin   string
	Revision string
}

// GetRemoteURL returns the URL of the repository's origin remote.
func GetRemoteURL(repo Repository) (string, error) {
	cfg, err := repo.Config()
	if err != nil {
		return "", fmt.Errorf("reading repository config: %w", err)
	}

	remote, ok := cfg.Remotes[originRemote]
	if !ok || len(remote.URLs) == 0 {
		return "", fmt.Errorf("remote %q has no URL configured", originRemote)
	}
	return remote.URLs[0], nil
}

// GetRevision returns the object ID the repository's HEAD points to.
func GetRevision(repo Repository) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("reading HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// Info combines GetRemoteURL and GetRevision into a single read. No caching
// happens at this layer; callers that fetch repeatedly hold their own cache.
func Info(repo Repository) (*RepoInfo, error) {
	origin, err := GetRemoteURL(repo)
	if err != nil {
		return nil, err
	}

	revision, err := GetRevision(repo)
	if err != nil {
		return nil, err
	}

	return &RepoInfo{Origin: origin, Revision: revision}, nil
}
