// Package git resolves branch/tag/revision requests against remote
// repositories and reads project sources pinned to the resolved reference.
package git

import (
	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
)

// CloneConfig describes how to obtain a repository. At most one of Branch,
// Tag, and Revision may be set; Revision also accepts a full commit SHA.
type CloneConfig struct {
	// URL is the Git repository URL (HTTP/HTTPS/SSH or scp-style)
	URL string

	// Branch is the Git branch to use (mutually exclusive with Tag and Revision)
	Branch string

	// Tag is the Git tag to use (mutually exclusive with Branch and Revision)
	Tag string

	// Revision is a commit SHA or tag-like token to use (mutually exclusive
	// with Branch and Tag)
	Revision string

	// Auth holds optional credentials for the remote
	Auth *AuthConfig
}

// AuthConfig holds HTTP basic auth credentials for a Git remote.
type AuthConfig struct {
	Username string
	Password string
}

// RepositoryInfo holds a cloned repository together with the information
// needed to release its in-memory storage again.
type RepositoryInfo struct {
	// Repository is the open repository handle
	Repository *gogit.Repository

	// RemoteURL is the URL the repository was cloned from
	RemoteURL string

	// Branch is the short name of the checked-out branch, if any
	Branch string

	// Ref is the concrete reference the clone was pinned to
	Ref plumbing.ReferenceName

	storerFilesystem billy.Filesystem
	objectCache      cache.Object
}
