package git

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/cache"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp/capability"
	"github.com/go-git/go-git/v5/plumbing/transport"
	transportclient "github.com/go-git/go-git/v5/plumbing/transport/client"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

const (
	cloneMaxFiles     = 10 * 1000
	cloneMaxTotalSize = 100 * 1024 * 1024

	// listRemoteMaxTries bounds the retry loop around ref advertisement.
	// Retrying belongs here, at the network boundary; the resolver itself
	// never retries.
	listRemoteMaxTries = 3
)

// Client defines the interface for Git remote operations
type Client interface {
	// ListRemote fetches the advertised references of a remote
	ListRemote(ctx context.Context, url string, auth *AuthConfig) (*AdvertisedRefs, error)

	// Clone clones a repository with the given configuration
	Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error)

	// GetFileContent retrieves the content of a file from the repository
	GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error)

	// Cleanup releases the repository's in-memory storage
	Cleanup(ctx context.Context, repoInfo *RepositoryInfo) error
}

// defaultGitClient implements Client using go-git
type defaultGitClient struct{}

// NewDefaultGitClient creates a new defaultGitClient
func NewDefaultGitClient() Client {
	return &defaultGitClient{}
}

// ListRemote performs the upload-pack handshake against the remote and
// returns its ref advertisement: all advertised references, the synthetic
// peeled entries for annotated tags, and the symbolic refs reported via the
// symref capability. Transient failures are retried a bounded number of
// times.
func (*defaultGitClient) ListRemote(ctx context.Context, url string, auth *AuthConfig) (*AdvertisedRefs, error) {
	var authMethod transport.AuthMethod
	if auth != nil && auth.Username != "" {
		authMethod = &githttp.BasicAuth{
			Username: auth.Username,
			Password: auth.Password,
		}
		slog.Debug("Using Git HTTP Basic authentication", "username", auth.Username)
	}

	return backoff.Retry(ctx, func() (*AdvertisedRefs, error) {
		remote, err := listRemote(ctx, url, authMethod)
		if err != nil {
			if isPermanentListError(err) {
				return nil, backoff.Permanent(err)
			}
			slog.Debug("Retrying ref advertisement", "url", url, "error", err)
			return nil, err
		}
		return remote, nil
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(listRemoteMaxTries),
	)
}

func listRemote(ctx context.Context, url string, auth transport.AuthMethod) (*AdvertisedRefs, error) {
	endpoint, err := transport.NewEndpoint(url)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidURL, url, err)
	}

	cli, err := transportclient.NewClient(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport for %q: %w", url, err)
	}

	session, err := cli.NewUploadPackSession(endpoint, auth)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload-pack session: %w", err)
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil {
			slog.Debug("Failed to close upload-pack session", "error", closeErr)
		}
	}()

	advRefs, err := session.AdvertisedReferencesContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch advertised references: %w", err)
	}

	return newAdvertisedRefs(advRefs), nil
}

// newAdvertisedRefs converts a wire-level advertisement into the resolver's
// ref map: advertised references, the synthetic peeled entries of annotated
// tags, the HEAD pseudo-ref, and the symbolic refs from the symref
// capability, which carries entries of the form "HEAD:refs/heads/main".
func newAdvertisedRefs(advRefs *packp.AdvRefs) *AdvertisedRefs {
	remote := &AdvertisedRefs{
		Refs:    make(map[plumbing.ReferenceName]string, len(advRefs.References)+len(advRefs.Peeled)+1),
		Symrefs: make(map[plumbing.ReferenceName]plumbing.ReferenceName),
	}
	for name, hash := range advRefs.References {
		remote.Refs[plumbing.ReferenceName(name)] = hash.String()
	}
	for name, hash := range advRefs.Peeled {
		remote.Refs[AnnotatedTag(plumbing.ReferenceName(name))] = hash.String()
	}
	if advRefs.Head != nil {
		remote.Refs[plumbing.HEAD] = advRefs.Head.String()
	}

	for _, symref := range advRefs.Capabilities.Get(capability.SymRef) {
		source, target, ok := strings.Cut(symref, ":")
		if !ok {
			continue
		}
		remote.Symrefs[plumbing.ReferenceName(source)] = plumbing.ReferenceName(target)
	}

	return remote
}

// isPermanentListError reports whether a listing failure cannot be cured by
// retrying.
func isPermanentListError(err error) bool {
	switch {
	case strings.Contains(err.Error(), "authentication required"),
		strings.Contains(err.Error(), "authorization failed"),
		strings.Contains(err.Error(), "repository not found"):
		return true
	}
	return false
}

// Clone clones a repository with the given configuration. Branch and Tag
// clones are shallow and single-branch; a Revision clone fetches the full
// history so the requested commit is guaranteed to be present, resolves the
// revision, and checks it out.
func (c *defaultGitClient) Clone(ctx context.Context, config *CloneConfig) (*RepositoryInfo, error) {
	cloneOptions := &gogit.CloneOptions{
		URL: config.URL,
	}

	if config.Auth != nil && config.Auth.Username != "" {
		cloneOptions.Auth = &githttp.BasicAuth{
			Username: config.Auth.Username,
			Password: config.Auth.Password,
		}
		slog.Debug("Using Git HTTP Basic authentication", "username", config.Auth.Username)
	}

	if config.Revision == "" {
		cloneOptions.Depth = 1
		if config.Branch != "" {
			cloneOptions.ReferenceName = plumbing.NewBranchReferenceName(config.Branch)
			cloneOptions.SingleBranch = true
		} else if config.Tag != "" {
			cloneOptions.ReferenceName = plumbing.NewTagReferenceName(config.Tag)
			cloneOptions.SingleBranch = true
		}
	}

	// go-git wants separate filesystems for the storer and the checked out
	// files. Both are quota-limited in-memory filesystems so a hostile
	// remote cannot exhaust the process.
	workFS := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      cloneMaxFiles,
		TotalFileSize: cloneMaxTotalSize,
	}
	storerFS := &LimitedFs{
		Fs:            memfs.New(),
		MaxFiles:      cloneMaxFiles,
		TotalFileSize: cloneMaxTotalSize,
	}
	storerCache := cache.NewObjectLRUDefault()
	storer := filesystem.NewStorage(storerFS, storerCache)

	repo, err := gogit.CloneContext(ctx, storer, workFS, cloneOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	repoInfo := &RepositoryInfo{
		Repository:       repo,
		RemoteURL:        config.URL,
		Ref:              cloneOptions.ReferenceName,
		storerFilesystem: storerFS,
		objectCache:      storerCache,
	}

	if config.Revision != "" {
		if err := checkoutRevision(repo, config.Revision); err != nil {
			return nil, err
		}
	}

	if err := c.updateRepositoryInfo(repoInfo); err != nil {
		return nil, fmt.Errorf("failed to update repository info: %w", err)
	}

	return repoInfo, nil
}

// checkoutRevision detaches the worktree at the requested revision. The
// revision is either a full commit SHA or anything git-rev-parse can
// resolve locally after the clone.
func checkoutRevision(repo *gogit.Repository, revision string) error {
	workTree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	var hash plumbing.Hash
	if IsRevisionSHA(revision) {
		hash = plumbing.NewHash(revision)
	} else {
		resolved, err := repo.ResolveRevision(plumbing.Revision(revision))
		if err != nil {
			return fmt.Errorf("revision %q: %w", revision, ErrReferenceNotFound)
		}
		hash = *resolved
	}

	if err := workTree.Checkout(&gogit.CheckoutOptions{Hash: hash}); err != nil {
		return fmt.Errorf("failed to checkout revision %s: %w", revision, err)
	}
	return nil
}

// GetFileContent retrieves the content of a file from the repository
func (*defaultGitClient) GetFileContent(repoInfo *RepositoryInfo, path string) ([]byte, error) {
	if repoInfo == nil || repoInfo.Repository == nil {
		return nil, fmt.Errorf("repository is nil")
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	commit, err := repoInfo.Repository.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	file, err := tree.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s: %w", path, err)
	}

	content, err := file.Contents()
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}

	return []byte(content), nil
}

// Cleanup releases the repository's in-memory storage
func (*defaultGitClient) Cleanup(_ context.Context, repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	if repoInfo.objectCache != nil {
		slog.Debug("Clearing object cache")
		repoInfo.objectCache.Clear()
	}

	worktree, err := repoInfo.Repository.Worktree()
	if err == nil && worktree.Filesystem != nil {
		slog.Debug("Clearing worktree filesystem")
		_ = util.RemoveAll(worktree.Filesystem, "/")
	}

	if repoInfo.storerFilesystem != nil {
		slog.Debug("Clearing storer filesystem")
		_ = util.RemoveAll(repoInfo.storerFilesystem, "/")
	}

	repoInfo.objectCache = nil
	repoInfo.storerFilesystem = nil
	repoInfo.Repository = nil

	runtime.GC()
	return nil
}

// updateRepositoryInfo updates the repository info with current state
func (*defaultGitClient) updateRepositoryInfo(repoInfo *RepositoryInfo) error {
	if repoInfo == nil || repoInfo.Repository == nil {
		return fmt.Errorf("repository is nil")
	}

	ref, err := repoInfo.Repository.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	if ref.Name().IsBranch() {
		repoInfo.Branch = ref.Name().Short()
	}
	if repoInfo.Ref == "" {
		repoInfo.Ref = ref.Name()
	}

	return nil
}
