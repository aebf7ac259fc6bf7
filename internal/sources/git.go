package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/indrajithi/poetry/internal/config"
	"github.com/indrajithi/poetry/internal/git"
)

const (
	// DefaultManifestFile is the default project payload read from Git
	// sources when no path is configured
	DefaultManifestFile = "pyproject.toml"
)

// gitSourceHandler fetches project content from Git repositories
type gitSourceHandler struct {
	gitClient git.Client
	cache     *FetchCache
}

var _ SourceHandler = (*gitSourceHandler)(nil)

// NewGitSourceHandler creates a new Git source handler backed by the given
// fetch cache. Pass a fresh cache for isolated fetches.
func NewGitSourceHandler(cache *FetchCache) SourceHandler {
	return &gitSourceHandler{
		gitClient: git.NewDefaultGitClient(),
		cache:     cache,
	}
}

// Validate validates the Git source configuration
func (*gitSourceHandler) Validate(source *config.SourceConfig) error {
	if source == nil {
		return fmt.Errorf("source configuration cannot be nil")
	}

	if source.Git == nil {
		return fmt.Errorf("git configuration is required")
	}

	gitSource := source.Git

	if gitSource.Repository == "" {
		return fmt.Errorf("git repository URL cannot be empty")
	}

	// Validate mutually exclusive branch/tag/revision
	specified := 0
	if gitSource.Branch != "" {
		specified++
	}
	if gitSource.Tag != "" {
		specified++
	}
	if gitSource.Revision != "" {
		specified++
	}

	if specified > 1 {
		return fmt.Errorf("only one of branch, tag, or revision may be specified")
	}

	return nil
}

// resolveRef resolves the configured branch/tag/revision against the
// remote's advertisement using the handler's client.
func (h *gitSourceHandler) resolveRef(ctx context.Context, gitSource *config.GitConfig) (*git.RefSpec, *git.AdvertisedRefs, error) {
	return ResolveGitRef(ctx, h.gitClient, gitSource)
}

// ResolveGitRef lists the remote's advertised references and resolves the
// configured branch/tag/revision against them.
func ResolveGitRef(ctx context.Context, client git.Client, gitSource *config.GitConfig) (*git.RefSpec, *git.AdvertisedRefs, error) {
	auth, err := remoteAuth(gitSource)
	if err != nil {
		return nil, nil, err
	}

	remote, err := client.ListRemote(ctx, gitSource.Repository, auth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list remote refs: %w", err)
	}

	spec := git.NewRefSpec(gitSource.Branch, gitSource.Revision, gitSource.Tag)
	if gitSource.Tag != "" {
		// A directly requested tag pins the reference at construction
		// time; resolution then only needs to confirm the remote has it.
		spec.Ref = plumbing.NewTagReferenceName(gitSource.Tag)
		if _, ok := remote.Refs[spec.Ref]; !ok {
			return nil, nil, fmt.Errorf("tag %q: %w", gitSource.Tag, git.ErrReferenceNotFound)
		}
	}
	if err := spec.Resolve(remote); err != nil {
		return nil, nil, fmt.Errorf("failed to resolve %q: %w", gitSource.Repository, err)
	}

	return spec, remote, nil
}

// FetchProject retrieves the project payload from the Git repository. The
// fetch is pinned to the reference the source resolves to; results are
// memoized per (repository, resolved reference) in the handler's cache.
func (h *gitSourceHandler) FetchProject(ctx context.Context, source *config.SourceConfig) (*FetchResult, error) {
	if err := h.Validate(source); err != nil {
		return nil, fmt.Errorf("source validation failed: %w", err)
	}

	gitSource := source.Git

	spec, _, err := h.resolveRef(ctx, gitSource)
	if err != nil {
		return nil, err
	}

	return h.cache.GetOrFetch(gitSource.Repository, spec.Ref, func() (*FetchResult, error) {
		return h.fetchProject(ctx, source, spec)
	})
}

func (h *gitSourceHandler) fetchProject(ctx context.Context, source *config.SourceConfig, spec *git.RefSpec) (*FetchResult, error) {
	gitSource := source.Git

	auth, err := remoteAuth(gitSource)
	if err != nil {
		return nil, err
	}

	cloneConfig := &git.CloneConfig{
		URL:      gitSource.Repository,
		Branch:   spec.Branch,
		Tag:      spec.Tag,
		Revision: spec.Revision,
		Auth:     auth,
	}

	startTime := time.Now()
	slog.Info("Starting git clone",
		"repository", cloneConfig.URL,
		"branch", cloneConfig.Branch,
		"tag", cloneConfig.Tag,
		"revision", cloneConfig.Revision)

	repoInfo, err := h.gitClient.Clone(ctx, cloneConfig)
	cloneDuration := time.Since(startTime)

	if err != nil {
		slog.Error("Git clone failed",
			"error", err,
			"repository", cloneConfig.URL,
			"duration", cloneDuration.String())
		return nil, fmt.Errorf("failed to clone repository: %w", err)
	}

	slog.Info("Git clone completed",
		"repository", cloneConfig.URL,
		"duration", cloneDuration.String(),
		"ref", spec.Ref)

	// Ensure cleanup
	defer func() {
		if cleanupErr := h.gitClient.Cleanup(ctx, repoInfo); cleanupErr != nil {
			// Log error but don't fail the operation
			slog.Error("Failed to cleanup repository", "error", cleanupErr)
		}
	}()

	name := source.Name
	if name == "" {
		name, err = git.NameFromSourceURL(gitSource.Repository)
		if err != nil {
			return nil, err
		}
	}

	info, err := git.Info(repoInfo.Repository)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository info: %w", err)
	}

	filePath := gitSource.Path
	if filePath == "" {
		filePath = DefaultManifestFile
	}

	data, err := h.gitClient.GetFileContent(repoInfo, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file %s from repository: %w", filePath, err)
	}

	return &FetchResult{
		Name:     name,
		Origin:   info.Origin,
		Revision: info.Revision,
		Ref:      spec.Ref,
		Hash:     fmt.Sprintf("%x", sha256.Sum256(data)),
		Data:     data,
	}, nil
}

// CurrentRevision resolves the source against the remote's advertisement
// and returns the object ID of the resolved reference. No clone happens;
// this is the cheap change-detection path.
func (h *gitSourceHandler) CurrentRevision(ctx context.Context, source *config.SourceConfig) (string, error) {
	if err := h.Validate(source); err != nil {
		return "", fmt.Errorf("source validation failed: %w", err)
	}

	spec, remote, err := h.resolveRef(ctx, source.Git)
	if err != nil {
		return "", err
	}

	// An unresolved revision is already an object ID; the advertisement
	// has no entry for it.
	if spec.Revision != "" && git.IsRevisionSHA(spec.Revision) {
		return spec.Revision, nil
	}

	objectID, ok := remote.Refs[spec.Ref]
	if !ok {
		return "", fmt.Errorf("resolved ref %q: %w", spec.Ref, git.ErrReferenceNotFound)
	}
	return objectID, nil
}

// remoteAuth builds clone credentials from the source's auth settings.
func remoteAuth(gitSource *config.GitConfig) (*git.AuthConfig, error) {
	if gitSource.Auth == nil || gitSource.Auth.Username == "" {
		return nil, nil
	}

	password, err := gitSource.Auth.GetPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to get git password: %w", err)
	}

	return &git.AuthConfig{
		Username: gitSource.Auth.Username,
		Password: password,
	}, nil
}
