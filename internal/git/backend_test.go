package git

import (
	"errors"
	"testing"

	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOriginURL = "https://github.com/python-poetry/poetry.git"

// fakeRepository is a stand-in repository handle with canned config and
// HEAD reads.
type fakeRepository struct {
	cfg     *gitconfig.Config
	head    *plumbing.Reference
	cfgErr  error
	headErr error
}

func (f *fakeRepository) Config() (*gitconfig.Config, error) { return f.cfg, f.cfgErr }

func (f *fakeRepository) Head() (*plumbing.Reference, error) { return f.head, f.headErr }

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		cfg: &gitconfig.Config{
			Remotes: map[string]*gitconfig.RemoteConfig{
				"origin": {
					Name: "origin",
					URLs: []string{testOriginURL},
				},
			},
		},
		head: plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash(validSHA)),
	}
}

func TestGetRemoteURL(t *testing.T) {
	t.Parallel()

	url, err := GetRemoteURL(newFakeRepository())
	require.NoError(t, err)
	assert.Equal(t, testOriginURL, url)
}

func TestGetRemoteURL_NoOrigin(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	delete(repo.cfg.Remotes, "origin")

	_, err := GetRemoteURL(repo)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "origin")
}

func TestGetRemoteURL_ConfigError(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.cfgErr = errors.New("config unreadable")

	_, err := GetRemoteURL(repo)
	require.ErrorContains(t, err, "config unreadable")
}

func TestGetRevision(t *testing.T) {
	t.Parallel()

	revision, err := GetRevision(newFakeRepository())
	require.NoError(t, err)
	assert.Equal(t, validSHA, revision)
}

func TestGetRevision_HeadError(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.headErr = errors.New("reference not found")

	_, err := GetRevision(repo)
	require.Error(t, err)
}

func TestInfo(t *testing.T) {
	t.Parallel()

	info, err := Info(newFakeRepository())
	require.NoError(t, err)

	assert.Equal(t, testOriginURL, info.Origin)
	assert.Equal(t, validSHA, info.Revision)
}

func TestInfo_PropagatesErrors(t *testing.T) {
	t.Parallel()

	repo := newFakeRepository()
	repo.headErr = errors.New("reference not found")

	_, err := Info(repo)
	require.Error(t, err)
}
