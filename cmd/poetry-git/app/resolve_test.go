package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitConfigFromFlags(t *testing.T) {
	t.Parallel()

	cmd := resolveCmd
	require.NoError(t, cmd.Flags().Set("branch", "main"))
	require.NoError(t, cmd.Flags().Set("username", "bot"))
	t.Cleanup(func() {
		_ = cmd.Flags().Set("branch", "")
		_ = cmd.Flags().Set("username", "")
	})

	gitSource, err := gitConfigFromFlags(cmd, "https://github.com/python-poetry/poetry.git")
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/python-poetry/poetry.git", gitSource.Repository)
	assert.Equal(t, "main", gitSource.Branch)
	assert.Empty(t, gitSource.Tag)
	assert.Empty(t, gitSource.Revision)
	require.NotNil(t, gitSource.Auth)
	assert.Equal(t, "bot", gitSource.Auth.Username)
}
