package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/indrajithi/poetry/internal/config"
	"github.com/indrajithi/poetry/internal/git"
	"github.com/indrajithi/poetry/internal/sources"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <repository-url>",
	Short: "Resolve a branch, tag, or revision against a remote",
	Long: `Resolve looks up the remote's advertised references and prints the
concrete reference and object ID the requested branch, tag, or revision
maps to. Without flags the remote's default branch is resolved.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().String("branch", "", "Branch to resolve")
	resolveCmd.Flags().String("tag", "", "Tag to resolve")
	resolveCmd.Flags().String("revision", "", "Commit SHA or tag-like token to resolve")
	resolveCmd.Flags().String("username", "", "Username for remote authentication")
	resolveCmd.MarkFlagsMutuallyExclusive("branch", "tag", "revision")
}

// gitConfigFromFlags builds a Git source configuration from command flags.
func gitConfigFromFlags(cmd *cobra.Command, repository string) (*config.GitConfig, error) {
	branch, err := cmd.Flags().GetString("branch")
	if err != nil {
		return nil, err
	}
	tag, err := cmd.Flags().GetString("tag")
	if err != nil {
		return nil, err
	}
	revision, err := cmd.Flags().GetString("revision")
	if err != nil {
		return nil, err
	}
	username, err := cmd.Flags().GetString("username")
	if err != nil {
		return nil, err
	}

	gitSource := &config.GitConfig{
		Repository: repository,
		Branch:     branch,
		Tag:        tag,
		Revision:   revision,
	}
	if username != "" {
		gitSource.Auth = &config.AuthConfig{Username: username}
	}

	return gitSource, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	gitSource, err := gitConfigFromFlags(cmd, args[0])
	if err != nil {
		return err
	}

	spec, remote, err := sources.ResolveGitRef(cmd.Context(), git.NewDefaultGitClient(), gitSource)
	if err != nil {
		return err
	}

	objectID := remote.Refs[spec.Ref]
	if spec.Revision != "" && git.IsRevisionSHA(spec.Revision) {
		objectID = spec.Revision
	}

	fmt.Printf("ref: %s\n", spec.Ref)
	fmt.Printf("object: %s\n", objectID)
	return nil
}
