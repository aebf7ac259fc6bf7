package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/indrajithi/poetry/internal/config"
	"github.com/indrajithi/poetry/internal/git"
	"github.com/indrajithi/poetry/internal/versions"
)

const (
	tagRefPrefix    = "refs/tags/"
	peeledRefSuffix = "^{}"
)

var tagsCmd = &cobra.Command{
	Use:   "tags <repository-url>",
	Short: "List the tags advertised by a remote",
	Long: `Tags lists the tags a remote advertises, newest first. Semantic
versions sort by precedence; anything else sorts lexicographically.`,
	Args: cobra.ExactArgs(1),
	RunE: runTags,
}

func init() {
	tagsCmd.Flags().String("username", "", "Username for remote authentication")
}

func runTags(cmd *cobra.Command, args []string) error {
	username, err := cmd.Flags().GetString("username")
	if err != nil {
		return err
	}

	var auth *git.AuthConfig
	if username != "" {
		password, err := (&config.AuthConfig{Username: username}).GetPassword()
		if err != nil {
			return err
		}
		auth = &git.AuthConfig{Username: username, Password: password}
	}

	remote, err := git.NewDefaultGitClient().ListRemote(cmd.Context(), args[0], auth)
	if err != nil {
		return err
	}

	for _, tag := range remoteTags(remote) {
		fmt.Println(tag)
	}
	return nil
}

// remoteTags extracts tag names from an advertisement, newest first.
// Peeled entries point at the same tag and are skipped.
func remoteTags(remote *git.AdvertisedRefs) []string {
	var tags []string
	for ref := range remote.Refs {
		name := string(ref)
		if !strings.HasPrefix(name, tagRefPrefix) || strings.HasSuffix(name, peeledRefSuffix) {
			continue
		}
		tags = append(tags, strings.TrimPrefix(name, tagRefPrefix))
	}

	sort.Slice(tags, func(i, j int) bool {
		return versions.IsNewerVersion(tags[i], tags[j])
	})
	return tags
}
