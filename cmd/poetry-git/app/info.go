package app

import (
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/spf13/cobra"

	"github.com/indrajithi/poetry/internal/git"
)

var infoCmd = &cobra.Command{
	Use:   "info [path]",
	Short: "Print the origin URL and revision of a local repository",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInfo,
}

func runInfo(_ *cobra.Command, args []string) error {
	path := "."
	if len(args) > 0 {
		path = args[0]
	}

	repo, err := gogit.PlainOpen(path)
	if err != nil {
		return fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	info, err := git.Info(repo)
	if err != nil {
		return err
	}

	fmt.Printf("origin: %s\n", info.Origin)
	fmt.Printf("revision: %s\n", info.Revision)
	return nil
}
