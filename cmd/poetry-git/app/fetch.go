package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/indrajithi/poetry/internal/config"
	"github.com/indrajithi/poetry/internal/sources"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch project content from the configured sources",
	Long: `Fetch reads a configuration file, resolves every source against its
remote, and fetches the project payload pinned to the resolved reference.

The configuration file (--config) lists Git and file sources; see the
examples/ directory for sample configurations. Payloads are written to
the output directory as <name>.toml.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("config", "", "Path to configuration file (YAML format, required)")
	fetchCmd.Flags().String("output-dir", "", "Directory to write fetched payloads to (optional)")

	err := viper.BindPFlag("config", fetchCmd.Flags().Lookup("config"))
	if err != nil {
		slog.Error("Error binding config flag", "error", err)
	}

	if err := fetchCmd.MarkFlagRequired("config"); err != nil {
		slog.Error("Error marking config flag as required", "error", err)
	}
}

func runFetch(cmd *cobra.Command, _ []string) error {
	configPath := viper.GetString("config")
	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	outputDir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return err
	}
	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	factory := sources.NewSourceHandlerFactory(sources.NewFetchCache())

	for i := range cfg.Sources {
		source := &cfg.Sources[i]

		handler, err := factory.CreateHandler(source.Type())
		if err != nil {
			return fmt.Errorf("source %q: %w", source.Name, err)
		}

		result, err := handler.FetchProject(cmd.Context(), source)
		if err != nil {
			return fmt.Errorf("source %q: %w", source.Name, err)
		}

		slog.Info("Fetched project",
			"name", result.Name,
			"origin", result.Origin,
			"ref", result.Ref,
			"revision", result.Revision,
			"hash", result.Hash)

		if outputDir != "" {
			path := filepath.Join(outputDir, result.Name+".toml")
			if err := os.WriteFile(path, result.Data, 0o600); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
		}
	}

	return nil
}
