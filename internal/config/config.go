// Package config provides configuration loading and management for git
// package sources.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		// Validate the path to prevent path traversal attacks
		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// EnvPrefix is the prefix for environment variables read by the
// application.
const EnvPrefix = "POETRY"

// Source types supported by the configuration
const (
	SourceTypeGit  = "git"
	SourceTypeFile = "file"
)

// Config represents the root configuration structure
type Config struct {
	// Sources is the list of package sources to fetch from
	Sources []SourceConfig `yaml:"sources"`
}

// SourceConfig defines a single package source configuration. Exactly one
// of Git or File must be set.
type SourceConfig struct {
	// Name is the identifier for this source; derived from the repository
	// URL or file path when empty
	Name string `yaml:"name,omitempty"`

	// Git defines a Git repository to fetch the source from
	Git *GitConfig `yaml:"git,omitempty"`

	// File defines a local path to read the source from
	File *FileConfig `yaml:"file,omitempty"`
}

// Type returns the source type, or an empty string when no source section
// is set.
func (s *SourceConfig) Type() string {
	switch {
	case s.Git != nil:
		return SourceTypeGit
	case s.File != nil:
		return SourceTypeFile
	default:
		return ""
	}
}

// GitConfig defines Git source settings
type GitConfig struct {
	// Repository is the Git repository URL (HTTP/HTTPS/SSH or scp-style)
	Repository string `yaml:"repository"`

	// Branch is the Git branch to use (mutually exclusive with Tag and Revision)
	Branch string `yaml:"branch,omitempty"`

	// Tag is the Git tag to use (mutually exclusive with Branch and Revision)
	Tag string `yaml:"tag,omitempty"`

	// Revision is a commit SHA or tag-like token to use (mutually exclusive
	// with Branch and Tag)
	Revision string `yaml:"revision,omitempty"`

	// Path is the path to the project manifest within the repository
	Path string `yaml:"path,omitempty"`

	// Auth holds optional credentials for the remote
	Auth *AuthConfig `yaml:"auth,omitempty"`
}

// FileConfig defines local file source settings
type FileConfig struct {
	// Path is the path to the project manifest on the local filesystem
	Path string `yaml:"path"`
}

// AuthConfig defines credentials for a Git remote
type AuthConfig struct {
	// Username is the user to authenticate as
	Username string `yaml:"username"`

	// PasswordFile is the path to a file containing the password or token.
	// This is the recommended approach for production deployments.
	PasswordFile string `yaml:"passwordFile,omitempty"`
}

// GetPassword returns the remote password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from POETRY_GIT_PASSWORD environment variable
//
// The password from file will have leading/trailing whitespace trimmed.
func (a *AuthConfig) GetPassword() (string, error) {
	if a.PasswordFile != "" {
		// Use filepath.Clean to prevent path traversal attacks
		cleanPath := filepath.Clean(a.PasswordFile)

		data, err := os.ReadFile(cleanPath)
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", a.PasswordFile, err)
		}

		return strings.TrimSpace(string(data)), nil
	}

	if envPassword := os.Getenv("POETRY_GIT_PASSWORD"); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no password configured: set passwordFile or POETRY_GIT_PASSWORD environment variable",
	)
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	// As of now, this is required because there's no other options to load
	// configuration. Once we add more options, we can remove this check.
	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source must be configured")
	}

	sourceNames := make(map[string]bool)
	for i, source := range c.Sources {
		prefix := fmt.Sprintf("source[%d]", i)
		if source.Name != "" {
			prefix = fmt.Sprintf("source[%d] (%s)", i, source.Name)

			if sourceNames[source.Name] {
				return fmt.Errorf("%s: duplicate source name", prefix)
			}
			sourceNames[source.Name] = true
		}

		if source.Git != nil && source.File != nil {
			return fmt.Errorf("%s: only one of git or file may be configured", prefix)
		}

		switch source.Type() {
		case SourceTypeGit:
			if err := validateGitConfig(source.Git, prefix); err != nil {
				return err
			}
		case SourceTypeFile:
			if source.File.Path == "" {
				return fmt.Errorf("%s: file.path is required", prefix)
			}
		default:
			return fmt.Errorf("%s: a git or file section is required", prefix)
		}
	}

	return nil
}

// validateGitConfig validates Git-specific configuration
func validateGitConfig(git *GitConfig, prefix string) error {
	if git.Repository == "" {
		return fmt.Errorf("%s: git.repository is required", prefix)
	}

	// Validate mutually exclusive branch/tag/revision
	specified := 0
	if git.Branch != "" {
		specified++
	}
	if git.Tag != "" {
		specified++
	}
	if git.Revision != "" {
		specified++
	}
	if specified > 1 {
		return fmt.Errorf("%s: only one of branch, tag, or revision may be specified", prefix)
	}

	return nil
}
