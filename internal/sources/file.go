package sources

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/indrajithi/poetry/internal/config"
)

// fileSourceHandler reads project content from the local filesystem
type fileSourceHandler struct{}

// NewFileSourceHandler creates a new file source handler
func NewFileSourceHandler() SourceHandler {
	return &fileSourceHandler{}
}

var _ SourceHandler = (*fileSourceHandler)(nil)

// Validate validates the file source configuration
func (*fileSourceHandler) Validate(source *config.SourceConfig) error {
	if source == nil {
		return fmt.Errorf("source configuration cannot be nil")
	}

	if source.File == nil {
		return fmt.Errorf("file configuration is required")
	}

	if source.File.Path == "" {
		return fmt.Errorf("file path cannot be empty")
	}

	return nil
}

// FetchProject reads the project payload from the configured path
func (h *fileSourceHandler) FetchProject(_ context.Context, source *config.SourceConfig) (*FetchResult, error) {
	data, hash, err := h.readFile(source)
	if err != nil {
		return nil, err
	}

	name := source.Name
	if name == "" {
		name = nameFromPath(source.File.Path)
	}

	return &FetchResult{
		Name:   name,
		Origin: source.File.Path,
		Hash:   hash,
		Data:   data,
	}, nil
}

// CurrentRevision returns the content hash of the file. File sources have
// no object IDs, so the hash stands in for change detection.
func (h *fileSourceHandler) CurrentRevision(_ context.Context, source *config.SourceConfig) (string, error) {
	_, hash, err := h.readFile(source)
	if err != nil {
		return "", err
	}

	return hash, nil
}

func (h *fileSourceHandler) readFile(source *config.SourceConfig) ([]byte, string, error) {
	if err := h.Validate(source); err != nil {
		return nil, "", fmt.Errorf("source validation failed: %w", err)
	}

	filePath := source.File.Path

	//nolint:gosec // File path comes from user configuration, this is expected behavior
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("file not found: %s", filePath)
		}
		return nil, "", fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	return data, fmt.Sprintf("%x", sha256.Sum256(data)), nil
}

// nameFromPath derives a project name from the manifest path. The parent
// directory usually carries the project name; the file name is only used
// when the path has no useful parent.
func nameFromPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir != "." && dir != string(filepath.Separator) {
		return dir
	}

	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
