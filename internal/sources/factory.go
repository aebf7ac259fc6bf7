package sources

import (
	"fmt"

	"github.com/indrajithi/poetry/internal/config"
)

// defaultSourceHandlerFactory is the default implementation of SourceHandlerFactory
type defaultSourceHandlerFactory struct {
	cache *FetchCache
}

var _ SourceHandlerFactory = (*defaultSourceHandlerFactory)(nil)

// NewSourceHandlerFactory creates a new source handler factory. Git
// handlers created by the factory share the given fetch cache.
func NewSourceHandlerFactory(cache *FetchCache) SourceHandlerFactory {
	return &defaultSourceHandlerFactory{cache: cache}
}

// CreateHandler creates a source handler for the given source type
func (f *defaultSourceHandlerFactory) CreateHandler(sourceType string) (SourceHandler, error) {
	switch sourceType {
	case config.SourceTypeGit:
		return NewGitSourceHandler(f.cache), nil
	case config.SourceTypeFile:
		return NewFileSourceHandler(), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", sourceType)
	}
}
