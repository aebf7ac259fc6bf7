package sources

import (
	"context"

	"github.com/go-git/go-git/v5/plumbing"

	"github.com/indrajithi/poetry/internal/config"
)

// SourceHandler is an interface with methods to fetch project content from
// an external source
type SourceHandler interface {
	// FetchProject retrieves the project payload from the source and
	// returns the result
	FetchProject(ctx context.Context, source *config.SourceConfig) (*FetchResult, error)

	// Validate validates the source configuration
	Validate(source *config.SourceConfig) error

	// CurrentRevision returns the object ID the source currently resolves
	// to, without performing a full fetch
	CurrentRevision(ctx context.Context, source *config.SourceConfig) (string, error)
}

// SourceHandlerFactory is an interface for creating source handlers
type SourceHandlerFactory interface {
	// CreateHandler creates a source handler for the given source type
	CreateHandler(sourceType string) (SourceHandler, error)
}

// FetchResult contains the result of a fetch operation
type FetchResult struct {
	// Name is the short project name derived from the source URL or path
	Name string

	// Origin is the remote URL or path the project was fetched from
	Origin string

	// Revision is the object ID of the fetched checkout; empty for
	// sources without revisions
	Revision string

	// Ref is the concrete reference the fetch was pinned to; empty for
	// sources without references
	Ref plumbing.ReferenceName

	// Hash is the SHA256 hash of the payload for change detection
	Hash string

	// Data is the raw project payload
	Data []byte
}
