// Package sources provides interfaces and implementations for retrieving
// project content from configured package sources.
//
// The package defines the SourceHandler interface which abstracts the
// process of validating source configurations and fetching project
// payloads from Git repositories or the local filesystem.
//
// Current implementations:
//   - gitSourceHandler: Retrieves project content from Git repositories.
//     Every fetch is pinned to a reference resolved against the remote's
//     advertisement, so a branch, tag, or commit always maps to a concrete
//     ref before any clone happens. Results are memoized per resolved
//     reference in a FetchCache.
//   - fileSourceHandler: Reads project content from the local filesystem,
//     mainly for development and testing.
//
// A factory creates the appropriate handler based on the source type
// configuration.
package sources
