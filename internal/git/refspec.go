package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5/plumbing"
)

// fullSHALen is the length of a full hex object ID for SHA-1 repositories.
const fullSHALen = 40

var (
	// ErrReferenceNotFound is returned when a requested reference is not
	// present in the remote's advertisement.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrInvalidURL is returned when a remote URL cannot be parsed.
	ErrInvalidURL = errors.New("invalid URL")
)

// IsRevisionSHA reports whether value is a well-formed full object ID.
func IsRevisionSHA(value string) bool {
	if len(value) != fullSHALen {
		return false
	}
	for _, c := range []byte(value) {
		switch {
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'f':
		case 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// AnnotatedTag returns the peeled form of a tag reference name. Remotes
// advertise an annotated tag twice: once for the tag object itself and once,
// with the "^{}" suffix, for the commit the tag points to.
func AnnotatedTag(ref plumbing.ReferenceName) plumbing.ReferenceName {
	return ref + "^{}"
}

// AdvertisedRefs is the set of references a remote reports during fetch
// negotiation: reference names mapped to object IDs, plus the symbolic
// references (such as HEAD) mapped to the reference they point to.
type AdvertisedRefs struct {
	Refs    map[plumbing.ReferenceName]string
	Symrefs map[plumbing.ReferenceName]plumbing.ReferenceName
}

// RefSpec is a request to pin a checkout to a branch, tag, or revision.
// After a successful Resolve only the fields consistent with the matched
// case remain set and Ref holds the concrete reference to check out.
//
// A RefSpec must not be resolved concurrently from multiple goroutines.
type RefSpec struct {
	Branch   string
	Revision string
	Tag      string
	Ref      plumbing.ReferenceName
}

// NewRefSpec creates a RefSpec with the default unresolved reference HEAD.
func NewRefSpec(branch, revision, tag string) *RefSpec {
	return &RefSpec{
		Branch:   branch,
		Revision: revision,
		Tag:      tag,
		Ref:      plumbing.HEAD,
	}
}

// Resolve determines the concrete reference to check out against the
// remote's advertisement. Requests are matched in priority order:
//
//  1. A requested branch resolves to refs/heads/<branch>.
//  2. A requested revision resolves to the peeled form of
//     refs/tags/<revision> when the remote advertises both the tag and its
//     peeled entry. Otherwise the revision is kept as an opaque token (a
//     commit SHA or similar) and the reference falls back to the remote's
//     default branch, taken from the HEAD symref; the commit lookup itself
//     happens at checkout time.
//  3. With neither branch nor revision requested the reference is left
//     unchanged.
//
// Resolve is idempotent: resolving an already-resolved RefSpec against the
// same advertisement is a no-op.
func (s *RefSpec) Resolve(remote *AdvertisedRefs) error {
	switch {
	case s.Branch != "":
		ref := plumbing.NewBranchReferenceName(s.Branch)
		if _, ok := remote.Refs[ref]; !ok {
			return fmt.Errorf("branch %q: %w", s.Branch, ErrReferenceNotFound)
		}
		s.Ref = ref
		s.Revision = ""
		s.Tag = ""

	case s.Revision != "":
		tagRef := plumbing.NewTagReferenceName(s.Revision)
		peeled := AnnotatedTag(tagRef)
		_, hasTag := remote.Refs[tagRef]
		_, hasPeeled := remote.Refs[peeled]
		if hasTag && hasPeeled {
			s.Ref = peeled
			s.Tag = s.Revision
			s.Branch = ""
			s.Revision = ""
			return nil
		}

		head, ok := remote.Symrefs[plumbing.HEAD]
		if !ok {
			return fmt.Errorf("remote HEAD: %w", ErrReferenceNotFound)
		}
		s.Ref = head
		s.Branch = ""
		s.Tag = ""
	}

	return nil
}
