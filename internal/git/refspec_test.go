package git

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSHA = "c5c7624ef64f34d9f50c3b7e8118f7f652fddbbd"

// testAdvertisedRefs mirrors a typical advertisement: one branch, one
// annotated tag with its peeled entry, and HEAD pointing at the branch.
func testAdvertisedRefs() *AdvertisedRefs {
	return &AdvertisedRefs{
		Refs: map[plumbing.ReferenceName]string{
			"refs/heads/main":                "abc123",
			"refs/tags/v1.0.0":               "def456",
			AnnotatedTag("refs/tags/v1.0.0"): "def456",
			plumbing.HEAD:                    "abc123",
		},
		Symrefs: map[plumbing.ReferenceName]plumbing.ReferenceName{
			plumbing.HEAD: "refs/heads/main",
		},
	}
}

func TestIsRevisionSHA(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{name: "valid full sha", value: validSHA, want: true},
		{name: "non-hex input", value: "invalid_input", want: false},
		{name: "too short", value: "c5c7", want: false},
		{name: "too long", value: validSHA + "42", want: false},
		{name: "empty", value: "", want: false},
		{name: "uppercase hex", value: "C5C7624EF64F34D9F50C3B7E8118F7F652FDDBBD", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsRevisionSHA(tt.value))
		})
	}
}

func TestAnnotatedTag(t *testing.T) {
	t.Parallel()

	assert.Equal(t, plumbing.ReferenceName("my-tag^{}"), AnnotatedTag("my-tag"))
	assert.Equal(t,
		plumbing.ReferenceName("refs/tags/v1.0.0^{}"),
		AnnotatedTag(plumbing.NewTagReferenceName("v1.0.0")))

	// Byte-slice ref names convert losslessly through the string type.
	raw := []byte("my-tag")
	assert.Equal(t, plumbing.ReferenceName("my-tag^{}"), AnnotatedTag(plumbing.ReferenceName(raw)))
}

func TestNewRefSpec(t *testing.T) {
	t.Parallel()

	spec := NewRefSpec("main", "1234", "v2")

	assert.Equal(t, "main", spec.Branch)
	assert.Equal(t, "1234", spec.Revision)
	assert.Equal(t, "v2", spec.Tag)
	assert.Equal(t, plumbing.HEAD, spec.Ref)
}

func TestRefSpec_Resolve_Branch(t *testing.T) {
	t.Parallel()

	spec := &RefSpec{Branch: "main", Ref: plumbing.HEAD}
	require.NoError(t, spec.Resolve(testAdvertisedRefs()))

	assert.Equal(t, plumbing.ReferenceName("refs/heads/main"), spec.Ref)
	assert.Equal(t, "main", spec.Branch)
	assert.Empty(t, spec.Revision)
	assert.Empty(t, spec.Tag)
}

func TestRefSpec_Resolve_BranchTakesPriority(t *testing.T) {
	t.Parallel()

	spec := NewRefSpec("main", "v1.0.0", "")
	require.NoError(t, spec.Resolve(testAdvertisedRefs()))

	assert.Equal(t, plumbing.ReferenceName("refs/heads/main"), spec.Ref)
	assert.Equal(t, "main", spec.Branch)
	assert.Empty(t, spec.Revision)
}

func TestRefSpec_Resolve_Tag(t *testing.T) {
	t.Parallel()

	spec := &RefSpec{Revision: "v1.0.0", Ref: plumbing.HEAD}
	require.NoError(t, spec.Resolve(testAdvertisedRefs()))

	assert.Equal(t, AnnotatedTag("refs/tags/v1.0.0"), spec.Ref)
	assert.Empty(t, spec.Branch)
	assert.Empty(t, spec.Revision)
	assert.Equal(t, "v1.0.0", spec.Tag)
}

func TestRefSpec_Resolve_TagWithoutPeeledEntry(t *testing.T) {
	t.Parallel()

	// A lightweight tag has no peeled entry, so the token cannot be
	// dereferenced to a commit this way; resolution falls back to the
	// remote's default branch with the revision kept opaque.
	remote := testAdvertisedRefs()
	delete(remote.Refs, AnnotatedTag("refs/tags/v1.0.0"))

	spec := &RefSpec{Revision: "v1.0.0", Ref: plumbing.HEAD}
	require.NoError(t, spec.Resolve(remote))

	assert.Equal(t, plumbing.ReferenceName("refs/heads/main"), spec.Ref)
	assert.Equal(t, "v1.0.0", spec.Revision)
	assert.Empty(t, spec.Tag)
}

func TestRefSpec_Resolve_SHA(t *testing.T) {
	t.Parallel()

	spec := &RefSpec{Revision: "abc", Ref: plumbing.HEAD}
	require.NoError(t, spec.Resolve(testAdvertisedRefs()))

	assert.Equal(t, plumbing.ReferenceName("refs/heads/main"), spec.Ref)
	assert.Empty(t, spec.Branch)
	assert.Empty(t, spec.Tag)
	assert.Equal(t, "abc", spec.Revision)
}

func TestRefSpec_Resolve_Empty(t *testing.T) {
	t.Parallel()

	spec := NewRefSpec("", "", "")
	require.NoError(t, spec.Resolve(testAdvertisedRefs()))

	assert.Equal(t, plumbing.HEAD, spec.Ref)
}

func TestRefSpec_Resolve_BranchNotFound(t *testing.T) {
	t.Parallel()

	spec := &RefSpec{Branch: "no-such-branch", Ref: plumbing.HEAD}
	err := spec.Resolve(testAdvertisedRefs())

	require.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestRefSpec_Resolve_MissingHeadSymref(t *testing.T) {
	t.Parallel()

	remote := testAdvertisedRefs()
	delete(remote.Symrefs, plumbing.HEAD)

	spec := &RefSpec{Revision: "abc", Ref: plumbing.HEAD}
	err := spec.Resolve(remote)

	require.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestRefSpec_Resolve_Idempotent(t *testing.T) {
	t.Parallel()

	remote := testAdvertisedRefs()

	for _, tt := range []struct {
		name string
		spec *RefSpec
	}{
		{name: "branch", spec: &RefSpec{Branch: "main", Ref: plumbing.HEAD}},
		{name: "tag", spec: &RefSpec{Revision: "v1.0.0", Ref: plumbing.HEAD}},
		{name: "sha", spec: &RefSpec{Revision: "abc", Ref: plumbing.HEAD}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, tt.spec.Resolve(remote))
			once := *tt.spec

			require.NoError(t, tt.spec.Resolve(remote))
			assert.Equal(t, once, *tt.spec)
		})
	}
}
