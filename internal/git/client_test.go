package git

import (
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp/capability"
)

const (
	testRepoURLClient = "https://github.com/example/repo.git"
	mainBranchClient  = "main"
)

func TestNewDefaultGitClient(t *testing.T) {
	t.Parallel()
	client := NewDefaultGitClient()
	if client == nil {
		t.Fatal("NewDefaultGitClient() returned nil")
	}

	// Verify it returns the correct concrete type
	if _, ok := client.(*defaultGitClient); !ok {
		t.Fatal("NewDefaultGitClient() did not return *defaultGitClient")
	}
}

func TestNewAdvertisedRefs(t *testing.T) {
	t.Parallel()

	branchHash := plumbing.NewHash("c5c7624ef64f34d9f50c3b7e8118f7f652fddbbd")
	tagHash := plumbing.NewHash("0123456789abcdef0123456789abcdef01234567")

	advRefs := packp.NewAdvRefs()
	advRefs.References["refs/heads/main"] = branchHash
	advRefs.References["refs/tags/v1.0.0"] = tagHash
	advRefs.Peeled["refs/tags/v1.0.0"] = branchHash
	head := branchHash
	advRefs.Head = &head
	if err := advRefs.Capabilities.Add(capability.SymRef, "HEAD:refs/heads/main"); err != nil {
		t.Fatalf("Failed to add symref capability: %v", err)
	}

	remote := newAdvertisedRefs(advRefs)

	if got := remote.Refs["refs/heads/main"]; got != branchHash.String() {
		t.Errorf("Expected branch hash %s, got %s", branchHash, got)
	}
	if got := remote.Refs["refs/tags/v1.0.0"]; got != tagHash.String() {
		t.Errorf("Expected tag hash %s, got %s", tagHash, got)
	}
	if got := remote.Refs[AnnotatedTag("refs/tags/v1.0.0")]; got != branchHash.String() {
		t.Errorf("Expected peeled entry pointing at %s, got %s", branchHash, got)
	}
	if got := remote.Refs[plumbing.HEAD]; got != branchHash.String() {
		t.Errorf("Expected HEAD entry %s, got %s", branchHash, got)
	}
	if got := remote.Symrefs[plumbing.HEAD]; got != "refs/heads/main" {
		t.Errorf("Expected HEAD symref refs/heads/main, got %s", got)
	}
}

func TestNewAdvertisedRefs_NoSymrefs(t *testing.T) {
	t.Parallel()

	advRefs := packp.NewAdvRefs()
	advRefs.References["refs/heads/main"] = plumbing.NewHash("c5c7624ef64f34d9f50c3b7e8118f7f652fddbbd")

	remote := newAdvertisedRefs(advRefs)

	if len(remote.Symrefs) != 0 {
		t.Errorf("Expected no symrefs, got %v", remote.Symrefs)
	}
	if _, ok := remote.Refs[plumbing.HEAD]; ok {
		t.Error("Expected no HEAD entry without an advertised head")
	}
}

func TestDefaultGitClient_Clone_InvalidURL(t *testing.T) {
	t.Parallel()
	client := NewDefaultGitClient()

	config := &CloneConfig{
		URL: "invalid-url",
	}

	repoInfo, err := client.Clone(t.Context(), config)
	if err == nil {
		t.Error("Expected error for invalid URL, got nil")
	}
	if repoInfo != nil {
		t.Error("Expected nil repoInfo for invalid URL")
	}
}

func TestDefaultGitClient_Cleanup_NilRepoInfo(t *testing.T) {
	t.Parallel()
	client := NewDefaultGitClient()

	err := client.Cleanup(t.Context(), nil)
	if err == nil {
		t.Errorf("Expected error for nil repoInfo, got nil")
	}
}

func TestDefaultGitClient_Cleanup_NilRepository(t *testing.T) {
	t.Parallel()
	client := NewDefaultGitClient()
	repoInfo := &RepositoryInfo{
		Repository: nil,
	}

	err := client.Cleanup(t.Context(), repoInfo)
	if err == nil {
		t.Errorf("Expected error for nil repository, got nil")
	}
}

func TestDefaultGitClient_GetFileContent_NoRepo(t *testing.T) {
	t.Parallel()
	client := NewDefaultGitClient()
	repoInfo := &RepositoryInfo{
		Repository: nil,
	}

	content, err := client.GetFileContent(repoInfo, "test.txt")
	if err == nil {
		t.Error("Expected error for nil repository, got nil")
	}
	if content != nil {
		t.Error("Expected nil content for nil repository")
	}
}

func TestCloneConfig_Structure(t *testing.T) {
	t.Parallel()
	config := CloneConfig{
		URL:      testRepoURLClient,
		Branch:   mainBranchClient,
		Tag:      "v1.0.0",
		Revision: "abc123",
	}

	if config.URL != testRepoURLClient {
		t.Errorf("Expected URL to be set correctly")
	}
	if config.Branch != mainBranchClient {
		t.Errorf("Expected Branch to be set correctly")
	}
	if config.Tag != "v1.0.0" {
		t.Errorf("Expected Tag to be set correctly")
	}
	if config.Revision != "abc123" {
		t.Errorf("Expected Revision to be set correctly")
	}
}

func TestRepositoryInfo_Structure(t *testing.T) {
	t.Parallel()
	repoInfo := RepositoryInfo{
		Branch:    mainBranchClient,
		RemoteURL: testRepoURLClient,
	}

	if repoInfo.Repository != nil {
		t.Error("Expected Repository to be nil by default")
	}
	if repoInfo.Branch != mainBranchClient {
		t.Errorf("Expected Branch to be set correctly")
	}
	if repoInfo.RemoteURL != testRepoURLClient {
		t.Errorf("Expected RemoteURL to be set correctly")
	}
}

func TestCloneConfig_WithAuth(t *testing.T) {
	t.Parallel()
	auth := &AuthConfig{
		Username: "user",
		Password: "pass",
	}
	config := CloneConfig{
		URL:    testRepoURLClient,
		Branch: mainBranchClient,
		Auth:   auth,
	}

	if config.Auth == nil {
		t.Error("Expected Auth to be set")
	}
	if config.Auth.Username != "user" {
		t.Errorf("Expected Username to be 'user', got '%s'", config.Auth.Username)
	}
	if config.Auth.Password != "pass" {
		t.Errorf("Expected Password to be 'pass', got '%s'", config.Auth.Password)
	}
}

func TestIsPermanentListError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want bool
	}{
		{msg: "authentication required", want: true},
		{msg: "repository not found", want: true},
		{msg: "connection reset by peer", want: false},
		{msg: "context deadline exceeded", want: false},
	}

	for _, tt := range tests {
		if got := isPermanentListError(errString(tt.msg)); got != tt.want {
			t.Errorf("isPermanentListError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
