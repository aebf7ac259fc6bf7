package git

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// scpLikeRe matches scp-style remote addresses such as
// "git@github.com:org/repo.git" which net/url cannot parse.
var scpLikeRe = regexp.MustCompile(`^(?:(?P<user>[^@/]+)@)?(?P<host>[^@:/]+):(?P<path>[^/].*|)$`)

// URLPathJoin resolves relativePath against baseURL, treating the URL path
// as a filesystem-like path regardless of scheme. The scheme, user, and host
// of the base are preserved; only the path is rewritten. A trailing slash on
// the base keeps its last segment as the effective directory, matching
// conventional relative-URL resolution.
func URLPathJoin(baseURL, relativePath string) (string, error) {
	if user, host, scpPath, ok := parseSCPLike(baseURL); ok {
		joined := joinSCPPath(scpPath, relativePath)
		if user != "" {
			return fmt.Sprintf("%s@%s:%s", user, host, joined), nil
		}
		return fmt.Sprintf("%s:%s", host, joined), nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidURL, baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: %q has no scheme or host", ErrInvalidURL, baseURL)
	}

	rel, err := url.Parse(relativePath)
	if err != nil {
		return "", fmt.Errorf("%w: relative path %q: %v", ErrInvalidURL, relativePath, err)
	}

	return base.ResolveReference(rel).String(), nil
}

// joinSCPPath applies relative-URL directory semantics to the path component
// of an scp-style address. The path has no leading slash; it is relative to
// the remote user's home directory.
func joinSCPPath(base, rel string) string {
	dir := path.Dir(base)
	if strings.HasSuffix(base, "/") {
		dir = strings.TrimSuffix(base, "/")
	}
	if dir == "." {
		dir = ""
	}
	return path.Join(dir, rel)
}

// parseSCPLike splits an scp-style address into user, host, and path. It
// reports false for anything carrying an explicit scheme.
func parseSCPLike(raw string) (user, host, scpPath string, ok bool) {
	if strings.Contains(raw, "://") {
		return "", "", "", false
	}
	m := scpLikeRe.FindStringSubmatch(raw)
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

// NameFromSourceURL derives a short project name from a remote URL: the last
// path segment with any trailing slash and ".git" suffix stripped. It
// understands both scp-style and scheme-style addresses.
func NameFromSourceURL(sourceURL string) (string, error) {
	trimmed := strings.TrimRight(sourceURL, "/")
	if trimmed == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, sourceURL)
	}

	segment := trimmed
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		segment = trimmed[i+1:]
	}

	name := strings.TrimSuffix(segment, ".git")
	if name == "" {
		return "", fmt.Errorf("%w: %q has no usable path segment", ErrInvalidURL, sourceURL)
	}
	return name, nil
}
