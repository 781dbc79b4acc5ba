// Package uri converts between filesystem paths and file:// document URIs.
package uri

import (
	"fmt"
	"net/url"
	"path/filepath"
)

// ToPath converts a file:// URI into a filesystem path.
func ToPath(uri string) (string, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse URI %q: %w", uri, err)
	}
	if parsed.Scheme != "file" {
		return "", fmt.Errorf("unsupported URI scheme %q", parsed.Scheme)
	}
	return filepath.FromSlash(parsed.Path), nil
}

// FromPath converts an absolute filesystem path into a file:// URI.
func FromPath(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
