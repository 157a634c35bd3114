package utils

import (
	"path"
	"strings"
)

// CleanRepoPath validates a generated file name and returns it as a clean,
// slash-separated path relative to the repository root.
// Absolute paths, traversal outside the root and empty names are rejected.
func CleanRepoPath(name string) (string, bool) {
	// Models occasionally emit Windows separators
	p := strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", false
	}

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}

	// .git internals can't be written through the contents API
	if cleaned == ".git" || strings.HasPrefix(cleaned, ".git/") {
		return "", false
	}

	return cleaned, true
}

// IsReadme reports whether a repo path names the top-level README.md, ignoring case
func IsReadme(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), "README.md")
}
