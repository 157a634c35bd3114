package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	maxTaskSlugLength = 50
	secretDigestChars = 8
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// DeriveRepoName maps a task label and shared secret to a stable repository name.
// The same inputs always produce the same name, so every round of a task lands in
// the same repository without any stored state.
//
// Labels sharing their first 50 normalised characters collide under one secret.
func DeriveRepoName(task, secret string) string {
	digest := SecretDigest(secret)

	slug := Slugify(task)
	if slug == "" {
		return digest
	}
	return slug + "-" + digest
}

// Slugify lower-cases s, collapses every run of characters outside [a-z0-9]
// into a single hyphen and truncates the result to 50 characters.
func Slugify(s string) string {
	slug := nonAlphanumeric.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxTaskSlugLength {
		slug = strings.TrimRight(slug[:maxTaskSlugLength], "-")
	}
	return slug
}

// SecretDigest returns the first 8 hex characters of SHA-256(secret)
func SecretDigest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:secretDigestChars]
}
