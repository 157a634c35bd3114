package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanRepoPath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"index.html", "index.html", true},
		{"./js/app.js", "js/app.js", true},
		{"css\\style.css", "css/style.css", true},
		{"a/../b.txt", "b.txt", true},
		{"/etc/passwd", "", false},
		{"../escape.txt", "", false},
		{"a/../../escape.txt", "", false},
		{"", "", false},
		{"   ", "", false},
		{".", "", false},
		{".git/config", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := CleanRepoPath(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsReadme(t *testing.T) {
	assert.True(t, IsReadme("README.md"))
	assert.True(t, IsReadme("readme.MD"))
	assert.False(t, IsReadme("docs/README.md"))
	assert.False(t, IsReadme("README.txt"))
}
