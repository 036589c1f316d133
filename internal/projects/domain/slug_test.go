package domain

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestDeriveSubdomain(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		project   string
		want      string
	}{
		{"requested wins", "My Site", "Other", "my-site"},
		{"falls back to name", "", "Demo App", "demo-app"},
		{"name is truncated", "", strings.Repeat("a", 40), strings.Repeat("a", 30)},
		{"blank requested", "   ", "Demo", "demo"},
		{"requested punctuation", "My Café!", "Other", "my-caf--"},
		{"multi-byte at the cut", "", strings.Repeat("a", 29) + "é-site", strings.Repeat("a", 29) + "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveSubdomain(tt.requested, tt.project)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.Regexp(t, `^[a-z0-9-]*$`, got)
		})
	}
}

func TestTruncate_CountsRunes(t *testing.T) {
	got := truncate("ééé", 2)
	assert.Equal(t, "éé", got)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func TestProjectSlug(t *testing.T) {
	p := &Project{Name: "Hello World!", Subdomain: "hello"}
	assert.Equal(t, "hello", p.Slug(40))

	p.Subdomain = ""
	assert.Equal(t, "hello-world-", p.Slug(40))
	assert.Equal(t, "hello", p.Slug(5))
}

func TestProjectPublic(t *testing.T) {
	p := &Project{
		ID:       "abc",
		FilePath: "/tmp/upload.zip",
		Logs:     []LogEntry{{Message: "x", Type: LogInfo}},
	}
	pub := p.Public()
	assert.Empty(t, pub.FilePath)
	assert.Nil(t, pub.Logs)
	assert.Equal(t, "/tmp/upload.zip", p.FilePath, "original must be untouched")
}
