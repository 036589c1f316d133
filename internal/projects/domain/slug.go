package domain

import (
	"regexp"
	"strings"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reNotSlug    = regexp.MustCompile(`[^a-z0-9-]`)
)

// DeriveSubdomain normalises a requested subdomain, falling back to the
// project name (truncated to 30 characters) when none was given. The result
// only holds [a-z0-9-]; it doubles as the repository and hosting project name.
func DeriveSubdomain(requested, name string) string {
	if s := strings.TrimSpace(requested); s != "" {
		return slugify(s)
	}
	return truncate(slugify(strings.TrimSpace(name)), 30)
}

func slugify(s string) string {
	s = reWhitespace.ReplaceAllString(strings.ToLower(s), "-")
	return reNotSlug.ReplaceAllString(s, "-")
}

// SanitizeName lower-cases name and replaces anything outside [a-z0-9-] with '-',
// keeping at most max characters.
func SanitizeName(name string, max int) string {
	return truncate(reNotSlug.ReplaceAllString(strings.ToLower(name), "-"), max)
}

// Slug is the identifier used to name the remote repository and the hosting
// project: the subdomain when present, else the sanitized name.
func (p *Project) Slug(max int) string {
	if p.Subdomain != "" {
		return p.Subdomain
	}
	return SanitizeName(p.Name, max)
}

// truncate keeps at most max characters, never splitting a multi-byte rune.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) > max {
		return string(r[:max])
	}
	return s
}
