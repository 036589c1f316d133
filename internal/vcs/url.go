package vcs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	giturls "github.com/whilp/git-urls"
)

// ErrInvalidReference is returned when a URL does not name an owner/repo pair.
var ErrInvalidReference = errors.New("invalid repository reference")

// Reference identifies a repository on a source host.
type Reference struct {
	Host  string
	Owner string
	Repo  string
}

// FullName returns "owner/repo".
func (r Reference) FullName() string {
	return r.Owner + "/" + r.Repo
}

// ParseReference extracts the owner/repo pair from any URL form git accepts
// (https, ssh, scp-like). host, when non-empty, must match the URL's host.
func ParseReference(raw, host string) (Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Reference{}, ErrInvalidReference
	}
	u, err := giturls.Parse(raw)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	h := strings.ToLower(u.Hostname())
	if h == "" || (host != "" && h != strings.ToLower(host) && h != "www."+strings.ToLower(host)) {
		return Reference{}, fmt.Errorf("%w: unexpected host %q", ErrInvalidReference, u.Host)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Reference{}, fmt.Errorf("%w: %s", ErrInvalidReference, SafeURL(raw))
	}
	repo := strings.TrimSuffix(parts[1], ".git")
	if repo == "" {
		return Reference{}, fmt.Errorf("%w: %s", ErrInvalidReference, SafeURL(raw))
	}
	return Reference{Host: h, Owner: parts[0], Repo: repo}, nil
}

// SplitFullName splits "owner/repo".
func SplitFullName(fullName string) (owner, repo string, err error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidReference, fullName)
	}
	return parts[0], parts[1], nil
}

// AuthenticatedURL embeds user and token into an https clone URL.
func AuthenticatedURL(cloneURL, user, token string) (string, error) {
	u, err := url.Parse(cloneURL)
	if err != nil {
		return "", err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return "", fmt.Errorf("cannot embed credentials into %s URL", u.Scheme)
	}
	if token == "" {
		return u.String(), nil
	}
	if user == "" {
		user = "x-access-token"
	}
	u.User = url.UserPassword(user, token)
	return u.String(), nil
}

// SafeURL returns raw with any password removed.
func SafeURL(raw string) string {
	u, err := giturls.Parse(raw)
	if err != nil {
		return fmt.Sprintf("<unparseable: %s>", raw)
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.String()
}

func secretsOf(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return nil
	}
	if p, ok := u.User.Password(); ok {
		return []string{p, url.QueryEscape(p)}
	}
	return nil
}
