package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const (
	DefaultRepoPrefix    = "wz-"
	DefaultBrandName     = "WanzOFC Deploy"
	DefaultSourceHost    = "github.com"
	DefaultHostingDomain = "vercel.app"
	DefaultBranch        = "main"
	DefaultRemote        = "origin"

	repoSlugMax    = 40
	hostingSlugMax = 50
)

// Settings are the static knobs of a pipeline run.
type Settings struct {
	StagingDir string
	RepoPrefix string
	BrandName  string
	// RepoOwner is the account that owns system-created repositories and
	// the user embedded in push credentials.
	RepoOwner     string
	PushToken     string
	SourceHost    string
	HostingDomain string
	Branch        string
	Now           func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.StagingDir == "" {
		s.StagingDir = "deploy_staging"
	}
	if s.RepoPrefix == "" {
		s.RepoPrefix = DefaultRepoPrefix
	}
	if s.BrandName == "" {
		s.BrandName = DefaultBrandName
	}
	if s.SourceHost == "" {
		s.SourceHost = DefaultSourceHost
	}
	if s.HostingDomain == "" {
		s.HostingDomain = DefaultHostingDomain
	}
	if s.Branch == "" {
		s.Branch = DefaultBranch
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

// StagingPath returns the per-project staging directory under root.
func StagingPath(root, projectID string) (string, error) {
	if projectID == "" || projectID == "." || projectID == ".." ||
		strings.ContainsAny(projectID, `/\`) {
		return "", fmt.Errorf("invalid project id for staging path: %q", projectID)
	}
	return filepath.Join(root, projectID), nil
}
