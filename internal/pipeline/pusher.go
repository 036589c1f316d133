package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Kenz1481/web-deployment-website/internal/github"
	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vcs"
)

// Pusher turns the staged tree into a single commit on the remote's main branch.
type Pusher struct {
	git      GitDriver
	settings Settings
}

// Readme renders the README written into every pushed tree.
func Readme(brand string, p *domain.Project, repoHTMLURL string) string {
	sub := p.Subdomain
	if sub == "" {
		sub = "N/A"
	}
	return fmt.Sprintf("# %s\n\nDeployed via %s.\nSubdomain: %s\nGitHub Repo: %s", p.Name, brand, sub, repoHTMLURL)
}

// Push runs the git sequence in dir. Any failure halts with error_github_push;
// partial local history is left for workspace cleanup.
func (ps *Pusher) Push(ctx context.Context, rec *recorder, p *domain.Project, dir string, repo *github.Repository) error {
	defer metrics.ObserveStage(stagePush, time.Now())

	if err := rec.advance(ctx, domain.StatusPushing, domain.ProjectUpdate{}); err != nil {
		return err
	}
	rec.info(ctx, "Initializing local repository and pushing to %s...", repo.FullName)

	if err := ps.push(ctx, rec, p, dir, repo); err != nil {
		return stageErr(stagePush, domain.StatusErrorGithubPush, err,
			"Failed during Git operations: %v", err)
	}
	return nil
}

func (ps *Pusher) push(ctx context.Context, rec *recorder, p *domain.Project, dir string, repo *github.Repository) error {
	readme := Readme(ps.settings.BrandName, p, repo.HTMLURL)
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte(readme), 0o644); err != nil {
		return fmt.Errorf("write README.md: %w", err)
	}
	rec.info(ctx, "README.md created/updated in staging.")

	if err := ps.git.Init(ctx, dir); err != nil {
		return err
	}
	rec.info(ctx, "Git repository initialized.")

	if err := ps.git.TrustDirectory(ctx, dir); err != nil {
		rec.warn(ctx, "Could not set local safe.directory: %v. Subsequent Git operations might fail.", err)
	} else {
		rec.info(ctx, "Git config safe.directory set locally for %s.", dir)
	}

	if err := ps.git.AddAll(ctx, dir); err != nil {
		return err
	}
	rec.info(ctx, "All files added to git staging.")

	if err := ps.git.Commit(ctx, dir, "Initial commit by "+ps.settings.BrandName); err != nil {
		return err
	}
	rec.info(ctx, "Initial commit created.")

	if err := ps.git.RenameBranch(ctx, dir, ps.settings.Branch); err != nil {
		return err
	}
	rec.info(ctx, "Branch renamed/set to %s.", ps.settings.Branch)

	remoteURL, err := ps.remoteURL(repo.CloneURL)
	if err != nil {
		return err
	}
	has, err := ps.git.HasRemote(ctx, dir, DefaultRemote)
	if err != nil {
		return err
	}
	if has {
		if err := ps.git.SetRemoteURL(ctx, dir, DefaultRemote, remoteURL); err != nil {
			return err
		}
		rec.info(ctx, "GitHub remote %q URL updated.", DefaultRemote)
	} else {
		if err := ps.git.AddRemote(ctx, dir, DefaultRemote, remoteURL); err != nil {
			return err
		}
		rec.info(ctx, "GitHub remote %q added.", DefaultRemote)
	}

	if err := ps.git.ForcePush(ctx, dir, DefaultRemote, ps.settings.Branch, ps.settings.PushToken); err != nil {
		return err
	}
	rec.info(ctx, "Code pushed to GitHub successfully.")
	return nil
}

// remoteURL embeds push credentials into https clone URLs. Other transports
// (local paths in particular) are used as given.
func (ps *Pusher) remoteURL(cloneURL string) (string, error) {
	if cloneURL == "" {
		return "", fmt.Errorf("repository has no clone url")
	}
	if ps.settings.PushToken == "" || !strings.HasPrefix(cloneURL, "https://") {
		return cloneURL, nil
	}
	return vcs.AuthenticatedURL(cloneURL, ps.settings.RepoOwner, ps.settings.PushToken)
}
