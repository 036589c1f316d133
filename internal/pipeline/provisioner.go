package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Kenz1481/web-deployment-website/internal/github"
	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

// Provisioner makes sure a remote repository exists for the project.
type Provisioner struct {
	source   SourceHost
	settings Settings
}

// RepoName builds the name of a system-created repository:
// prefix + slug + "-" + the last five digits of the millisecond clock.
func RepoName(prefix string, p *domain.Project, now time.Time) string {
	ms := fmt.Sprintf("%d", now.UnixMilli())
	if len(ms) > 5 {
		ms = ms[len(ms)-5:]
	}
	return prefix + p.Slug(repoSlugMax) + "-" + ms
}

// Provision creates a repository for archive sources, or resolves the
// identifier of the referenced one. The result is persisted before returning.
func (pv *Provisioner) Provision(ctx context.Context, rec *recorder, p *domain.Project, src *Source) (*github.Repository, error) {
	defer metrics.ObserveStage(stageProvision, time.Now())

	switch src.Kind {
	case SourceArchive:
		return pv.create(ctx, rec, p)
	case SourceReference:
		return pv.lookup(ctx, rec, src)
	default:
		return nil, fmt.Errorf("provision: unexpected source kind %s", src.Kind)
	}
}

func (pv *Provisioner) create(ctx context.Context, rec *recorder, p *domain.Project) (*github.Repository, error) {
	name := RepoName(pv.settings.RepoPrefix, p, pv.settings.Now())
	if err := rec.advance(ctx, domain.StatusCreatingRepo, domain.ProjectUpdate{}); err != nil {
		return nil, err
	}
	rec.info(ctx, "Attempting to create GitHub repository: %s", name)

	description := fmt.Sprintf("%s: %s - %s", pv.settings.BrandName, p.Name, p.Description)
	repo, err := pv.source.CreateRepository(ctx, name, description, true)
	if err != nil {
		return nil, stageErr(stageProvision, domain.StatusErrorGithubCreation, err,
			"Failed to create GitHub repository: %v", err)
	}
	rec.info(ctx, "GitHub repository created: %s (ID: %d)", repo.HTMLURL, repo.ID)

	if err := rec.update(ctx, repoFields(repo)); err != nil {
		return nil, err
	}
	return repo, nil
}

func (pv *Provisioner) lookup(ctx context.Context, rec *recorder, src *Source) (*github.Repository, error) {
	fullName := src.Ref.FullName()
	repo, err := pv.source.GetRepository(ctx, src.Ref.Owner, src.Ref.Repo)
	if err != nil {
		return nil, stageErr(stageProvision, domain.StatusErrorGithubFetchID, err,
			"Error fetching ID for existing GitHub repo %s: %v", fullName, err)
	}
	if repo.FullName == "" {
		repo.FullName = fullName
	}
	rec.info(ctx, "Using existing GitHub repository: %s (ID: %d)", repo.FullName, repo.ID)

	if err := rec.update(ctx, repoFields(repo)); err != nil {
		return nil, err
	}
	return repo, nil
}

func repoFields(repo *github.Repository) domain.ProjectUpdate {
	u := domain.ProjectUpdate{}
	if name := strings.TrimSpace(repo.FullName); name != "" {
		u.GithubRepoName = &name
	}
	if repo.ID != 0 {
		id := repo.ID
		u.GithubRepoID = &id
	}
	if repo.HTMLURL != "" {
		html := repo.HTMLURL
		u.GithubRepoURL = &html
	}
	return u
}
