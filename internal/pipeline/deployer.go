package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Kenz1481/web-deployment-website/internal/github"
	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vercel"
)

// Deployer triggers the hosting platform deployment.
type Deployer struct {
	hosting  Hosting
	settings Settings
}

// CheckRepository guards the deployment against a repository the provisioner
// did not fully resolve.
func CheckRepository(repo *github.Repository) error {
	if repo == nil || repo.FullName == "" || repo.ID == 0 {
		return fmt.Errorf("repository name or id missing")
	}
	return nil
}

// Deploy submits the deployment and, on success, writes the address and the
// hosting identifiers together with the deployed status.
func (d *Deployer) Deploy(ctx context.Context, rec *recorder, p *domain.Project, repo *github.Repository) error {
	if err := CheckRepository(repo); err != nil {
		return stageErr(stageDeploy, domain.StatusErrorMissingGHDetail, err,
			"GitHub repository details (name or ID) not available for Vercel deployment.")
	}
	defer metrics.ObserveStage(stageDeploy, time.Now())

	if err := rec.advance(ctx, domain.StatusDeploying, domain.ProjectUpdate{}); err != nil {
		return err
	}
	rec.info(ctx, "Starting Vercel deployment for %s (ID: %d)...", repo.FullName, repo.ID)

	name := p.Slug(hostingSlugMax)
	dep, err := d.hosting.CreateDeployment(ctx, vercel.DeploymentRequest{
		Name: name,
		GitSource: vercel.GitSource{
			Type:   "github",
			RepoID: repo.ID,
			Repo:   repo.FullName,
			Ref:    d.settings.Branch,
		},
	})
	if err != nil {
		return stageErr(stageDeploy, domain.StatusErrorVercelDeploy, err,
			"Vercel deployment failed: %v", err)
	}
	if dep.ProjectID == "" {
		err := fmt.Errorf("response did not include a project id")
		return stageErr(stageDeploy, domain.StatusErrorVercelDeploy, err,
			"Vercel deployment failed: %v", err)
	}

	url := DeploymentURL(dep.Alias, name, d.settings.HostingDomain)
	rec.log(ctx, domain.LogDeploy, "Vercel deployment initiated. URL (eventually): %s. Vercel Project ID: %s", url, dep.ProjectID)

	u := domain.ProjectUpdate{
		DeploymentURL:   &url,
		VercelProjectID: &dep.ProjectID,
	}
	if dep.ID != "" {
		u.VercelDeploymentID = &dep.ID
	}
	return rec.advance(ctx, domain.StatusDeployed, u)
}

// DeploymentURL is the first alias, or <name>.<domain> when none is returned.
func DeploymentURL(alias []string, name, domainSuffix string) string {
	for _, a := range alias {
		if a != "" {
			return "https://" + a
		}
	}
	return "https://" + name + "." + domainSuffix
}
