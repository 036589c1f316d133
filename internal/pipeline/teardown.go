package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vcs"
)

const (
	stepHosting    = "hosting_project"
	stepRepository = "repository"
	stepUpload     = "upload"
	stepStaging    = "staging"
	stepRecord     = "record"
)

// StepResult is the outcome of one teardown step.
type StepResult struct {
	Step    string `json:"step"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

// TeardownReport lists every step attempted for one deletion.
type TeardownReport struct {
	ProjectID   string       `json:"projectId"`
	ProjectName string       `json:"projectName"`
	Steps       []StepResult `json:"steps"`
}

// Failed reports whether any step did not succeed.
func (r *TeardownReport) Failed() bool {
	for _, s := range r.Steps {
		if s.Outcome == metrics.OutcomeFailure {
			return true
		}
	}
	return false
}

func (r *TeardownReport) add(step string, err error) {
	res := StepResult{Step: step, Outcome: metrics.Outcome(err)}
	if err != nil {
		res.Error = err.Error()
	}
	r.Steps = append(r.Steps, res)
	metrics.TeardownSteps.WithLabelValues(step, res.Outcome).Inc()
}

func (r *TeardownReport) skip(step string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Outcome: metrics.OutcomeSkipped})
	metrics.TeardownSteps.WithLabelValues(step, metrics.OutcomeSkipped).Inc()
}

// Teardown reverses provisioning for a project being deleted.
type Teardown struct {
	deps     Deps
	settings Settings
}

// NewTeardown creates a Teardown over deps.
func NewTeardown(deps Deps, settings Settings) *Teardown {
	return &Teardown{deps: deps, settings: settings.withDefaults()}
}

// OwnsRepository reports whether fullName was created by this system: the
// repository name carries the prefix and, when an owner is configured, the
// owner matches. Referenced repositories never qualify.
func (t *Teardown) OwnsRepository(fullName string) bool {
	owner, repo, err := vcs.SplitFullName(fullName)
	if err != nil {
		return false
	}
	if !strings.HasPrefix(repo, t.settings.RepoPrefix) {
		return false
	}
	return t.settings.RepoOwner == "" || strings.EqualFold(owner, t.settings.RepoOwner)
}

// Run deletes the hosting project, the system-created repository, local files
// and finally the record. Each step is best-effort; only a failure to delete
// the record is returned as an error.
func (t *Teardown) Run(ctx context.Context, p *domain.Project) (*TeardownReport, error) {
	rec := newRecorder(t.deps, p)
	report := &TeardownReport{ProjectID: p.ID, ProjectName: p.Name}

	rec.info(ctx, "Deletion process initiated for project %s", p.Name)

	if p.VercelProjectID != "" {
		rec.info(ctx, "Attempting to delete Vercel project ID: %s", p.VercelProjectID)
		err := t.deps.Hosting.DeleteProject(ctx, p.VercelProjectID)
		if err != nil {
			rec.warn(ctx, "Warning: Failed to delete Vercel project. %v", err)
		} else {
			rec.info(ctx, "Vercel project %s deleted successfully.", p.VercelProjectID)
		}
		report.add(stepHosting, err)
	} else {
		report.skip(stepHosting)
	}

	if p.GithubRepoName != "" && t.OwnsRepository(p.GithubRepoName) {
		rec.info(ctx, "Attempting to delete GitHub repository: %s", p.GithubRepoName)
		owner, repo, _ := vcs.SplitFullName(p.GithubRepoName)
		err := t.deps.Source.DeleteRepository(ctx, owner, repo)
		if err != nil {
			rec.warn(ctx, "Warning: Failed to delete GitHub repo. %v", err)
		} else {
			rec.info(ctx, "GitHub repository %s deleted successfully.", p.GithubRepoName)
		}
		report.add(stepRepository, err)
	} else {
		report.skip(stepRepository)
	}

	if p.FilePath != "" {
		err := os.Remove(p.FilePath)
		if os.IsNotExist(err) {
			err = nil
		}
		if err != nil {
			rec.logger.LogError("teardown_upload", err)
		}
		report.add(stepUpload, err)
	} else {
		report.skip(stepUpload)
	}

	if dir, err := StagingPath(t.settings.StagingDir, p.ID); err == nil {
		err = os.RemoveAll(dir)
		if err != nil {
			rec.logger.LogError("teardown_staging", err)
		}
		report.add(stepStaging, err)
	} else {
		report.skip(stepStaging)
	}

	ok, err := t.deps.Store.Delete(ctx, p.ID)
	if err == nil && !ok {
		err = domain.ErrNotFound
	}
	report.add(stepRecord, err)
	if err != nil {
		return report, fmt.Errorf("delete project record: %w", err)
	}
	rec.publish(ctx, domain.Event{Kind: domain.EventDeleted})
	return report, nil
}
