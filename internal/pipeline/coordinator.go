package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

// Coordinator drives one project through stage, provision, push and deploy.
type Coordinator struct {
	deps     Deps
	settings Settings

	stager      *Stager
	provisioner *Provisioner
	pusher      *Pusher
	deployer    *Deployer
}

// NewCoordinator wires the stages over deps.
func NewCoordinator(deps Deps, settings Settings) *Coordinator {
	settings = settings.withDefaults()
	return &Coordinator{
		deps:        deps,
		settings:    settings,
		stager:      &Stager{extractor: deps.Extractor, host: settings.SourceHost},
		provisioner: &Provisioner{source: deps.Source, settings: settings},
		pusher:      &Pusher{git: deps.Git, settings: settings},
		deployer:    &Deployer{hosting: deps.Hosting, settings: settings},
	}
}

// Run executes the pipeline for projectID to a terminal status. Stage
// failures become persisted state; any other error or panic moves the project
// to the generic error status. The staging directory and the upload are
// removed on every exit path. The returned error is informational: by the
// time Run returns, everything worth knowing is on the project record.
func (c *Coordinator) Run(ctx context.Context, projectID string) (err error) {
	p, err := c.deps.Store.FindByID(ctx, projectID)
	if err != nil {
		NewLogger(projectID).LogError("pipeline_load", err)
		return fmt.Errorf("load project: %w", err)
	}

	rec := newRecorder(c.deps, p)
	ws, err := newWorkspace(c.settings.StagingDir, p.ID, p.FilePath)
	if err != nil {
		c.abort(ctx, rec, err)
		return err
	}
	// Deferred first so it runs last, after the final status is written.
	defer ws.release(ctx, rec)
	defer func() {
		if r := recover(); r != nil {
			rec.logger.LogError("pipeline_panic", fmt.Errorf("%v\n%s", r, debug.Stack()))
			err = fmt.Errorf("pipeline panic: %v", r)
			c.abort(ctx, rec, err)
		}
		metrics.PipelineRuns.WithLabelValues(string(rec.status)).Inc()
	}()

	err = c.run(ctx, rec, p, ws)
	var se *StageError
	switch {
	case err == nil:
	case errors.As(err, &se):
		rec.fail(ctx, "%s", se.Message)
		if aerr := rec.advance(ctx, se.Status, domain.ProjectUpdate{}); aerr != nil {
			c.abort(ctx, rec, aerr)
		}
	default:
		c.abort(ctx, rec, err)
	}
	return err
}

func (c *Coordinator) run(ctx context.Context, rec *recorder, p *domain.Project, ws *workspace) error {
	rec.info(ctx, "Deployment pipeline started.")
	if err := rec.advance(ctx, domain.StatusProcessing, domain.ProjectUpdate{}); err != nil {
		return err
	}

	src, err := c.stager.Stage(ctx, rec, p, ws)
	if err != nil {
		return err
	}
	if src.Kind == SourceNone {
		return nil
	}

	repo, err := c.provisioner.Provision(ctx, rec, p, src)
	if err != nil {
		return err
	}

	if src.Kind == SourceArchive {
		if err := c.pusher.Push(ctx, rec, p, src.Dir, repo); err != nil {
			return err
		}
	}

	return c.deployer.Deploy(ctx, rec, p, repo)
}

// abort is the top-level catch: log why progress stopped and park the
// project in the generic error status if it is not terminal yet.
func (c *Coordinator) abort(ctx context.Context, rec *recorder, cause error) {
	rec.fail(ctx, "Critical pipeline error: %v", cause)
	if rec.status.IsTerminal() {
		return
	}
	if err := rec.advance(ctx, domain.StatusError, domain.ProjectUpdate{}); err != nil {
		rec.logger.LogError("pipeline_abort", err)
	}
}

// MarkFailed records a run that never started (for example, rejected by the
// executor) as a generic error.
func MarkFailed(ctx context.Context, deps Deps, projectID string, cause error) error {
	p, err := deps.Store.FindByID(ctx, projectID)
	if err != nil {
		return err
	}
	rec := newRecorder(deps, p)
	rec.fail(ctx, "Critical pipeline error: %v", cause)
	if rec.status.IsTerminal() {
		return nil
	}
	return rec.advance(ctx, domain.StatusError, domain.ProjectUpdate{})
}
