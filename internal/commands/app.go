package commands

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/Kenz1481/web-deployment-website/config"
	httpapi "github.com/Kenz1481/web-deployment-website/internal/api/http"
	"github.com/Kenz1481/web-deployment-website/internal/archive"
	"github.com/Kenz1481/web-deployment-website/internal/bootstrap"
	"github.com/Kenz1481/web-deployment-website/internal/github"
	"github.com/Kenz1481/web-deployment-website/internal/janitor"
	"github.com/Kenz1481/web-deployment-website/internal/pipeline"
	projecthttp "github.com/Kenz1481/web-deployment-website/internal/projects/http"
	"github.com/Kenz1481/web-deployment-website/internal/projects/repository"
	"github.com/Kenz1481/web-deployment-website/internal/projects/service"
	"github.com/Kenz1481/web-deployment-website/internal/storage/postgres"
	"github.com/Kenz1481/web-deployment-website/internal/vcs"
	"github.com/Kenz1481/web-deployment-website/internal/vercel"
)

// app holds every long-lived component of a running service.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	redis    *redis.Client
	projects *repository.ProjectRepository
	executor *pipeline.Executor
	janitor  *janitor.Janitor
	handler  *projecthttp.Handler
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	for _, w := range cfg.Warnings() {
		log.Printf("[warn] component=config message=%s", w)
	}

	db, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	rdb, err := bootstrap.OpenRedis(ctx, cfg.Redis)
	if err != nil {
		db.Close()
		return nil, err
	}

	gh, err := github.NewClient(github.Config{
		Token:     cfg.GitHub.Token,
		BaseURL:   cfg.GitHub.APIURL,
		RateLimit: cfg.Pipeline.APIRateLimit,
	})
	if err != nil {
		if rdb != nil {
			rdb.Close()
		}
		db.Close()
		return nil, fmt.Errorf("github client: %w", err)
	}
	hosting := vercel.NewClient(vercel.Config{
		Token:     cfg.Vercel.Token,
		TeamID:    cfg.Vercel.TeamID,
		BaseURL:   cfg.Vercel.APIURL,
		RateLimit: cfg.Pipeline.APIRateLimit,
	})

	projects := repository.NewProjectRepository(db)
	deps := pipeline.Deps{
		Store:     projects,
		Extractor: archive.NewZipExtractor(),
		Git:       vcs.NewDriver(cfg.GitHub.AuthorName, cfg.GitHub.AuthorEmail),
		Source:    gh,
		Hosting:   hosting,
	}
	var events service.Subscriber
	if rdb != nil {
		er := repository.NewEventRepository(rdb)
		deps.Events = er
		events = er
	}

	settings := pipeline.Settings{
		StagingDir:    cfg.Pipeline.StagingDir,
		RepoPrefix:    cfg.Pipeline.RepoPrefix,
		BrandName:     cfg.Pipeline.BrandName,
		RepoOwner:     cfg.GitHub.RepoOwner,
		PushToken:     cfg.GitHub.Token,
		HostingDomain: cfg.Vercel.Domain,
	}

	executor := pipeline.NewExecutor(pipeline.NewCoordinator(deps, settings), cfg.Pipeline.Workers, cfg.Pipeline.QueueSize)
	executor.OnPanic = func(projectID string, err error) {
		if ferr := pipeline.MarkFailed(context.Background(), deps, projectID, err); ferr != nil {
			log.Printf("[error] project_id=%s operation=mark_failed error=%v", projectID, ferr)
		}
	}

	svc := service.NewProjectService(projects, executor, pipeline.NewTeardown(deps, settings), events, "")

	return &app{
		cfg:      cfg,
		db:       db,
		redis:    rdb,
		projects: projects,
		executor: executor,
		janitor:  newJanitor(cfg, projects),
		handler:  projecthttp.New(svc, cfg.Pipeline.UploadsDir),
	}, nil
}

func newJanitor(cfg *config.Config, projects janitor.ProjectLister) *janitor.Janitor {
	return janitor.New(janitor.Config{
		StagingDir: cfg.Pipeline.StagingDir,
		UploadsDir: cfg.Pipeline.UploadsDir,
		MaxAge:     cfg.Janitor.MaxAge,
		Schedule:   cfg.Janitor.Schedule,
	}, projects)
}

func (a *app) routerDeps() bootstrap.RouterDeps {
	deps := bootstrap.RouterDeps{
		ServiceName: "deployd",
		Version:     a.cfg.App.Version,
		AdminAPIKey: a.cfg.Server.AdminAPIKey,
		DB:          a.db,
		Projects:    a.handler,
	}
	if a.redis != nil {
		rdb := a.redis
		deps.Redis = httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	return deps
}

func (a *app) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	a.db.Close()
}
