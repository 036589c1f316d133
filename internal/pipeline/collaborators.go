package pipeline

import (
	"context"

	"github.com/Kenz1481/web-deployment-website/internal/github"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vercel"
)

// Store is the persistence the pipeline reads and writes project state through.
type Store interface {
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	UpdateFields(ctx context.Context, id string, u domain.ProjectUpdate) error
	AppendLog(ctx context.Context, id string, entry domain.LogEntry) error
	Delete(ctx context.Context, id string) (bool, error)
}

// Extractor unpacks an uploaded archive.
type Extractor interface {
	ExtractAll(archivePath, destDir string) error
}

// GitDriver runs version-control commands in a working directory.
type GitDriver interface {
	Init(ctx context.Context, dir string) error
	TrustDirectory(ctx context.Context, dir string) error
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
	RenameBranch(ctx context.Context, dir, branch string) error
	HasRemote(ctx context.Context, dir, name string) (bool, error)
	AddRemote(ctx context.Context, dir, name, url string) error
	SetRemoteURL(ctx context.Context, dir, name, url string) error
	ForcePush(ctx context.Context, dir, remote, branch string, secrets ...string) error
}

// SourceHost is the remote repository API.
type SourceHost interface {
	CreateRepository(ctx context.Context, name, description string, private bool) (*github.Repository, error)
	GetRepository(ctx context.Context, owner, repo string) (*github.Repository, error)
	DeleteRepository(ctx context.Context, owner, repo string) error
}

// Hosting is the deployment platform API.
type Hosting interface {
	CreateDeployment(ctx context.Context, req vercel.DeploymentRequest) (*vercel.Deployment, error)
	DeleteProject(ctx context.Context, projectID string) error
}

// EventPublisher fans pipeline events out to live watchers.
type EventPublisher interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// Deps bundles the collaborators a Coordinator or Teardown needs.
// Events may be nil.
type Deps struct {
	Store     Store
	Extractor Extractor
	Git       GitDriver
	Source    SourceHost
	Hosting   Hosting
	Events    EventPublisher
}
