package http

import (
	"context"
	"time"

	"github.com/Kenz1481/web-deployment-website/internal/pipeline"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/projects/service"
)

// Service is the project behaviour the handlers call.
type Service interface {
	Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error)
	ListPublic(ctx context.Context) ([]domain.Project, error)
	ListAll(ctx context.Context) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	GetPublic(ctx context.Context, id string) (*domain.Project, error)
	Update(ctx context.Context, id string, req service.UpdateRequest) (*domain.Project, error)
	AddReview(ctx context.Context, id string, req domain.CreateReviewRequest) (*domain.Review, error)
	Delete(ctx context.Context, id string) (*pipeline.TeardownReport, error)
	Subscribe(ctx context.Context, id string) (<-chan domain.Event, func(), error)
}

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	svc        Service
	uploadsDir string
	maxUpload  int64
	keepAlive  time.Duration
	now        func() time.Time
}

// DefaultMaxUpload bounds the multipart body accepted for a new project.
const DefaultMaxUpload = 100 << 20

func New(svc Service, uploadsDir string) *Handler {
	return &Handler{
		svc:        svc,
		uploadsDir: uploadsDir,
		maxUpload:  DefaultMaxUpload,
		keepAlive:  15 * time.Second,
		now:        time.Now,
	}
}

type updateReq struct {
	ProjectName *string `json:"projectName"`
	Description *string `json:"description"`
}

type reviewReq struct {
	ReviewerName string `json:"reviewerName"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
}
