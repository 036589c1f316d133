package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Kenz1481/web-deployment-website/internal/pipeline"
	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
	"github.com/Kenz1481/web-deployment-website/internal/vcs"
)

// Repository is the persistence the service needs.
type Repository interface {
	Create(ctx context.Context, p *domain.Project) error
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Project, error)
	UpdateFields(ctx context.Context, id string, u domain.ProjectUpdate) error
	AppendLog(ctx context.Context, id string, entry domain.LogEntry) error
	AddReview(ctx context.Context, projectID string, rv *domain.Review) error
}

// Dispatcher hands a project to the background pipeline.
type Dispatcher interface {
	Submit(projectID string) error
}

// Remover tears a project down.
type Remover interface {
	Run(ctx context.Context, p *domain.Project) (*pipeline.TeardownReport, error)
}

// Subscriber streams live pipeline events.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID string) (<-chan domain.Event, func(), error)
}

// ProjectService handles project-related business logic
type ProjectService struct {
	repo       Repository
	dispatcher Dispatcher
	remover    Remover
	events     Subscriber
	sourceHost string
}

// NewProjectService creates a new project service. events may be nil.
func NewProjectService(repo Repository, dispatcher Dispatcher, remover Remover, events Subscriber, sourceHost string) *ProjectService {
	if sourceHost == "" {
		sourceHost = pipeline.DefaultSourceHost
	}
	return &ProjectService{
		repo:       repo,
		dispatcher: dispatcher,
		remover:    remover,
		events:     events,
		sourceHost: sourceHost,
	}
}

// Create stores a new project in pending_setup and enqueues its pipeline.
// It returns as soon as the work is queued. A rejected submission is
// recorded on the project, which then ends in the error status.
func (s *ProjectService) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	logger := NewLogger(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	repoURL := strings.TrimSpace(req.RepoURL)
	if repoURL != "" && req.FilePath == "" {
		if _, err := vcs.ParseReference(repoURL, s.sourceHost); err != nil {
			return nil, domain.ErrInvalidRepoURL
		}
	}

	by := req.RequestedBy
	if by == "" {
		by = "admin"
	}
	now := time.Now().UTC()
	p := &domain.Project{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		RepoURL:     repoURL,
		FilePath:    req.FilePath,
		Subdomain:   domain.DeriveSubdomain(req.Subdomain, name),
		Status:      domain.StatusPendingSetup,
		Logs: []domain.LogEntry{
			{Timestamp: now, Message: fmt.Sprintf("Project creation initiated by %s.", by), Type: domain.LogInfo},
		},
	}
	if req.FilePath != "" {
		orig := req.OriginalFilename
		if orig == "" {
			orig = "archive"
		}
		p.Logs = append(p.Logs, domain.LogEntry{Timestamp: now, Message: fmt.Sprintf("File %s uploaded.", orig), Type: domain.LogInfo})
	}

	if err := s.repo.Create(ctx, p); err != nil {
		logger.LogError("create_project", err)
		return nil, err
	}
	logger.LogInfof("create_project", "project_id=%s subdomain=%s", p.ID, p.Subdomain)

	if err := s.dispatcher.Submit(p.ID); err != nil {
		logger.LogError("enqueue_pipeline", err)
		s.markNotQueued(ctx, p, err)
	}
	return p, nil
}

func (s *ProjectService) markNotQueued(ctx context.Context, p *domain.Project, cause error) {
	logger := NewLogger(ctx)
	entry := domain.LogEntry{
		Timestamp: time.Now().UTC(),
		Message:   fmt.Sprintf("Critical pipeline error: %v", cause),
		Type:      domain.LogError,
	}
	if err := s.repo.AppendLog(ctx, p.ID, entry); err != nil {
		logger.LogError("enqueue_pipeline_log", err)
	} else {
		p.Logs = append(p.Logs, entry)
	}
	status := domain.StatusError
	if err := s.repo.UpdateFields(ctx, p.ID, domain.ProjectUpdate{Status: &status}); err != nil {
		logger.LogError("enqueue_pipeline_status", err)
		return
	}
	p.Status = status
}

// ListPublic returns deployed projects without operator-only fields.
func (s *ProjectService) ListPublic(ctx context.Context) ([]domain.Project, error) {
	deployed := domain.StatusDeployed
	items, err := s.repo.List(ctx, domain.ListFilter{Status: &deployed})
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = *items[i].Public()
	}
	return items, nil
}

// ListAll returns every project, newest first.
func (s *ProjectService) ListAll(ctx context.Context) ([]domain.Project, error) {
	return s.repo.List(ctx, domain.ListFilter{})
}

// Get returns the full project record.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, id)
}

// GetPublic returns the project without logs or file path.
func (s *ProjectService) GetPublic(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return p.Public(), nil
}

// UpdateRequest carries the fields an operator may edit.
type UpdateRequest struct {
	Name        *string
	Description *string
}

// Update edits name and description and logs the change. Pipeline fields
// are not editable here.
func (s *ProjectService) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Project, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	u := domain.ProjectUpdate{Description: req.Description}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, domain.ErrNameRequired
		}
		u.Name = &name
	}
	if u.Empty() {
		return s.repo.FindByID(ctx, id)
	}

	if err := s.repo.UpdateFields(ctx, id, u); err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry := domain.LogEntry{
		Timestamp: time.Now().UTC(),
		Message:   fmt.Sprintf("Project details updated by admin. Status: %s", current.Status),
		Type:      domain.LogInfo,
	}
	if err := s.repo.AppendLog(ctx, id, entry); err != nil {
		return nil, err
	}
	current.Logs = append(current.Logs, entry)
	return current, nil
}

// AddReview validates and stores a review. Reviews are accepted in any status.
func (s *ProjectService) AddReview(ctx context.Context, id string, req domain.CreateReviewRequest) (*domain.Review, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		return nil, domain.ErrInvalidRating
	}
	name := strings.TrimSpace(req.ReviewerName)
	if name == "" {
		name = domain.DefaultReviewerName
	}
	rv := &domain.Review{
		ReviewerName: name,
		Rating:       req.Rating,
		Comment:      strings.TrimSpace(req.Comment),
	}
	if err := s.repo.AddReview(ctx, id, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// Delete runs teardown synchronously. An unknown id is ErrNotFound and
// touches no remote system.
func (s *ProjectService) Delete(ctx context.Context, id string) (*pipeline.TeardownReport, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	NewLogger(ctx).LogInfof("delete_project", "project_id=%s name=%q", p.ID, p.Name)
	return s.remover.Run(ctx, p)
}

// Subscribe streams events for an existing project.
func (s *ProjectService) Subscribe(ctx context.Context, id string) (<-chan domain.Event, func(), error) {
	if s.events == nil {
		return nil, nil, domain.ErrEventsDisabled
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, nil, err
	}
	return s.events.Subscribe(ctx, id)
}

func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrInvalidID
	}
	return nil
}
