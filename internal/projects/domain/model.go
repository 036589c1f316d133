package domain

import "time"

// Project is the unit of work driven through the deployment pipeline.
// It is storage-agnostic and shared by the repository, pipeline and HTTP layers.
type Project struct {
	ID          string `json:"id"`
	Name        string `json:"projectName"`
	Description string `json:"description,omitempty"`
	// RepoURL is a reference to an existing remote repository. FilePath wins when both are set.
	RepoURL   string `json:"repoUrl,omitempty"`
	FilePath  string `json:"filePath,omitempty"`
	Subdomain string `json:"subdomain,omitempty"`
	Status    Status `json:"status"`

	DeploymentURL      string `json:"deploymentUrl,omitempty"`
	VercelProjectID    string `json:"vercelProjectId,omitempty"`
	VercelDeploymentID string `json:"vercelDeploymentId,omitempty"`

	GithubRepoName string `json:"githubRepoName,omitempty"`
	GithubRepoID   int64  `json:"githubRepoId,omitempty"`
	GithubRepoURL  string `json:"githubRepoUrl,omitempty"`

	Logs    []LogEntry `json:"logs,omitempty"`
	Reviews []Review   `json:"reviews"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// HasArchive reports whether an uploaded archive is the project's source.
func (p *Project) HasArchive() bool {
	return p.FilePath != ""
}

// HasRepoReference reports whether the project points at an existing remote repository.
func (p *Project) HasRepoReference() bool {
	return p.RepoURL != ""
}

// Public strips the operator-only fields (logs, local file path) from a copy of p.
func (p *Project) Public() *Project {
	cp := *p
	cp.Logs = nil
	cp.FilePath = ""
	return &cp
}

// LogType is the severity tag attached to a log entry.
type LogType string

const (
	LogInfo   LogType = "info"
	LogWarn   LogType = "warn"
	LogError  LogType = "error"
	LogDeploy LogType = "deploy"
)

// LogEntry is one element of a project's append-only log sequence.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
}

// Review is a rating left on a project; independent of pipeline state.
type Review struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"projectId"`
	ReviewerName string    `json:"reviewerName"`
	Rating       int       `json:"rating"`
	Comment      string    `json:"comment,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	MinRating = 1
	MaxRating = 5

	DefaultReviewerName = "Anonymous"
)

// CreateProjectRequest carries what the request handler collected for a new project.
type CreateProjectRequest struct {
	Name             string
	Description      string
	RepoURL          string
	Subdomain        string
	FilePath         string
	OriginalFilename string
	RequestedBy      string
}

// CreateReviewRequest carries a review submission.
type CreateReviewRequest struct {
	ReviewerName string
	Rating       int
	Comment      string
}

// ProjectUpdate is a partial update; nil fields are left untouched.
type ProjectUpdate struct {
	Name        *string
	Description *string
	Status      *Status

	DeploymentURL      *string
	VercelProjectID    *string
	VercelDeploymentID *string

	GithubRepoName *string
	GithubRepoID   *int64
	GithubRepoURL  *string
}

// Validate enforces that the deployment address and the hosting-platform
// identifiers are written together or not at all.
func (u ProjectUpdate) Validate() error {
	if (u.DeploymentURL == nil) != (u.VercelProjectID == nil) {
		return ErrPartialDeployment
	}
	if u.VercelDeploymentID != nil && u.DeploymentURL == nil {
		return ErrPartialDeployment
	}
	if u.Status != nil && !u.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Empty reports whether the update sets no field.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Status == nil &&
		u.DeploymentURL == nil && u.VercelProjectID == nil && u.VercelDeploymentID == nil &&
		u.GithubRepoName == nil && u.GithubRepoID == nil && u.GithubRepoURL == nil
}

// ListFilter narrows project listings.
type ListFilter struct {
	Status *Status
}
