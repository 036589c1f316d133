package domain

import "fmt"

// Status is the pipeline position of a project. The set of values is closed;
// every switch over Status in this package lists all of them.
type Status string

const (
	StatusPendingSetup       Status = "pending_setup"
	StatusProcessing         Status = "processing"
	StatusProcessingZip      Status = "processing_zip"
	StatusCreatingRepo       Status = "creating_github_repo"
	StatusPushing            Status = "pushing_to_github"
	StatusLinkingRepo        Status = "linking_to_existing_repo"
	StatusDeploying          Status = "deploying_to_vercel"
	StatusDeployed           Status = "deployed"
	StatusPendingManualSetup Status = "pending_manual_setup"

	StatusErrorZipExtraction   Status = "error_zip_extraction"
	StatusErrorGithubCreation  Status = "error_github_creation"
	StatusErrorInvalidRepoURL  Status = "error_invalid_repo_url"
	StatusErrorGithubFetchID   Status = "error_github_fetch_id"
	StatusErrorGithubPush      Status = "error_github_push"
	StatusErrorMissingGHDetail Status = "error_missing_gh_details"
	StatusErrorVercelDeploy    Status = "error_vercel_deployment"
	StatusError                Status = "error"
)

// AllStatuses lists every status in pipeline order.
var AllStatuses = []Status{
	StatusPendingSetup,
	StatusProcessing,
	StatusProcessingZip,
	StatusCreatingRepo,
	StatusPushing,
	StatusLinkingRepo,
	StatusDeploying,
	StatusDeployed,
	StatusPendingManualSetup,
	StatusErrorZipExtraction,
	StatusErrorGithubCreation,
	StatusErrorInvalidRepoURL,
	StatusErrorGithubFetchID,
	StatusErrorGithubPush,
	StatusErrorMissingGHDetail,
	StatusErrorVercelDeploy,
	StatusError,
}

// ParseStatus converts a stored value back into a Status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

func (s Status) String() string { return string(s) }

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingSetup, StatusProcessing, StatusProcessingZip, StatusCreatingRepo,
		StatusPushing, StatusLinkingRepo, StatusDeploying, StatusDeployed,
		StatusPendingManualSetup, StatusErrorZipExtraction, StatusErrorGithubCreation,
		StatusErrorInvalidRepoURL, StatusErrorGithubFetchID, StatusErrorGithubPush,
		StatusErrorMissingGHDetail, StatusErrorVercelDeploy, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further automatic stage runs from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDeployed, StatusPendingManualSetup:
		return true
	case StatusErrorZipExtraction, StatusErrorGithubCreation, StatusErrorInvalidRepoURL,
		StatusErrorGithubFetchID, StatusErrorGithubPush, StatusErrorMissingGHDetail,
		StatusErrorVercelDeploy, StatusError:
		return true
	case StatusPendingSetup, StatusProcessing, StatusProcessingZip, StatusCreatingRepo,
		StatusPushing, StatusLinkingRepo, StatusDeploying:
		return false
	}
	return false
}

// IsError reports whether s is one of the error leaves.
func (s Status) IsError() bool {
	switch s {
	case StatusErrorZipExtraction, StatusErrorGithubCreation, StatusErrorInvalidRepoURL,
		StatusErrorGithubFetchID, StatusErrorGithubPush, StatusErrorMissingGHDetail,
		StatusErrorVercelDeploy, StatusError:
		return true
	case StatusPendingSetup, StatusProcessing, StatusProcessingZip, StatusCreatingRepo,
		StatusPushing, StatusLinkingRepo, StatusDeploying, StatusDeployed,
		StatusPendingManualSetup:
		return false
	}
	return false
}

// next holds the forward edges of the stage graph. The generic StatusError
// is reachable from every non-terminal status and is not listed here.
var next = map[Status][]Status{
	StatusPendingSetup:  {StatusProcessing},
	StatusProcessing:    {StatusProcessingZip, StatusLinkingRepo, StatusPendingManualSetup},
	StatusProcessingZip: {StatusCreatingRepo, StatusErrorZipExtraction},
	StatusCreatingRepo:  {StatusPushing, StatusErrorGithubCreation},
	StatusPushing:       {StatusDeploying, StatusErrorGithubPush, StatusErrorMissingGHDetail},
	StatusLinkingRepo: {
		StatusDeploying, StatusErrorInvalidRepoURL, StatusErrorGithubFetchID, StatusErrorMissingGHDetail,
	},
	StatusDeploying: {StatusDeployed, StatusErrorVercelDeploy},
}

// CanTransition reports whether the stage graph allows moving from one status to another.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from.IsTerminal() {
		return false
	}
	if to == StatusError {
		return true
	}
	for _, s := range next[from] {
		if s == to {
			return true
		}
	}
	return false
}
