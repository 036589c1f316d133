package domain

import "errors"

var (
	ErrNotFound          = errors.New("project not found")
	ErrInvalidID         = errors.New("invalid project id")
	ErrNameRequired      = errors.New("project name is required")
	ErrInvalidRepoURL    = errors.New("invalid GitHub repository URL")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrSubdomainTaken    = errors.New("subdomain already in use")
	ErrInvalidStatus     = errors.New("invalid project status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrEventsDisabled    = errors.New("event streaming is not configured")
	ErrPartialDeployment = errors.New("deployment url and hosting identifiers must be set together")
)
