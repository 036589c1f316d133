package pipeline

import (
	"errors"
	"fmt"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("pipeline queue is full")
	// ErrExecutorClosed is returned by Submit after Shutdown.
	ErrExecutorClosed = errors.New("pipeline executor is shut down")
)

// StageError halts a run at one stage. Status is the error leaf the project
// moves to and Message is the line appended to its log.
type StageError struct {
	Stage   string
	Status  domain.Status
	Message string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, status domain.Status, err error, format string, args ...interface{}) *StageError {
	return &StageError{Stage: stage, Status: status, Message: fmt.Sprintf(format, args...), Err: err}
}
