package pipeline

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"sync"

	"github.com/Kenz1481/web-deployment-website/internal/metrics"
)

// Runner executes one pipeline run.
type Runner interface {
	Run(ctx context.Context, projectID string) error
}

// Executor runs submitted projects on a fixed pool of workers. Submissions
// never block; runs are never cancelled once started.
type Executor struct {
	runner  Runner
	workers int
	queue   chan string

	// OnPanic is called when a run escapes the coordinator with a panic.
	OnPanic func(projectID string, err error)

	mu      sync.Mutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewExecutor creates an executor with workers goroutines and a queue of queueSize.
func NewExecutor(runner Runner, workers, queueSize int) *Executor {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Executor{
		runner:  runner,
		workers: workers,
		queue:   make(chan string, queueSize),
	}
}

// Start launches the workers. Calling it twice is a no-op.
func (e *Executor) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.work(i)
	}
	log.Printf("[info] component=executor operation=start workers=%d queue=%d", e.workers, cap(e.queue))
}

// Submit enqueues projectID. It returns ErrQueueFull when every slot is
// taken and ErrExecutorClosed after Shutdown.
func (e *Executor) Submit(projectID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrExecutorClosed
	}
	select {
	case e.queue <- projectID:
		metrics.QueueDepth.Set(float64(len(e.queue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops intake and waits for queued and in-flight runs, or for ctx.
func (e *Executor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.queue)
	}
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("executor shutdown: %w", ctx.Err())
	}
}

func (e *Executor) work(n int) {
	defer e.wg.Done()
	for id := range e.queue {
		metrics.QueueDepth.Set(float64(len(e.queue)))
		e.runOne(n, id)
	}
}

// runOne is the error boundary of a single run.
func (e *Executor) runOne(worker int, projectID string) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("pipeline panic: %v", r)
			log.Printf("[error] component=executor worker=%d project_id=%s error=%v\n%s", worker, projectID, err, debug.Stack())
			e.notifyPanic(projectID, err)
		}
	}()

	if err := e.runner.Run(context.Background(), projectID); err != nil {
		log.Printf("[warn] component=executor worker=%d project_id=%s message=run ended with error: %v", worker, projectID, err)
		return
	}
	log.Printf("[info] component=executor worker=%d project_id=%s message=run finished", worker, projectID)
}

func (e *Executor) notifyPanic(projectID string, err error) {
	if e.OnPanic == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[error] component=executor project_id=%s error=panic handler failed: %v", projectID, r)
		}
	}()
	e.OnPanic(projectID, err)
}
