package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type runnerFunc func(ctx context.Context, id string) error

func (f runnerFunc) Run(ctx context.Context, id string) error { return f(ctx, id) }

func TestExecutor_RunsSubmittedProjects(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	e := NewExecutor(runnerFunc(func(_ context.Context, id string) error {
		mu.Lock()
		seen[id] = true
		mu.Unlock()
		return nil
	}), 2, 8)
	e.Start()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, e.Submit(id))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Shutdown(ctx))

	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, seen)
}

func TestExecutor_QueueFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	e := NewExecutor(runnerFunc(func(context.Context, string) error {
		started <- struct{}{}
		<-release
		return nil
	}), 1, 1)
	e.Start()

	require.NoError(t, e.Submit("running"))
	<-started
	require.NoError(t, e.Submit("queued"))
	assert.ErrorIs(t, e.Submit("rejected"), ErrQueueFull)

	close(release)
	require.NoError(t, e.Shutdown(context.Background()))
}

func TestExecutor_SubmitAfterShutdown(t *testing.T) {
	e := NewExecutor(runnerFunc(func(context.Context, string) error { return nil }), 1, 1)
	e.Start()
	require.NoError(t, e.Shutdown(context.Background()))

	assert.ErrorIs(t, e.Submit("late"), ErrExecutorClosed)
	require.NoError(t, e.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestExecutor_RecoversPanics(t *testing.T) {
	var (
		mu       sync.Mutex
		panicked []string
		ran      []string
	)
	e := NewExecutor(runnerFunc(func(_ context.Context, id string) error {
		if id == "boom" {
			panic("unexpected nil")
		}
		mu.Lock()
		ran = append(ran, id)
		mu.Unlock()
		return errors.New("stage failed")
	}), 1, 4)
	e.OnPanic = func(id string, err error) {
		mu.Lock()
		panicked = append(panicked, id)
		mu.Unlock()
		assert.Contains(t, err.Error(), "unexpected nil")
	}
	e.Start()

	require.NoError(t, e.Submit("boom"))
	require.NoError(t, e.Submit("next"))
	require.NoError(t, e.Shutdown(context.Background()))

	assert.Equal(t, []string{"boom"}, panicked)
	assert.Equal(t, []string{"next"}, ran, "the worker survives a panic")
}

func TestExecutor_ShutdownHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	started := make(chan struct{})
	e := NewExecutor(runnerFunc(func(context.Context, string) error {
		close(started)
		<-block
		return nil
	}), 1, 1)
	e.Start()
	require.NoError(t, e.Submit("slow"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.Shutdown(ctx), context.DeadlineExceeded)
}
