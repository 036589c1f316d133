package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Ping(context.Background()).Err())
	return client, mr
}

func TestEventRepository_PublishSubscribe(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewEventRepository(client)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events, release, err := repo.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer release()

	require.NoError(t, repo.Publish(ctx, domain.Event{ProjectID: "p1", Kind: domain.EventStatus, Status: domain.StatusPushing}))
	require.NoError(t, repo.Publish(ctx, domain.Event{
		ProjectID: "p1",
		Kind:      domain.EventLog,
		Log:       &domain.LogEntry{Message: "Pushed to GitHub.", Type: domain.LogInfo},
	}))

	select {
	case ev := <-events:
		assert.Equal(t, domain.EventStatus, ev.Kind)
		assert.Equal(t, domain.StatusPushing, ev.Status)
		assert.False(t, ev.At.IsZero())
	case <-ctx.Done():
		t.Fatal("timed out waiting for status event")
	}

	select {
	case ev := <-events:
		assert.Equal(t, domain.EventLog, ev.Kind)
		require.NotNil(t, ev.Log)
		assert.Equal(t, "Pushed to GitHub.", ev.Log.Message)
	case <-ctx.Done():
		t.Fatal("timed out waiting for log event")
	}
}

func TestEventRepository_ChannelsAreScopedPerProject(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewEventRepository(client)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, release, err := repo.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer release()

	require.NoError(t, repo.Publish(ctx, domain.Event{ProjectID: "p2", Kind: domain.EventStatus, Status: domain.StatusDeployed}))
	require.NoError(t, repo.Publish(ctx, domain.Event{ProjectID: "p1", Kind: domain.EventDeleted}))

	select {
	case ev := <-events:
		assert.Equal(t, "p1", ev.ProjectID)
		assert.Equal(t, domain.EventDeleted, ev.Kind)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestEventRepository_RejectsEmptyID(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewEventRepository(client)

	assert.ErrorIs(t, repo.Publish(context.Background(), domain.Event{}), domain.ErrInvalidID)
	_, _, err := repo.Subscribe(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestEventRepository_ClosesOnContextDone(t *testing.T) {
	client, _ := setupTestRedis(t)
	repo := NewEventRepository(client)

	ctx, cancel := context.WithCancel(context.Background())
	events, release, err := repo.Subscribe(ctx, "p1")
	require.NoError(t, err)
	defer release()

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
