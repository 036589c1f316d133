package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

const eventChannelPrefix = "deploy:events:" // Pub/Sub channel per project: deploy:events:{project_id}

// EventRepository publishes project pipeline events over Redis Pub/Sub.
type EventRepository struct {
	client *redis.Client
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(client *redis.Client) *EventRepository {
	return &EventRepository{client: client}
}

// Publish sends ev on the project's channel.
func (r *EventRepository) Publish(ctx context.Context, ev domain.Event) error {
	if ev.ProjectID == "" {
		return domain.ErrInvalidID
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel(ev.ProjectID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe returns a channel of events for projectID. The channel is closed
// once ctx is done; the returned func releases the subscription early.
func (r *EventRepository) Subscribe(ctx context.Context, projectID string) (<-chan domain.Event, func(), error) {
	if projectID == "" {
		return nil, nil, domain.ErrInvalidID
	}

	sub := r.client.Subscribe(ctx, r.channel(projectID))
	// Wait for the subscription confirmation so no event published after
	// this call returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.Event, 16)
	go func() {
		defer close(out)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var ev domain.Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, func() { sub.Close() }, nil
}

func (r *EventRepository) channel(projectID string) string {
	return eventChannelPrefix + projectID
}
