package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Kenz1481/web-deployment-website/internal/projects/domain"
)

// recorder is the single writer of one project's pipeline fields during a run.
// It remembers the last persisted status so every move is checked against
// the transition graph before it is written.
type recorder struct {
	store  Store
	events EventPublisher
	logger *Logger
	id     string
	status domain.Status
}

func newRecorder(deps Deps, p *domain.Project) *recorder {
	return &recorder{
		store:  deps.Store,
		events: deps.Events,
		logger: NewLogger(p.ID),
		id:     p.ID,
		status: p.Status,
	}
}

// log appends an entry to the project log. A failed append is reported on the
// process log only; the status write that follows surfaces a dead store.
func (r *recorder) log(ctx context.Context, typ domain.LogType, format string, args ...interface{}) {
	entry := domain.LogEntry{
		Timestamp: time.Now().UTC(),
		Message:   fmt.Sprintf(format, args...),
		Type:      typ,
	}

	switch typ {
	case domain.LogError:
		r.logger.LogError("project_log", fmt.Errorf("%s", entry.Message))
	case domain.LogWarn:
		r.logger.LogWarn("project_log", entry.Message)
	default:
		r.logger.LogInfo("project_log", entry.Message)
	}

	if err := r.store.AppendLog(ctx, r.id, entry); err != nil {
		r.logger.LogError("append_log", err)
		return
	}
	r.publish(ctx, domain.Event{Kind: domain.EventLog, Log: &entry})
}

func (r *recorder) info(ctx context.Context, format string, args ...interface{}) {
	r.log(ctx, domain.LogInfo, format, args...)
}

func (r *recorder) warn(ctx context.Context, format string, args ...interface{}) {
	r.log(ctx, domain.LogWarn, format, args...)
}

func (r *recorder) fail(ctx context.Context, format string, args ...interface{}) {
	r.log(ctx, domain.LogError, format, args...)
}

// advance persists a status move together with any fields in u.
func (r *recorder) advance(ctx context.Context, to domain.Status, u domain.ProjectUpdate) error {
	if !domain.CanTransition(r.status, to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, r.status, to)
	}
	u.Status = &to
	if err := r.store.UpdateFields(ctx, r.id, u); err != nil {
		return fmt.Errorf("persist status %s: %w", to, err)
	}
	r.status = to
	r.publish(ctx, domain.Event{Kind: domain.EventStatus, Status: to})
	return nil
}

// update persists fields without moving the status.
func (r *recorder) update(ctx context.Context, u domain.ProjectUpdate) error {
	if u.Status != nil {
		return fmt.Errorf("update cannot change status; use advance")
	}
	if err := r.store.UpdateFields(ctx, r.id, u); err != nil {
		return fmt.Errorf("persist fields: %w", err)
	}
	return nil
}

func (r *recorder) publish(ctx context.Context, ev domain.Event) {
	if r.events == nil {
		return
	}
	ev.ProjectID = r.id
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if err := r.events.Publish(ctx, ev); err != nil {
		r.logger.LogWarn("publish_event", err.Error())
	}
}
