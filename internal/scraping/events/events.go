// Package events fans out project status changes over Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/listly/listly-backend/internal/logging"
	"github.com/listly/listly-backend/internal/projects/domain"
)

const channelPrefix = "listly:events:" // listly:events:{project_id}

const (
	TypeUpdate  = "update"
	TypeDeleted = "deleted"
)

// Event is the payload published on a project's channel.
type Event struct {
	Type      string          `json:"type"`
	ProjectID string          `json:"project_id"`
	UserID    string          `json:"user_id"`
	Project   *domain.Project `json:"project,omitempty"`
}

// Bus publishes and subscribes project events.
type Bus struct {
	client *redis.Client
}

func NewBus(client *redis.Client) *Bus {
	return &Bus{client: client}
}

func channel(projectID string) string {
	return fmt.Sprintf("%s%s", channelPrefix, projectID)
}

// PublishStatus announces a status change. Errors are logged, not returned.
func (b *Bus) PublishStatus(ctx context.Context, p *domain.Project) {
	if p == nil || p.ID == "" || p.Status == "" {
		return
	}
	b.publish(ctx, Event{Type: TypeUpdate, ProjectID: p.ID, UserID: p.UserID, Project: p})
}

func (b *Bus) PublishDeleted(ctx context.Context, userID, projectID string) {
	b.publish(ctx, Event{Type: TypeDeleted, ProjectID: projectID, UserID: userID})
}

func (b *Bus) publish(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := b.client.Publish(ctx, channel(ev.ProjectID), data).Err(); err != nil {
		logging.FromContext(ctx).LogWarn("publish_event", "redis publish failed",
			zap.String("project_id", ev.ProjectID), zap.Error(err))
	}
}

// Subscribe returns events for projectID until ctx is done. The returned
// channel is closed when the subscription ends.
func (b *Bus) Subscribe(ctx context.Context, projectID string) (<-chan Event, error) {
	sub := b.client.Subscribe(ctx, channel(projectID))
	// Wait for the subscription to be confirmed so no event published
	// after Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan Event, 8)
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
				var ev Event
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
	return out, nil
}
