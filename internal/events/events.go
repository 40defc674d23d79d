package events

import (
	"context"

	model "auction-manager/internal/models"
	"auction-manager/utils"
)

// Publisher forwards notifications to systems outside the process
type Publisher interface {
	Publish(ctx context.Context, n model.Notification) error
	Close() error
}

// RoutingKey returns the topic a notification is published under,
// e.g. "notification.outbid".
func RoutingKey(kind model.NotificationKind) string {
	return "notification." + string(kind)
}

// LogPublisher writes events to the debug log; used when no broker is configured
type LogPublisher struct{}

// Publish logs the notification
func (LogPublisher) Publish(_ context.Context, n model.Notification) error {
	utils.Debug("Event published", map[string]any{
		"routing_key":     RoutingKey(n.Kind),
		"user_id":         n.UserID,
		"notification_id": n.ID,
	})
	return nil
}

// Close is a no-op
func (LogPublisher) Close() error { return nil }
