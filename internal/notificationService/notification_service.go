//go:generate mockgen -destination=mock_notifier.go -package=notification auction-manager/internal/notificationService Notifier

package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"auction-manager/internal/auctionerrors"
	"auction-manager/internal/events"
	"auction-manager/internal/metrics"
	model "auction-manager/internal/models"
	"auction-manager/internal/repository"
	"auction-manager/utils"
)

// Notifier is what the other services use to tell users about auction events
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
	NotifyAll(ctx context.Context, userIDs []uint, n model.Notification) error
}

// NotificationService stores notifications and delivers them live
type NotificationService struct {
	repo      repository.NotificationStore
	hub       *Hub
	publisher events.Publisher
	metrics   *metrics.Metrics
	now       func() time.Time
}

var _ Notifier = (*NotificationService)(nil)

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(repo repository.NotificationStore, hub *Hub, publisher events.Publisher, m *metrics.Metrics) *NotificationService {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &NotificationService{
		repo:      repo,
		hub:       hub,
		publisher: publisher,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Notify stores a notification for n.UserID, pushes it to the user's open
// streams and forwards it to the event publisher. Publisher failures are
// logged, never returned.
func (s *NotificationService) Notify(ctx context.Context, n model.Notification) error {
	if n.UserID == 0 || n.Kind == "" {
		return fmt.Errorf("service: %w - notification needs a user and a kind", auctionerrors.ErrInvalidInput)
	}
	n.ID = 0
	n.Read = false
	n.Text = strings.TrimSpace(n.Text)
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now()
	}

	if err := s.repo.CreateNotification(ctx, &n); err != nil {
		return fmt.Errorf("service: failed to store notification for user %d: %w", n.UserID, err)
	}
	s.metrics.NotificationSent(n.Kind)

	delivered := s.hub.Publish(n)
	if err := s.publisher.Publish(ctx, n); err != nil {
		utils.Warn("Failed to publish notification event", map[string]any{
			"notification_id": n.ID,
			"kind":            n.Kind,
			"error":           err.Error(),
		})
	}

	utils.Debug("Notification sent", map[string]any{
		"notification_id": n.ID,
		"user_id":         n.UserID,
		"kind":            n.Kind,
		"live_streams":    delivered,
	})
	return nil
}

// NotifyAll sends a copy of n to each distinct user
func (s *NotificationService) NotifyAll(ctx context.Context, userIDs []uint, n model.Notification) error {
	var errs []error
	for _, id := range lo.Uniq(userIDs) {
		n.UserID = id
		if err := s.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns a user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint, unreadOnly bool) ([]model.Notification, error) {
	list, err := s.repo.ListNotifications(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list notifications for user %d: %w", userID, err)
	}
	return list, nil
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint) error {
	if err := s.repo.MarkNotificationRead(ctx, userID, id); err != nil {
		return fmt.Errorf("service: failed to mark notification %d read: %w", id, err)
	}
	return nil
}

// MarkAllRead flags all of a user's notifications as read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	n, err := s.repo.MarkAllNotificationsRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("service: failed to mark notifications read for user %d: %w", userID, err)
	}
	return n, nil
}

// Delete removes one notification
func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	if err := s.repo.DeleteNotification(ctx, userID, id); err != nil {
		return fmt.Errorf("service: failed to delete notification %d: %w", id, err)
	}
	return nil
}

// Subscribe opens a live stream for the user. The returned function closes it.
func (s *NotificationService) Subscribe(userID uint) (<-chan model.Notification, func()) {
	sub := s.hub.Subscribe(userID)
	s.metrics.SubscriberAdded()
	var once sync.Once
	return sub.C(), func() {
		once.Do(func() {
			sub.Close()
			s.metrics.SubscriberRemoved()
		})
	}
}
