package repository

import (
	"context"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
)

// CreateNotification stores a notification for its user
func (r *GormRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	return wrap("create notification", r.db.WithContext(ctx).Create(n).Error)
}

// ListNotifications returns a user's notifications, newest first
func (r *GormRepo) ListNotifications(ctx context.Context, userID uint, unreadOnly bool) ([]model.Notification, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	notifications := []model.Notification{}
	err := q.Order("timestamp DESC").Order("id DESC").Find(&notifications).Error
	return notifications, wrap("list notifications", err)
}

// MarkNotificationRead flags one of the user's notifications as read
func (r *GormRepo) MarkNotificationRead(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return wrap("mark notification read", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("mark notification read", auctionerrors.ErrNotificationNotFound)
	}
	return nil
}

// MarkAllNotificationsRead flags every unread notification of a user as read
func (r *GormRepo) MarkAllNotificationsRead(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true)
	return res.RowsAffected, wrap("mark all notifications read", res.Error)
}

// DeleteNotification removes one of the user's notifications
func (r *GormRepo) DeleteNotification(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Notification{})
	if res.Error != nil {
		return wrap("delete notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete notification", auctionerrors.ErrNotificationNotFound)
	}
	return nil
}
