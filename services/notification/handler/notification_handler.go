package handler

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	model "auction-manager/internal/models"
	"auction-manager/services/helpers"
	"auction-manager/utils"
)

//go:generate mockgen -destination=mock_service.go -package=handler auction-manager/services/notification/handler NotificationServiceInterface

type NotificationServiceInterface interface {
	List(ctx context.Context, userID uint, unreadOnly bool) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, userID, id uint) error
	Subscribe(userID uint) (<-chan model.Notification, func())
}

// DefaultKeepAlive is how often an idle stream sends a ping event
const DefaultKeepAlive = 25 * time.Second

type NotificationHandler struct {
	service   NotificationServiceInterface
	keepAlive time.Duration
}

func NewNotificationHandler(service NotificationServiceInterface, keepAlive time.Duration) *NotificationHandler {
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	return &NotificationHandler{service: service, keepAlive: keepAlive}
}

// ListHandler handles GET /notifications?unread=true
func (h *NotificationHandler) ListHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	unreadOnly := c.Query("unread") == "true"

	list, err := h.service.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		helpers.RespondError(c, "ListHandler", err, map[string]any{"user_id": userID})
		return
	}
	if list == nil {
		list = []model.Notification{}
	}

	utils.JSONResponse(c, http.StatusOK, list, "notifications retrieved successfully")
}

// MarkReadHandler handles POST /notifications/:id/read
func (h *NotificationHandler) MarkReadHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "id")
	if !ok {
		return
	}

	userID := helpers.CurrentUserID(c)
	if err := h.service.MarkRead(c.Request.Context(), userID, id); err != nil {
		helpers.RespondError(c, "MarkReadHandler", err, map[string]any{"user_id": userID, "notification_id": id})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "notification marked as read")
}

// MarkAllReadHandler handles POST /notifications/read
func (h *NotificationHandler) MarkAllReadHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	n, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondError(c, "MarkAllReadHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.MarkAllReadResponse{Updated: n}, "notifications marked as read")
	helpers.LogSuccess("MarkAllReadHandler", "notifications marked as read", map[string]any{
		"user_id": userID,
		"updated": n,
	})
}

// DeleteHandler handles DELETE /notifications/:id
func (h *NotificationHandler) DeleteHandler(c *gin.Context) {
	id, ok := helpers.ParseIDParam(c, "id")
	if !ok {
		return
	}

	userID := helpers.CurrentUserID(c)
	if err := h.service.Delete(c.Request.Context(), userID, id); err != nil {
		helpers.RespondError(c, "DeleteHandler", err, map[string]any{"user_id": userID, "notification_id": id})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "notification deleted successfully")
}

// StreamHandler handles GET /notifications/stream. Notifications are sent as
// server-sent events named after their kind until the client goes away.
func (h *NotificationHandler) StreamHandler(c *gin.Context) {
	userID := helpers.CurrentUserID(c)
	ch, cancel := h.service.Subscribe(userID)
	defer cancel()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	utils.Debug("StreamHandler: subscriber connected", map[string]any{"user_id": userID})
	sent := 0
	c.Stream(func(io.Writer) bool {
		select {
		case n, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(n.Kind), n)
			sent++
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
	utils.Debug("StreamHandler: subscriber disconnected", map[string]any{"user_id": userID, "sent": sent})
}
