package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/greencycle/ecollect/internal/notifications"
	"github.com/greencycle/ecollect/internal/services"
	"github.com/greencycle/ecollect/pkg/mail"
	"github.com/greencycle/ecollect/pkg/response"
)

// NotificationHandler exposes HTTP endpoints for notifications.
type NotificationHandler struct {
	service *services.NotificationService
	hub     *notifications.Hub
}

// NewNotificationHandler constructs a notification handler.
func NewNotificationHandler(db *gorm.DB, hub *notifications.Hub, mailer mail.Mailer) (*NotificationHandler, error) {
	service, err := services.NewNotificationService(db, hub, mailer)
	if err != nil {
		return nil, err
	}
	return &NotificationHandler{service: service, hub: hub}, nil
}

// Service exposes the underlying notification service for wiring the
// item dispatcher.
func (h *NotificationHandler) Service() *services.NotificationService {
	return h.service
}

// List returns notifications for the current user.
func (h *NotificationHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	items, err := h.service.ListForUser(requestContext(c), services.ListNotificationsInput{
		UserID:     actor.UserID,
		UnreadOnly: c.Query("unread") == "true",
		Limit:      parseIntQuery(c, "limit", 25),
		Offset:     parseIntQuery(c, "offset", 0),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// UnreadCount returns the number of unread notifications.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(requestContext(c), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": count})
}

// MarkRead marks one notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	dto, err := h.service.MarkRead(requestContext(c), actor.UserID, strings.TrimSpace(c.Param("id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, dto)
}

// MarkAllRead marks every notification for the caller as read.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.service.MarkAllRead(requestContext(c), actor.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"status": "ok"})
}

// Stream upgrades to a websocket delivering notification events.
func (h *NotificationHandler) Stream(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	if h.hub == nil {
		c.Status(http.StatusNotImplemented)
		return
	}

	h.hub.Serve(actor.UserID, c.Writer, c.Request)
}
