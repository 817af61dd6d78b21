package delivery

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	authrepo "eshop-backend/internal/auth/repository"
	"eshop-backend/internal/notification/dispatch"
	notifrepo "eshop-backend/internal/notification/repository"

	"github.com/gin-gonic/gin"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications notifrepo.NotificationRepository
	users         authrepo.UserRepository
	engine        *dispatch.Engine
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifications notifrepo.NotificationRepository, users authrepo.UserRepository, engine *dispatch.Engine) *NotificationHandler {
	return &NotificationHandler{
		notifications: notifications,
		users:         users,
		engine:        engine,
	}
}

// GetNotifications returns the authenticated user's notifications, newest first
// GET /api/notifications?limit=20&offset=0
func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	userID := c.GetString("userID")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, total, unread, err := h.notifications.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"total":         total,
		"unread":        unread,
	})
}

// MarkAsRead marks one notification as read (idempotent)
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.notifications.MarkRead(id, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MarkAllAsRead marks every notification of the user as read (idempotent)
// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.notifications.MarkAllRead(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteNotification removes one notification owned by the user
// DELETE /api/notifications/:id
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")

	if err := h.notifications.Delete(id, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SendRequest is the admin request body for targeted push notifications
type SendRequest struct {
	UserID string            `json:"user_id" binding:"required"`
	Title  string            `json:"title" binding:"required"`
	Body   string            `json:"body" binding:"required"`
	Type   string            `json:"type"`
	Data   map[string]string `json:"data"`
}

// SendToUser sends a push notification to one user (admin only)
// POST /api/notifications/send
func (h *NotificationHandler) SendToUser(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = "general"
	}

	result := h.engine.SendToUser(c.Request.Context(), req.UserID, req.Title, req.Body, req.Type, req.Data)
	c.JSON(http.StatusOK, result)
}

// BroadcastRequest is the admin request body for broadcast notifications
type BroadcastRequest struct {
	Title string            `json:"title" binding:"required"`
	Body  string            `json:"body" binding:"required"`
	Type  string            `json:"type"`
	Data  map[string]string `json:"data"`
}

// Broadcast sends a push notification to every user with a token (admin only)
// POST /api/notifications/broadcast
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var req BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Type == "" {
		req.Type = "broadcast"
	}

	// Broadcasts can outlive the request on large directories.
	result := h.engine.SendToAllUsers(context.Background(), req.Title, req.Body, req.Type, req.Data)
	c.JSON(http.StatusOK, result)
}

// RegisterTokenRequest is the request body for device token registration
type RegisterTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// RegisterToken stores the caller's device token (last write wins)
// POST /api/devices/register
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	userID := c.GetString("userID")

	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.users.SetToken(userID, req.Token); err != nil {
		if errors.Is(err, authrepo.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UnregisterToken clears the caller's device token (idempotent)
// DELETE /api/devices
func (h *NotificationHandler) UnregisterToken(c *gin.Context) {
	userID := c.GetString("userID")

	if err := h.users.ClearToken(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
