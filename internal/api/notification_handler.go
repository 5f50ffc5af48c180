package api

import (
	"errors"
	"net/http"
	"strconv"

	"sikadvoltz/progression/internal/push"
	"sikadvoltz/progression/internal/repository"
	"sikadvoltz/progression/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler exposes the notification read/ack surface and
// device registration for the deferred channel.
type NotificationHandler struct {
	notificationService service.NotificationService
	pushSender          *push.SNSSender
}

// NewNotificationHandler creates a new NotificationHandler. pushSender
// may be nil when the deferred channel is disabled (e.g. local dev).
func NewNotificationHandler(notificationService service.NotificationService, pushSender *push.SNSSender) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		pushSender:          pushSender,
	}
}

// GetUnreadCount handles GET /notifications/unread-count.
func (h *NotificationHandler) GetUnreadCount(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	count, err := h.notificationService.GetUnreadCount(c.Request.Context(), userID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to count unread notifications.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

// ListRecent handles GET /notifications.
func (h *NotificationHandler) ListRecent(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	limit := int64(50)
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := h.notificationService.ListRecent(c.Request.Context(), userID, limit)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list notifications.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkRead handles POST /notifications/:id/read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			abortWithError(c, http.StatusNotFound, "Notification not found.")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to mark notification read.")
		return
	}
	c.Status(http.StatusNoContent)
}

type registerDeviceRequest struct {
	Platform string `json:"platform" binding:"required"` // "android" | "ios"
	Token    string `json:"token" binding:"required"`
}

// RegisterDevice handles POST /notifications/devices.
func (h *NotificationHandler) RegisterDevice(c *gin.Context) {
	if h.pushSender == nil {
		abortWithError(c, http.StatusServiceUnavailable, "Push channel is not configured.")
		return
	}

	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	device, err := h.pushSender.RegisterDevice(c.Request.Context(), userID, req.Platform, req.Token)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to register device.")
		return
	}
	c.JSON(http.StatusCreated, device)
}

func (h *NotificationHandler) userID(c *gin.Context) (primitive.ObjectID, bool) {
	userIDStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user.")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return userID, true
}
