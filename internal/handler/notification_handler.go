package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"bubble/internal/middleware"
	"bubble/internal/models"
	"bubble/internal/service"

	"github.com/gin-gonic/gin"
)

type notificationLister interface {
	ListByRecipient(ctx context.Context, userID string, limit, offset int) ([]models.NotificationHistory, error)
}

type deviceTokenStore interface {
	AddFCMToken(ctx context.Context, userID, token string) error
	RemoveFCMTokens(ctx context.Context, userID string, tokens ...string) error
}

type NotificationHandler struct {
	history notificationLister
	tokens  deviceTokenStore
}

func NewNotificationHandler(history notificationLister, tokens deviceTokenStore) *NotificationHandler {
	return &NotificationHandler{history: history, tokens: tokens}
}

// List returns the notification history received by the authenticated user,
// newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.history.ListByRecipient(c.Request.Context(), userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// RegisterToken adds an FCM device token for the authenticated user.
func (h *NotificationHandler) RegisterToken(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tokens.AddFCMToken(c.Request.Context(), userID, req.Token); err != nil {
		respondTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// RemoveToken drops an FCM device token for the authenticated user.
func (h *NotificationHandler) RemoveToken(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.tokens.RemoveFCMTokens(c.Request.Context(), userID, req.Token); err != nil {
		respondTokenError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func respondTokenError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "token update failed"})
}
