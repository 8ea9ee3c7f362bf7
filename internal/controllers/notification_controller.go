package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolbus_tracker/internal/middleware"
	"schoolbus_tracker/internal/models"
	"schoolbus_tracker/internal/services"
)

type NotificationController struct {
	notifications *services.NotificationService
}

func NewNotificationController(notifications *services.NotificationService) *NotificationController {
	return &NotificationController{notifications: notifications}
}

// List returns the authenticated user's notifications, newest first
// (?limit=&offset=).
func (nc *NotificationController) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	out, err := nc.notifications.ListForUser(userID, queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out, "count": len(out)})
}

// UnreadCount returns how many of the user's notifications are unread.
func (nc *NotificationController) UnreadCount(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	n, err := nc.notifications.UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": n})
}

// MarkAsRead marks one of the user's notifications as read.
func (nc *NotificationController) MarkAsRead(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	id, ok := paramUint(c, "id")
	if !ok {
		return
	}
	if err := nc.notifications.MarkAsRead(id, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

type tokenInput struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

// RegisterToken stores a device push token for the user.
func (nc *NotificationController) RegisterToken(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var input tokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := nc.notifications.RegisterToken(userID, input.Token, input.Platform); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "token registered"})
}

// RemoveToken deletes a device push token, typically on logout.
func (nc *NotificationController) RemoveToken(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	var input tokenInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := nc.notifications.RemoveToken(userID, input.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "token removed"})
}

type broadcastInput struct {
	Type         string  `json:"type"`
	Title        string  `json:"title" binding:"required"`
	Message      string  `json:"message" binding:"required"`
	Priority     string  `json:"priority"`
	RecipientIDs []int64 `json:"recipient_ids" binding:"required"`
}

// Broadcast lets an admin send an ad-hoc notification to a recipient list.
func (nc *NotificationController) Broadcast(c *gin.Context) {
	var input broadcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Type == "" {
		input.Type = models.NotificationGeneral
	}
	n := models.Notification{
		Type:         input.Type,
		Title:        input.Title,
		Message:      input.Message,
		Priority:     input.Priority,
		RecipientIDs: input.RecipientIDs,
	}
	if err := nc.notifications.CreateAndSend(&n); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": n})
}
