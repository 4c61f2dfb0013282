package controllers

import (
	"net/http"

	"debatehub/store"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// NotificationController serves per-user notifications.
type NotificationController struct {
	notifications store.NotificationStore
	log           *logrus.Logger
}

func NewNotificationController(notifications store.NotificationStore, log *logrus.Logger) *NotificationController {
	return &NotificationController{notifications: notifications, log: log}
}

// ListNotifications handles GET /users/:username/notifications
func (nc *NotificationController) ListNotifications(c *gin.Context) {
	list, err := nc.notifications.ListByUser(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, nc.log, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MarkRead handles PUT /notifications/:id/read
func (nc *NotificationController) MarkRead(c *gin.Context) {
	if err := nc.notifications.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, nc.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
