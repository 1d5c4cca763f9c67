package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"classroom-energy-api/models"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// visibleNotificationRoles maps a reader's role to the target roles they may
// see. Admins also see faculty-targeted messages; everyone sees "all".
func visibleNotificationRoles(role string) []string {
	switch role {
	case "admin":
		return []string{"admin", "faculty", "all"}
	default:
		return []string{role, "all"}
	}
}

// List returns the notifications visible to the caller's role, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	roles := visibleNotificationRoles(c.GetString("role"))

	var notifications []models.Notification
	if err := h.db.Where("target_role IN ?", roles).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "count": len(notifications)})
}

// MarkRead flags a single notification as read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	var notification models.Notification
	if err := h.db.First(&notification, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}

	notification.IsRead = true
	if err := h.db.Save(&notification).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
