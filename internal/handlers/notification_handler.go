package handlers

import (
	"strconv"

	"github.com/787516/Matrimonial/pkg/utils"
	"github.com/gin-gonic/gin"
)

// ListNotifications GET /notifications?unread=true
func (h *HandlerManager) ListNotifications(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	page, limit := pageQuery(c)

	result, err := h.NotificationSvc.List(c.Request.Context(), userID, unreadOnly, page, limit)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, result)
}

// UnreadCount GET /notifications/unread-count
func (h *HandlerManager) UnreadCount(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	count, err := h.NotificationSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"unread": count})
}

// MarkNotificationRead PATCH /notifications/:id/read
func (h *HandlerManager) MarkNotificationRead(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.NotificationSvc.MarkRead(c.Request.Context(), userID, id); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "notification marked as read", nil)
}

// MarkAllNotificationsRead PATCH /notifications/read-all
func (h *HandlerManager) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	n, err := h.NotificationSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"updated": n})
}

// DeleteNotification DELETE /notifications/:id
func (h *HandlerManager) DeleteNotification(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.NotificationSvc.Delete(c.Request.Context(), userID, id); err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessWithMessage(c, "notification deleted", nil)
}

// ClearNotifications DELETE /notifications
func (h *HandlerManager) ClearNotifications(c *gin.Context) {
	userID, ok := caller(c)
	if !ok {
		return
	}

	n, err := h.NotificationSvc.Clear(c.Request.Context(), userID)
	if err != nil {
		utils.Error(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"deleted": n})
}
