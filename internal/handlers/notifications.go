package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/middleware"
)

func (h HandlerSet) ListNotifications(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePaging(c)
	notifications, total, err := h.notifications.List(c.Request.Context(), user.ID, page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, gin.H{
			"id":          n.ID,
			"type":        n.Type,
			"title":       n.Title,
			"message":     n.Message,
			"priority":    n.Priority,
			"read":        n.Read,
			"actionLink":  n.ActionLink,
			"actionLabel": n.ActionLabel,
			"createdAt":   n.CreatedAt,
			"readAt":      n.ReadAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": envelope(total, page, limit),
	})
}

func (h HandlerSet) UnreadCount(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.notifications.UnreadCount(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unread": count})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	if !h.ownsNotification(c) {
		return
	}

	updated, err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h HandlerSet) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.notifications.MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}

func (h HandlerSet) DeleteNotification(c *gin.Context) {
	if !h.ownsNotification(c) {
		return
	}

	deleted, err := h.notifications.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

// ownsNotification rejects cross-subject access to a notification id.
func (h HandlerSet) ownsNotification(c *gin.Context) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return false
	}

	n, err := h.notifications.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return false
	}
	if n.SubjectID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return false
	}
	return true
}
