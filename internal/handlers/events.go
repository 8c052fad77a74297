package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/middleware"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

func eventView(e models.SecurityEvent) gin.H {
	view := gin.H{
		"id":        e.ID,
		"eventType": e.EventType,
		"severity":  e.Severity,
		"subjectId": e.SubjectID,
		"ipAddress": e.IPAddress,
		"userAgent": e.UserAgent,
		"location":  e.Location,
		"details":   e.Details,
		"createdAt": e.CreatedAt,
		"resolved":  e.Resolved,
	}
	if e.Resolved {
		view["resolvedBy"] = e.ResolvedBy
		view["resolvedAt"] = e.ResolvedAt
	}
	return view
}

func (h HandlerSet) AdminListEvents(c *gin.Context) {
	page, limit := parsePaging(c)

	start, end, ok := parseDateRange(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	filter := repository.EventFilter{
		EventType: models.EventType(c.Query("eventType")),
		SubjectID: c.Query("userId"),
		Start:     start,
		End:       end,
		Search:    c.Query("search"),
	}

	events, total, err := h.events.Query(c.Request.Context(), filter, page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(events))
	for _, e := range events {
		items = append(items, eventView(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": envelope(total, page, limit),
	})
}

func (h HandlerSet) AdminResolveEvent(c *gin.Context) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	event, err := h.events.Resolve(c.Request.Context(), c.Param("id"), actor.ID)
	if err != nil {
		fail(c, err)
		return
	}

	h.recordAdminAction(c, "event_resolved", event.SubjectID, gin.H{"eventId": event.ID})
	c.JSON(http.StatusOK, eventView(event))
}
