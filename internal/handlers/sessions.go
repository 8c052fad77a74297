package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/middleware"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/service"
)

func sessionView(s models.Session) gin.H {
	return gin.H{
		"id":           s.ID,
		"subjectId":    s.SubjectID,
		"ipAddress":    s.IPAddress,
		"browser":      s.Browser,
		"os":           s.OS,
		"deviceClass":  s.DeviceClass,
		"location":     s.Location,
		"lastActivity": s.LastActivity,
		"expiresAt":    s.ExpiresAt,
		"createdAt":    s.CreatedAt,
	}
}

func (h HandlerSet) ListOwnSessions(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessions, err := h.sessions.ListActiveForSubject(c.Request.Context(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}

	current, _ := middleware.CurrentSession(c)
	items := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		view := sessionView(s)
		view["current"] = s.ID == current.ID
		items = append(items, view)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h HandlerSet) RevokeOwnSession(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.sessions.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if session.SubjectID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	revoked, err := h.sessions.Revoke(c.Request.Context(), session.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

func (h HandlerSet) AdminListSessions(c *gin.Context) {
	page, limit := parsePaging(c)

	sessions, err := h.sessions.ListActive(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	if subjectID := c.Query("userId"); subjectID != "" {
		filtered := sessions[:0]
		for _, s := range sessions {
			if s.SubjectID == subjectID {
				filtered = append(filtered, s)
			}
		}
		sessions = filtered
	}

	total := len(sessions)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	items := make([]gin.H, 0, end-start)
	for _, s := range sessions[start:end] {
		items = append(items, sessionView(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": envelope(total, page, limit),
	})
}

func (h HandlerSet) AdminRevokeSession(c *gin.Context) {
	revoked, err := h.sessions.Revoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	if revoked {
		h.recordAdminAction(c, "session_revoked", "", gin.H{"sessionId": c.Param("id")})
	}
	c.JSON(http.StatusOK, gin.H{"revoked": revoked})
}

func (h HandlerSet) AdminRevokeSubjectSessions(c *gin.Context) {
	subjectID := c.Param("subjectId")

	count, err := h.sessions.RevokeAllForSubject(c.Request.Context(), subjectID)
	if err != nil {
		fail(c, err)
		return
	}

	if count > 0 {
		h.recordAdminAction(c, "sessions_revoked_all", subjectID, gin.H{"count": count})
	}
	c.JSON(http.StatusOK, gin.H{"revoked": count})
}

// recordAdminAction audits a privileged mutation performed through the
// dashboard. The audit write cannot fail the request.
func (h HandlerSet) recordAdminAction(c *gin.Context, action string, targetSubjectID string, details map[string]any) {
	actor, ok := middleware.CurrentUser(c)
	if !ok {
		return
	}
	h.audit.Record(c.Request.Context(), service.RecordActionInput{
		ActorID:         actor.ID,
		Action:          action,
		TargetSubjectID: targetSubjectID,
		IPAddress:       c.ClientIP(),
		UserAgent:       c.GetHeader("User-Agent"),
		Details:         details,
	})
}
