package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
)

func auditFilterFrom(c *gin.Context) (repository.AuditFilter, bool) {
	start, end, ok := parseDateRange(c)
	if !ok {
		return repository.AuditFilter{}, false
	}
	return repository.AuditFilter{
		Action:  c.Query("action"),
		ActorID: c.Query("userId"),
		Start:   start,
		End:     end,
		Search:  c.Query("search"),
	}, true
}

func (h HandlerSet) AdminListAuditLog(c *gin.Context) {
	page, limit := parsePaging(c)

	filter, ok := auditFilterFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	actions, total, err := h.audit.Query(c.Request.Context(), filter, page, limit)
	if err != nil {
		fail(c, err)
		return
	}

	items := make([]gin.H, 0, len(actions))
	for _, a := range actions {
		items = append(items, gin.H{
			"id":              a.ID,
			"actorId":         a.ActorID,
			"action":          a.Action,
			"targetSubjectId": a.TargetSubjectID,
			"ipAddress":       a.IPAddress,
			"details":         a.Details,
			"createdAt":       a.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":      items,
		"pagination": envelope(total, page, limit),
	})
}

func (h HandlerSet) AdminExportAuditLog(c *gin.Context) {
	filter, ok := auditFilterFrom(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date range"})
		return
	}

	data, err := h.audit.ExportCSV(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	filename := fmt.Sprintf("audit-log-%s.csv", nowStamp())
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", data)
}
