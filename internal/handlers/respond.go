package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/apperr"
)

// pageEnvelope is the pagination wrapper every dashboard list endpoint
// returns.
type pageEnvelope struct {
	Total      int  `json:"total"`
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

func envelope(total int, page int, limit int) pageEnvelope {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return pageEnvelope{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1 && total > 0,
	}
}

func parsePaging(c *gin.Context) (page int, limit int) {
	page, limit = 1, 20

	if raw := c.Query("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			page = v
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}
	return page, limit
}

// parseDateRange reads optional startDate/endDate filters (RFC 3339 or
// plain dates).
func parseDateRange(c *gin.Context) (*time.Time, *time.Time, bool) {
	parse := func(raw string) (*time.Time, bool) {
		if raw == "" {
			return nil, true
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return &t, true
			}
		}
		return nil, false
	}

	start, ok := parse(c.Query("startDate"))
	if !ok {
		return nil, nil, false
	}
	end, ok := parse(c.Query("endDate"))
	if !ok {
		return nil, nil, false
	}
	return start, end, true
}

func nowStamp() string {
	return time.Now().UTC().Format("2006-01-02")
}

var kindStatus = map[apperr.Kind]int{
	apperr.Unauthorized: http.StatusUnauthorized,
	apperr.Forbidden:    http.StatusForbidden,
	apperr.NotFound:     http.StatusNotFound,
	apperr.Invalid:      http.StatusBadRequest,
	apperr.RateLimited:  http.StatusTooManyRequests,
	apperr.Internal:     http.StatusInternalServerError,
}

func fail(c *gin.Context, err error) {
	status, ok := kindStatus[apperr.KindOf(err)]
	if !ok {
		status = http.StatusInternalServerError
	}
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal_server_error"
	}
	c.JSON(status, gin.H{"error": message})
}
