package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) AdminSecurityScore(c *gin.Context) {
	snapshot, err := h.score.ComputeScore(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"score": snapshot.Total,
		"grade": snapshot.Grade,
		"components": gin.H{
			"twoFactorAdoption": snapshot.TwoFactor,
			"failedLogins":      snapshot.FailedLogins,
			"suspicious":        snapshot.Suspicious,
			"accountSecurity":   snapshot.AccountSecurity,
		},
		"computedAt": snapshot.ComputedAt,
	})
}
