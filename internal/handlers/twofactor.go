package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/middleware"
)

func (h HandlerSet) BeginTwoFactorSetup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	payload, err := h.twoFactor.BeginSetup(c.Request.Context(), user.ID, user.Email)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"secret":     payload.Secret,
		"otpauthUrl": payload.URL,
	})
}

type confirmSetupRequest struct {
	Secret string `json:"secret" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

func (h HandlerSet) ConfirmTwoFactorSetup(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req confirmSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "secret and code required"})
		return
	}

	backupCodes, err := h.twoFactor.ConfirmSetup(c.Request.Context(), user.ID, req.Secret, req.Code, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		fail(c, err)
		return
	}

	// The plaintext backup codes appear in this response and nowhere
	// else, ever again.
	c.JSON(http.StatusOK, gin.H{
		"enabled":     true,
		"backupCodes": backupCodes,
	})
}

type verifyRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h HandlerSet) VerifyTwoFactor(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code required"})
		return
	}

	if err := h.twoFactor.Verify(c.Request.Context(), user.ID, req.Code, c.ClientIP(), c.GetHeader("User-Agent")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"verified": true})
}
