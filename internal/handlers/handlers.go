package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/middleware"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/service"
)

type HandlerSet struct {
	log           zerolog.Logger
	cfg           *config.AppConfig
	users         repository.UserRepository
	authService   *service.AuthService
	sessions      *service.SessionService
	events        *service.EventService
	twoFactor     *service.TwoFactorService
	audit         *service.AuditService
	score         *service.ScoreService
	notifications *service.NotificationService
}

func NewHandlerSet(
	log zerolog.Logger,
	cfg *config.AppConfig,
	users repository.UserRepository,
	authService *service.AuthService,
	sessions *service.SessionService,
	events *service.EventService,
	twoFactor *service.TwoFactorService,
	audit *service.AuditService,
	score *service.ScoreService,
	notifications *service.NotificationService,
) HandlerSet {
	return HandlerSet{
		log:           log,
		cfg:           cfg,
		users:         users,
		authService:   authService,
		sessions:      sessions,
		events:        events,
		twoFactor:     twoFactor,
		audit:         audit,
		score:         score,
		notifications: notifications,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/login", h.Login)

	authed := v1.Group("")
	authed.Use(middleware.Auth(h.cfg, h.users, h.sessions))
	{
		authed.POST("/auth/logout", h.Logout)
		authed.GET("/auth/sessions", h.ListOwnSessions)
		authed.DELETE("/auth/sessions/:id", h.RevokeOwnSession)

		authed.POST("/auth/2fa/setup", h.BeginTwoFactorSetup)
		authed.POST("/auth/2fa/confirm", h.ConfirmTwoFactorSetup)
		authed.POST("/auth/2fa/verify", h.VerifyTwoFactor)

		authed.GET("/notifications", h.ListNotifications)
		authed.GET("/notifications/unread-count", h.UnreadCount)
		authed.POST("/notifications/:id/read", h.MarkNotificationRead)
		authed.POST("/notifications/read-all", h.MarkAllNotificationsRead)
		authed.DELETE("/notifications/:id", h.DeleteNotification)
	}

	admin := v1.Group("/admin")
	admin.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.RequireRoles(authz.RoleAdmin, authz.RoleSuperAdmin),
	)
	{
		admin.GET("/sessions", h.AdminListSessions)
		admin.DELETE("/sessions/:id", h.AdminRevokeSession)
		admin.DELETE("/subjects/:subjectId/sessions", h.AdminRevokeSubjectSessions)

		admin.GET("/events", h.AdminListEvents)
		admin.POST("/events/:id/resolve", h.AdminResolveEvent)

		admin.GET("/score", h.AdminSecurityScore)
	}

	// Audit reads are gated on the capability, not a literal role list.
	audit := v1.Group("/admin/audit")
	audit.Use(
		middleware.Auth(h.cfg, h.users, h.sessions),
		middleware.RequireCapability(authz.CanViewAudit),
	)
	{
		audit.GET("", h.AdminListAuditLog)
		audit.GET("/export", h.AdminExportAuditLog)
	}
}
