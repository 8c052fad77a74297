package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/authz"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/config"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/models"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/policy"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/repository"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/security"
	"github.com/BeamX-Solutions/paid-marketing-plan-sub000/internal/service"
)

const (
	sessionTokenHeader = "X-Session-Token"

	ctxClaims  = "session_claims"
	ctxSession = "current_session"
	ctxUser    = "current_user"
)

// now is a hook for tests that need a fixed clock.
var now = time.Now

// Auth authenticates a request from the Bearer claims plus the opaque
// session token. The claim's expiry is checked by policy before the
// store is consulted, so a stale store row can never extend a session,
// and an expired claim always surfaces as Unauthorized rather than
// being silently renewed.
func Auth(cfg *config.AppConfig, users repository.UserRepository, sessions *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := security.ParseSessionClaims(strings.TrimPrefix(authHeader, "Bearer "), cfg.Security.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		if claims.ExpiresAt == nil || policy.IsExpired(claims.ExpiresAt.Time, now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_expired"})
			return
		}

		token := c.GetHeader(sessionTokenHeader)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_session_token"})
			return
		}

		session, err := sessions.GetByToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_not_found"})
			return
		}

		if !session.IsActive || session.ID != claims.SessionID || session.SubjectID != claims.SubjectID {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_mismatch"})
			return
		}

		user, err := users.GetByID(c.Request.Context(), claims.SubjectID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			return
		}
		if user.Status != models.UserStatusActive {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user_inactive"})
			return
		}

		sessions.Touch(c.Request.Context(), session.ID)

		c.Set(ctxClaims, *claims)
		c.Set(ctxSession, session)
		c.Set(ctxUser, user)

		c.Next()
	}
}

// CurrentUser returns the authenticated user placed by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	val, exists := c.Get(ctxUser)
	if !exists {
		return models.User{}, false
	}
	user, ok := val.(models.User)
	return user, ok
}

func CurrentSession(c *gin.Context) (models.Session, bool) {
	val, exists := c.Get(ctxSession)
	if !exists {
		return models.Session{}, false
	}
	session, ok := val.(models.Session)
	return session, ok
}

// RequireRoles gates a route group to the given roles.
func RequireRoles(roles ...authz.Role) gin.HandlerFunc {
	roleSet := make(map[authz.Role]struct{}, len(roles))
	for _, role := range roles {
		roleSet[role] = struct{}{}
	}

	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if _, ok := roleSet[user.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireCapability gates a route on an authz predicate rather than a
// role list, keeping role knowledge in one place.
func RequireCapability(allowed func(authz.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !allowed(user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
