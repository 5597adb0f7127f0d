package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/infra/security"
	"github.com/hectoraparici0/cyberaegis/internal/usecase"
)

const (
	// SessionKey is the context key for the authenticated session.
	SessionKey = "session"
	// SubjectIDKey is the context key for the authenticated subject id.
	SubjectIDKey = "subject_id"
)

type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

func newErrorResponse(c *gin.Context, msg string) errorResponse {
	return errorResponse{Error: msg, RequestID: GetRequestID(c)}
}

// RequireSession validates the bearer token, resolves the live session it
// names, and advances the session's activity timestamp. Expired and revoked
// sessions are rejected even when the token itself is still valid.
func RequireSession(issuer *security.BearerIssuer, access *usecase.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing authorization header"))
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "invalid authorization format: expected 'Bearer <token>'"))
			return
		}

		token := strings.TrimSpace(parts[1])
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "missing bearer token"))
			return
		}

		claims, err := issuer.Parse(token)
		if err != nil {
			switch {
			case errors.Is(err, security.ErrExpiredBearerToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "bearer token expired"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "invalid bearer token"))
			}
			return
		}

		session, err := access.Session(c.Request.Context(), claims.SessionID)
		if err != nil {
			if errors.Is(err, domain.ErrSessionNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "session is no longer live"))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				newErrorResponse(c, "authentication failed"))
			return
		}

		access.TouchSession(c.Request.Context(), session.ID)

		c.Set(SessionKey, session)
		c.Set(SubjectIDKey, session.SubjectID)

		c.Next()
	}
}

// RequireLevel rejects sessions granted below the minimum level. The
// rejection is recorded in the session's activity stream.
func RequireLevel(access *usecase.AccessService, minimum domain.AccessLevel) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || session.Profile == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "authentication required"))
			return
		}

		if !session.Profile.Level.AtLeast(minimum) {
			access.RecordRestrictedAttempt(c.Request.Context(), session.ID,
				"level:"+minimum.String())
			c.AbortWithStatusJSON(http.StatusForbidden,
				newErrorResponse(c, "insufficient access level"))
			return
		}

		c.Next()
	}
}

// GetSession retrieves the authenticated session placed by RequireSession.
func GetSession(c *gin.Context) (*domain.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*domain.Session)
	return session, ok
}
