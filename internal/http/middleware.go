package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vidtube/internal/domain"
	"vidtube/internal/service"
	"vidtube/internal/token"
)

const userContextKey = "currentUser"

// RequireAuth gates a route behind a valid access token. The token is
// read from the accessToken cookie first, then from the Authorization
// bearer header. On success the resolved public user is attached to the
// request context; on any failure the request is rejected before the
// handler runs.
func RequireAuth(sessions service.SessionService, signer *token.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			respondError(c, fmt.Errorf("unauthorized request: %w", domain.ErrUnauthorized))
			return
		}

		claims, err := signer.VerifyAccess(raw)
		if err != nil {
			respondError(c, fmt.Errorf("invalid access token: %w", domain.ErrUnauthorized))
			return
		}

		user, err := sessions.GetByID(c.Request.Context(), claims.Subject)
		if err != nil {
			// covers accounts deleted after the token was issued
			respondError(c, fmt.Errorf("invalid access token: %w", domain.ErrUnauthorized))
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c *gin.Context) (*domain.PublicUser, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.PublicUser)
	return user, ok
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Disposition")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
