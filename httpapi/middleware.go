package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightflow/auth"
)

// TokenVerifier abstracts the auth service for the middleware.
type TokenVerifier interface {
	VerifyToken(token string) (string, auth.Role, error)
}

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller identity on the gin context.
func RequireAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			respondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing bearer token"))
			c.Abort()
			return
		}

		userID, role, err := verifier.VerifyToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", err)
			c.Abort()
			return
		}

		c.Set(ctxUserID, userID)
		c.Set(ctxRole, role)
		c.Next()
	}
}

// RequestLogger emits one structured line per request.
func RequestLogger(log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Infow("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
