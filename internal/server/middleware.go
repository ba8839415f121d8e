package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agencyos/agencyos/internal/apperr"
	"github.com/agencyos/agencyos/internal/domain"
	"github.com/agencyos/agencyos/internal/rbac"
	"github.com/agencyos/agencyos/pkg/auth"
)

const authContextKey = "authContext"

// requireAuth validates the bearer token and stashes the caller's
// identity for handlers.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			s.abortUnauthorized(c, "missing bearer token")
			return
		}
		claims, err := s.tokens.ValidateAccessToken(token)
		if err != nil {
			s.abortUnauthorized(c, "invalid or expired token")
			return
		}
		role, err := domain.ParseRole(claims.Role)
		if err != nil {
			s.abortUnauthorized(c, "unknown role in token")
			return
		}
		c.Set(authContextKey, rbac.AuthContext{UserID: claims.UserID, Role: role})
		c.Next()
	}
}

func (s *Server) abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": message,
		"kind":  apperr.KindAuthentication,
	})
}

// authContext returns the identity set by requireAuth.
func authContext(c *gin.Context) rbac.AuthContext {
	value, _ := c.Get(authContextKey)
	ctx, _ := value.(rbac.AuthContext)
	return ctx
}
