package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-account-backend/internal/core/auth"
	resp "go-account-backend/internal/transport/http/response"
)

// AuthJWT requireRole 非空时要求令牌角色集包含该角色
func AuthJWT(j *auth.JWTer, requireRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && !claims.HasRole(requireRole) {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set("claims", claims)
		c.Set("username", claims.Username)
		if uid, err := claims.UserID(); err == nil {
			c.Set("userId", uid)
		}
		c.Next()
	}
}
