package middleware

import (
	"Bigwise/internal/pkg/security"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthOptionalMiddleware 可选鉴权：解析成功注入会话，失败或缺失则按匿名访客处理
func AuthOptionalMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			setSession(c, security.SessionContext{})
			c.Next()
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		sess, err := ResolveSession(c.Request.Context(), token)
		if err != nil {
			setSession(c, security.SessionContext{})
		} else {
			setSession(c, sess)
			newCtx := context.WithValue(c.Request.Context(), "user_id", sess.UserID)
			c.Request = c.Request.WithContext(newCtx)
		}

		c.Next()
	}
}
