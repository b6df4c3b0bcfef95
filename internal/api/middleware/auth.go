package middleware

import (
	"Bigwise/internal/pkg/response"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 负责验证 JWT 并将会话上下文注入 Context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			response.Fail(c, response.Unauthorized, "Token 缺失或格式错误")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		sess, err := ResolveSession(c.Request.Context(), tokenString)
		if err != nil {
			response.Fail(c, response.Unauthorized, "Token 无效或已过期")
			c.Abort()
			return
		}

		setSession(c, sess)

		newCtx := context.WithValue(c.Request.Context(), "user_id", sess.UserID)
		c.Request = c.Request.WithContext(newCtx)

		c.Next()
	}
}
