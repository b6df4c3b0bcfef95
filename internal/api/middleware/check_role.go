package middleware

import (
	"Bigwise/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// CheckAdmin 管理员闸门，置于 AuthMiddleware 之后
func CheckAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetSession(c).IsAdmin {
			response.Fail(c, response.Forbidden, "权限不足：无权访问该资源")
			c.Abort()
			return
		}

		c.Next()
	}
}
