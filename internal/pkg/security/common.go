package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	JWTSecret         string = "Bigwise"
	JWTExpirationTime        = time.Hour * 24 * 7
)

// UserClaims 定义了 Token 中需要包含的业务信息
type UserClaims struct {
	UserID   uint64 `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// SessionContext 每个请求/连接构造一次的会话上下文。
// UserID 为 0 表示匿名访客。
type SessionContext struct {
	UserID   uint64
	Username string
	IsAdmin  bool
}

// Authenticated 是否为已登录会话
func (s SessionContext) Authenticated() bool {
	return s.UserID != 0
}

func (c *UserClaims) Session() SessionContext {
	return SessionContext{
		UserID:   c.UserID,
		Username: c.Username,
		IsAdmin:  c.IsAdmin,
	}
}
