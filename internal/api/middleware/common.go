package middleware

import (
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/redis"
	"Bigwise/internal/pkg/security"
	"context"
	"errors"

	"github.com/gin-gonic/gin"
)

const sessionKey = "session"

var errTokenRevoked = errors.New("token 已注销")

// ResolveSession 校验 Token（含注销黑名单）并还原会话上下文。
// REST 鉴权中间件与 WebSocket 握手共用同一套校验逻辑。
func ResolveSession(ctx context.Context, tokenString string) (security.SessionContext, error) {
	signature, err := security.ExtractSignature(tokenString)
	if err != nil {
		return security.SessionContext{}, err
	}

	value, err := redis.GetValue(ctx, consts.TokenRevokedKey+signature)
	if err != nil {
		return security.SessionContext{}, err
	}
	if value != "" {
		return security.SessionContext{}, errTokenRevoked
	}

	claims, err := security.ValidateToken(tokenString)
	if err != nil {
		return security.SessionContext{}, err
	}
	return claims.Session(), nil
}

// GetSession 读取中间件注入的会话上下文，缺失时返回匿名会话
func GetSession(c *gin.Context) security.SessionContext {
	if v, ok := c.Get(sessionKey); ok {
		if sess, ok := v.(security.SessionContext); ok {
			return sess
		}
	}
	return security.SessionContext{}
}

func setSession(c *gin.Context, sess security.SessionContext) {
	c.Set(sessionKey, sess)
	c.Set("user_id", sess.UserID)
}
