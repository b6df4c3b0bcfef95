package middleware

import (
	"Bigwise/internal/api/config"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/redis"
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/service"
	"bytes"
	"context"
	"io"
	log "log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
)

// RateLimiter 按访客标识的发送频率闸门
type RateLimiter interface {
	Allow(ctx context.Context, visitorID string) (bool, error)
}

type redisRateLimiter struct {
	limit int64
}

func NewRedisRateLimiter() RateLimiter {
	limit := int64(config.Cfg.Chat.RateLimitPerMinute)
	if limit <= 0 {
		limit = consts.ChatRateLimitPerMinute
	}
	return &redisRateLimiter{limit: limit}
}

// Allow 固定窗口计数，窗口一分钟
func (s *redisRateLimiter) Allow(ctx context.Context, visitorID string) (bool, error) {
	count, err := redis.IncrWithWindow(ctx, consts.ChatRateKey+visitorID, time.Minute)
	if err != nil {
		return false, err
	}
	return count <= s.limit, nil
}

// ChatRateLimitMiddleware 匿名发消息接口的限流。
// 从请求体窥取 visitorId 后原样还原 Body 供后续绑定。
// Redis 故障时放行，限流是保护性旁路不构成单点。
func ChatRateLimitMiddleware(limiter RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reqBody []byte
		if c.Request.Body != nil {
			reqBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(reqBody))
		}

		var peek struct {
			VisitorID string `json:"visitorId"`
		}
		_ = json.Unmarshal(reqBody, &peek)
		if peek.VisitorID == "" {
			c.Next()
			return
		}

		allowed, err := limiter.Allow(c.Request.Context(), peek.VisitorID)
		if err != nil {
			log.WarnContext(c.Request.Context(), "rate limit check failed", "visitorID", peek.VisitorID, "err", err)
			c.Next()
			return
		}
		if !allowed {
			response.Error(c, service.ErrRateLimited)
			c.Abort()
			return
		}

		c.Next()
	}
}
