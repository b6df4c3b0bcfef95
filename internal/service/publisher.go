package service

import (
	"Bigwise/internal/pkg/redis"
	"context"
)

// ChatPublisher 房间广播抽象：频道即房间，跨实例经由 Redis 总线分发
type ChatPublisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

type redisChatPublisher struct{}

func NewRedisChatPublisher() ChatPublisher {
	return &redisChatPublisher{}
}

func (s *redisChatPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	return redis.Publish(ctx, channel, payload)
}
