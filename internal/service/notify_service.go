package service

import (
	"Bigwise/internal/api/config"
	"context"
	log "log/slog"
	"time"

	"github.com/go-resty/resty/v2"
)

// NotifyService 客服提醒：访客来消息时推送 Webhook，失败只记录不影响主流程
type NotifyService interface {
	NotifyVisitorMessage(ctx context.Context, visitorID, content string)
}

type notifyServiceImpl struct {
	client     *resty.Client
	webhookURL string
}

func NewNotifyService() NotifyService {
	cfg := config.Cfg.Notify

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 3
	}

	client := resty.New().
		SetTimeout(time.Duration(timeout) * time.Second).
		SetRetryCount(1)

	return &notifyServiceImpl{
		client:     client,
		webhookURL: cfg.WebhookURL,
	}
}

func (s *notifyServiceImpl) NotifyVisitorMessage(ctx context.Context, visitorID, content string) {
	if s.webhookURL == "" {
		return
	}

	preview := content
	if len(preview) > 120 {
		preview = preview[:120]
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"visitorId": visitorID,
			"preview":   preview,
		}).
		Post(s.webhookURL)

	if err != nil {
		log.WarnContext(ctx, "notify webhook failed", "visitorID", visitorID, "err", err)
		return
	}
	if resp.IsError() {
		log.WarnContext(ctx, "notify webhook rejected", "visitorID", visitorID, "status", resp.StatusCode())
	}
}
