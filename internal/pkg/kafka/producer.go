package kafka

import (
	"Bigwise/internal/api/config"
	"Bigwise/internal/pkg/mongo"
	"context"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// ChatEvent 投递到下游分析/离线通知管道的消息事件
type ChatEvent struct {
	MessageID   string `json:"message_id"`
	VisitorID   string `json:"visitor_id"`
	UserID      uint64 `json:"user_id,omitempty"`
	IsFromAdmin bool   `json:"is_from_admin"`
	CreatedAt   int64  `json:"created_at"`
}

// Producer 聊天事件异步生产者。配置未启用时为 nil，调用方需自行判空。
type Producer struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	if !cfg.Enable {
		return nil, nil
	}

	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForLocal
	saramaCfg.Producer.Return.Successes = false
	saramaCfg.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	p := &Producer{
		producer: producer,
		topic:    cfg.ChatTopic,
	}

	// 投递失败只记录：事件管道是尽力而为的旁路
	go func() {
		for err := range producer.Errors() {
			log.Error("chat event produce failed", "topic", err.Msg.Topic, "err", err.Err)
		}
	}()

	return p, nil
}

// SendChatEvent 非阻塞投递，队列满时直接丢弃
func (p *Producer) SendChatEvent(ctx context.Context, msg *mongo.Message) {
	event := ChatEvent{
		MessageID:   msg.ID,
		VisitorID:   msg.VisitorID,
		UserID:      msg.UserID,
		IsFromAdmin: msg.IsFromAdmin,
		CreatedAt:   msg.CreatedAt.Unix(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.ErrorContext(ctx, "marshal chat event failed", "err", err)
		return
	}

	select {
	case p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.VisitorID),
		Value: sarama.ByteEncoder(payload),
	}:
	default:
		log.WarnContext(ctx, "chat event queue full, dropped", "visitorID", msg.VisitorID)
	}
}

func (p *Producer) Close() {
	if p == nil {
		return
	}
	p.producer.AsyncClose()
}
