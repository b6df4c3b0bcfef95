package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/redis"
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/pkg/security"
	"Bigwise/internal/service"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WsHandler struct {
	chatSvc service.ChatService
}

func NewWsHandler(chatSvc service.ChatService) *WsHandler {
	return &WsHandler{chatSvc: chatSvc}
}

// wsClient 单条 WebSocket 连接的运行态
type wsClient struct {
	id       string
	sess     security.SessionContext
	conn     *websocket.Conn
	pubsub   *goredis.PubSub
	outbound chan []byte
	stop     chan struct{}
}

// Connect 建立实时通道。
// Token 经 ?token= 携带且可选：缺失按匿名访客处理，无效则拒绝握手。
func (s *WsHandler) Connect(c *gin.Context) {
	var sess security.SessionContext
	if token := c.Query("token"); token != "" {
		var err error
		sess, err = middleware.ResolveSession(c.Request.Context(), token)
		if err != nil {
			log.Warn("WS 鉴权失败", "err", err)
			response.Error(c, service.UnauthenticatedError)
			return
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WS 协议升级失败", "err", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	ctx := context.Background()

	client := &wsClient{
		id:       uuid.New().String(),
		sess:     sess,
		conn:     conn,
		pubsub:   redis.Subscribe(ctx),
		outbound: make(chan []byte, 16),
		stop:     make(chan struct{}),
	}
	defer func() {
		_ = client.pubsub.Close()
	}()

	log.Info("WS 连接已建立", "connID", client.id, "userID", sess.UserID, "isAdmin", sess.IsAdmin)

	// 读循环：分发客户端事件，连接断开时收尾
	go s.readLoop(ctx, client)

	s.writeLoop(client, client.pubsub.Channel())
	log.Info("WS 连接已断开", "connID", client.id, "userID", sess.UserID)
}

func (s *WsHandler) readLoop(ctx context.Context, client *wsClient) {
	defer close(client.stop)

	for {
		_, raw, err := client.conn.ReadMessage()
		if err != nil {
			return
		}

		var envelope dto.Envelope
		if err = json.Unmarshal(raw, &envelope); err != nil {
			s.sendError(client, service.ErrParamInvalid)
			continue
		}

		s.dispatch(ctx, client, &envelope)
	}
}

// dispatch 客户端事件分发。鉴权失败与业务错误一律回 message:error，连接保持。
func (s *WsHandler) dispatch(ctx context.Context, client *wsClient, envelope *dto.Envelope) {
	switch envelope.Event {
	case consts.EventJoinVisitor:
		var req dto.JoinVisitorReq
		if err := json.Unmarshal(envelope.Data, &req); err != nil || req.VisitorID == "" {
			s.sendError(client, service.ErrVisitorIDRequired)
			return
		}
		if client.sess.Authenticated() && !client.sess.IsAdmin {
			if err := s.chatSvc.AuthorizeVisitor(ctx, client.sess.UserID, req.VisitorID, true); err != nil {
				s.sendError(client, err)
				return
			}
		}
		if err := client.pubsub.Subscribe(ctx, consts.ChatVisitorChannel+req.VisitorID); err != nil {
			log.Error("WS 订阅访客频道失败", "connID", client.id, "visitorID", req.VisitorID, "err", err)
			s.sendError(client, service.UnExpectedError)
		}

	case consts.EventJoinAdmin:
		if !client.sess.IsAdmin {
			s.sendError(client, service.UnauthorizedError)
			return
		}
		if err := client.pubsub.Subscribe(ctx, consts.ChatAdminChannel); err != nil {
			log.Error("WS 订阅管理频道失败", "connID", client.id, "err", err)
			s.sendError(client, service.UnExpectedError)
		}

	case consts.EventMessageSend:
		var req dto.WsMessageReq
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			s.sendError(client, service.ErrParamInvalid)
			return
		}
		if client.sess.Authenticated() && !client.sess.IsAdmin {
			if err := s.chatSvc.AuthorizeVisitor(ctx, client.sess.UserID, req.VisitorID, true); err != nil {
				s.sendError(client, err)
				return
			}
		}
		if _, err := s.chatSvc.SubmitMessage(ctx, service.SubmitMessageInput{
			VisitorID: req.VisitorID,
			Content:   req.Content,
			UserID:    client.sess.UserID,
		}); err != nil {
			s.sendError(client, err)
		}

	case consts.EventMessageAdmin:
		if !client.sess.IsAdmin {
			s.sendError(client, service.UnauthorizedError)
			return
		}
		var req dto.WsMessageReq
		if err := json.Unmarshal(envelope.Data, &req); err != nil {
			s.sendError(client, service.ErrParamInvalid)
			return
		}
		if _, err := s.chatSvc.SubmitMessage(ctx, service.SubmitMessageInput{
			VisitorID:   req.VisitorID,
			Content:     req.Content,
			UserID:      client.sess.UserID,
			IsFromAdmin: true,
		}); err != nil {
			s.sendError(client, err)
		}

	case consts.EventTypingStart, consts.EventTypingStop:
		var req dto.TypingReq
		if err := json.Unmarshal(envelope.Data, &req); err != nil || req.VisitorID == "" {
			s.sendError(client, service.ErrVisitorIDRequired)
			return
		}
		s.chatSvc.BroadcastTyping(ctx, dto.TypingUpdateDTO{
			VisitorID: req.VisitorID,
			IsTyping:  envelope.Event == consts.EventTypingStart,
		}, "")

	case consts.EventTypingAdmin:
		if !client.sess.IsAdmin {
			s.sendError(client, service.UnauthorizedError)
			return
		}
		var req dto.TypingAdminReq
		if err := json.Unmarshal(envelope.Data, &req); err != nil || req.VisitorID == "" {
			s.sendError(client, service.ErrVisitorIDRequired)
			return
		}
		s.chatSvc.BroadcastTyping(ctx, dto.TypingUpdateDTO{
			VisitorID: req.VisitorID,
			IsTyping:  req.IsTyping,
			IsAdmin:   true,
		}, client.id)

	case consts.EventMessagesRead:
		if !client.sess.IsAdmin {
			s.sendError(client, service.UnauthorizedError)
			return
		}
		var req dto.ReadReq
		if err := json.Unmarshal(envelope.Data, &req); err != nil || req.VisitorID == "" {
			s.sendError(client, service.ErrVisitorIDRequired)
			return
		}
		if err := s.chatSvc.MarkMessagesAsRead(ctx, req.VisitorID); err != nil {
			s.sendError(client, err)
		}

	default:
		log.Debug("WS 未知事件", "connID", client.id, "event", envelope.Event)
	}
}

// writeLoop 统一出口：Redis 总线推送与本连接直达回包
func (s *WsHandler) writeLoop(client *wsClient, redisCh <-chan *goredis.Message) {
	for {
		select {
		case msg, ok := <-redisCh:
			if !ok {
				return
			}
			// typing:admin 带 origin，发送端自身跳过
			var envelope dto.Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err == nil &&
				envelope.Origin != "" && envelope.Origin == client.id {
				continue
			}
			if !s.write(client, []byte(msg.Payload)) {
				return
			}
		case payload := <-client.outbound:
			if !s.write(client, payload) {
				return
			}
		case <-client.stop:
			return
		}
	}
}

func (s *WsHandler) write(client *wsClient, payload []byte) bool {
	_ = client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		log.Error("WS 推送失败", "connID", client.id, "err", err)
		return false
	}
	return true
}

func (s *WsHandler) sendError(client *wsClient, err error) {
	data, _ := json.Marshal(dto.MessageErrorDTO{Error: err.Error()})
	payload, _ := json.Marshal(dto.Envelope{
		Event: consts.EventMessageError,
		Data:  data,
	})

	select {
	case client.outbound <- payload:
	default:
		log.Warn("WS 回包队列已满，丢弃", "connID", client.id)
	}
}
