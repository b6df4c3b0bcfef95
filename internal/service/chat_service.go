package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/kafka"
	"Bigwise/internal/pkg/mongo"
	"Bigwise/internal/repository"
	"context"
	log "log/slog"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/jinzhu/copier"
)

// ChatService 访客客服聊天核心。
// REST 与 WebSocket 两条入口都经由 SubmitMessage 落库后再统一扇出，
// 保证两条路径收敛到同一份存储状态。
type ChatService interface {
	SubmitMessage(ctx context.Context, in SubmitMessageInput) (*dto.MessageDTO, error)
	GetMessages(ctx context.Context, visitorID string) ([]*dto.MessageDTO, error)
	GetAllConversations(ctx context.Context) ([]*dto.ConversationDTO, error)
	MarkMessagesAsRead(ctx context.Context, visitorID string) error
	DeleteMessage(ctx context.Context, id string) error
	AuthorizeVisitor(ctx context.Context, userID uint64, visitorID string, forWrite bool) error
	BroadcastTyping(ctx context.Context, t dto.TypingUpdateDTO, origin string)
}

// SubmitMessageInput UserID 与 IsFromAdmin 由调用方从会话上下文推断，绝不信任客户端
type SubmitMessageInput struct {
	VisitorID   string
	Content     string
	UserID      uint64
	IsFromAdmin bool
}

type chatServiceImpl struct {
	msgRepo   mongo.MessageRepo
	userRepo  repository.UserRepo
	publisher ChatPublisher
	notify    NotifyService
	events    *kafka.Producer
}

func NewChatService(msgRepo mongo.MessageRepo, userRepo repository.UserRepo, publisher ChatPublisher, notify NotifyService, events *kafka.Producer) ChatService {
	return &chatServiceImpl{
		msgRepo:   msgRepo,
		userRepo:  userRepo,
		publisher: publisher,
		notify:    notify,
		events:    events,
	}
}

// SubmitMessage 写入消息并向访客房间与管理员房间扇出
func (s *chatServiceImpl) SubmitMessage(ctx context.Context, in SubmitMessageInput) (*dto.MessageDTO, error) {
	if in.VisitorID == "" {
		return nil, ErrVisitorIDRequired
	}
	if l := utf8.RuneCountInString(in.Content); l < 1 || l > consts.ChatContentMaxLen {
		return nil, ErrContentLength
	}

	msg := &mongo.Message{
		VisitorID:   in.VisitorID,
		UserID:      in.UserID,
		Content:     in.Content,
		IsFromAdmin: in.IsFromAdmin,
		Read:        false,
		CreatedAt:   time.Now(),
	}

	if err := s.msgRepo.SaveMessage(ctx, msg); err != nil {
		log.ErrorContext(ctx, "save message failed", "visitorID", in.VisitorID, "err", err)
		return nil, UnExpectedError
	}

	// auto-link：登录用户首次以某访客身份发言时建立账号关联。
	// 后置副作用，失败只记录，绝不影响已落库的消息。
	if msg.UserID != 0 && !msg.IsFromAdmin {
		if err := s.userRepo.LinkVisitor(ctx, msg.UserID, msg.VisitorID); err != nil {
			log.WarnContext(ctx, "visitor auto-link failed", "userID", msg.UserID, "visitorID", msg.VisitorID, "err", err)
		}
	}

	d := toMessageDTO(msg)

	s.fanOutNewMessage(ctx, d)

	if s.events != nil {
		s.events.SendChatEvent(ctx, msg)
	}
	if s.notify != nil && !msg.IsFromAdmin {
		s.notify.NotifyVisitorMessage(ctx, msg.VisitorID, msg.Content)
	}

	return d, nil
}

// GetMessages 按时间升序返回某访客的全部消息
func (s *chatServiceImpl) GetMessages(ctx context.Context, visitorID string) ([]*dto.MessageDTO, error) {
	if visitorID == "" {
		return nil, ErrVisitorIDRequired
	}

	models, err := s.msgRepo.GetMessages(ctx, visitorID)
	if err != nil {
		log.ErrorContext(ctx, "get messages failed", "visitorID", visitorID, "err", err)
		return nil, UnExpectedError
	}

	res := make([]*dto.MessageDTO, 0, len(models))
	for _, m := range models {
		res = append(res, toMessageDTO(m))
	}
	return res, nil
}

// convAccum 单个访客会话的聚合中间态
type convAccum struct {
	last       *mongo.Message
	unread     int64
	lastUserID uint64 // 最近一条访客方向消息携带的账号 ID
}

// GetAllConversations 从消息全量扫描现算会话列表。
// 每个 visitorId 恰好产出一条；按最后一条消息时间倒序。
func (s *chatServiceImpl) GetAllConversations(ctx context.Context) ([]*dto.ConversationDTO, error) {
	messages, err := s.msgRepo.GetAllMessages(ctx)
	if err != nil {
		log.ErrorContext(ctx, "scan messages failed", "err", err)
		return nil, UnExpectedError
	}

	groups := make(map[string]*convAccum)
	order := make([]string, 0)

	// 扫描已按 (created_at, _id) 升序，末次赋值即该会话的最后一条
	for _, m := range messages {
		acc, ok := groups[m.VisitorID]
		if !ok {
			acc = &convAccum{}
			groups[m.VisitorID] = acc
			order = append(order, m.VisitorID)
		}
		acc.last = m
		if !m.IsFromAdmin {
			if !m.Read {
				acc.unread++
			}
			if m.UserID != 0 {
				acc.lastUserID = m.UserID
			}
		}
	}

	res := make([]*dto.ConversationDTO, 0, len(groups))
	for _, visitorID := range order {
		acc := groups[visitorID]
		res = append(res, &dto.ConversationDTO{
			VisitorID:   visitorID,
			LastMessage: toMessageDTO(acc.last),
			UnreadCount: acc.unread,
			User:        s.resolveUser(ctx, visitorID, acc.lastUserID),
		})
	}

	sort.SliceStable(res, func(i, j int) bool {
		return res[i].LastMessage.CreatedAt.After(res[j].LastMessage.CreatedAt)
	})

	return res, nil
}

// resolveUser 两步解析会话归属账号：
// 1. 账号自身的 visitor_id 关联命中；
// 2. 否则回退到最近一条访客方向消息携带的 userId。
// 解析失败不阻断会话列表，仅缺省 user 字段。
func (s *chatServiceImpl) resolveUser(ctx context.Context, visitorID string, lastUserID uint64) *dto.UserSummaryDTO {
	u, err := s.userRepo.GetUserByVisitorID(ctx, visitorID)
	if err != nil {
		if !repository.IsNotFound(err) {
			log.WarnContext(ctx, "resolve user by visitor failed", "visitorID", visitorID, "err", err)
			return nil
		}
		if lastUserID == 0 {
			return nil
		}
		u, err = s.userRepo.GetUser(ctx, lastUserID)
		if err != nil {
			if !repository.IsNotFound(err) {
				log.WarnContext(ctx, "resolve user failed", "userID", lastUserID, "err", err)
			}
			return nil
		}
	}

	summary := &dto.UserSummaryDTO{FullName: u.FullName}
	if u.Username != nil {
		summary.Username = *u.Username
	}
	if u.Email != nil {
		summary.Email = *u.Email
	}
	return summary
}

// MarkMessagesAsRead 批量已读并通知管理端，幂等
func (s *chatServiceImpl) MarkMessagesAsRead(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return ErrVisitorIDRequired
	}

	if err := s.msgRepo.MarkMessagesAsRead(ctx, visitorID); err != nil {
		log.ErrorContext(ctx, "mark messages as read failed", "visitorID", visitorID, "err", err)
		return UnExpectedError
	}

	s.publish(ctx, consts.ChatAdminChannel, dto.Envelope{
		Event: consts.EventMessagesRead,
		Data:  marshal(dto.ReadReq{VisitorID: visitorID}),
	})
	return nil
}

// DeleteMessage 管理员删除单条消息
func (s *chatServiceImpl) DeleteMessage(ctx context.Context, id string) error {
	ok, err := s.msgRepo.DeleteMessage(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "delete message failed", "id", id, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrMessageNotFound
	}
	return nil
}

// AuthorizeVisitor 校验登录的非管理员用户对某访客会话的访问权。
// 读取要求账号已关联且一致；写入允许尚无关联的账号（auto-link 随后建立）。
func (s *chatServiceImpl) AuthorizeVisitor(ctx context.Context, userID uint64, visitorID string, forWrite bool) error {
	u, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return ErrVisitorMismatch
		}
		log.ErrorContext(ctx, "load user failed", "userID", userID, "err", err)
		return UnExpectedError
	}

	if u.VisitorID == nil {
		if forWrite {
			return nil
		}
		return ErrVisitorMismatch
	}
	if *u.VisitorID != visitorID {
		return ErrVisitorMismatch
	}
	return nil
}

// BroadcastTyping 输入状态扇出。
// 访客输入推给访客房间与管理员房间；管理员输入推给访客房间，
// 同时带 origin 推给其他管理员连接（发送端自身过滤）。
func (s *chatServiceImpl) BroadcastTyping(ctx context.Context, t dto.TypingUpdateDTO, origin string) {
	data := marshal(t)

	s.publish(ctx, consts.ChatVisitorChannel+t.VisitorID, dto.Envelope{
		Event: consts.EventTypingUpdate,
		Data:  data,
	})

	adminEnvelope := dto.Envelope{
		Event: consts.EventTypingUpdate,
		Data:  data,
	}
	if t.IsAdmin {
		adminEnvelope.Origin = origin
	}
	s.publish(ctx, consts.ChatAdminChannel, adminEnvelope)
}

// fanOutNewMessage 新消息推送：访客房间与管理员房间各一份 message:new，
// 另发 conversation:update 提示管理端刷新会话列表
func (s *chatServiceImpl) fanOutNewMessage(ctx context.Context, msg *dto.MessageDTO) {
	data := marshal(msg)

	s.publish(ctx, consts.ChatVisitorChannel+msg.VisitorID, dto.Envelope{
		Event: consts.EventMessageNew,
		Data:  data,
	})
	s.publish(ctx, consts.ChatAdminChannel, dto.Envelope{
		Event: consts.EventMessageNew,
		Data:  data,
	})
	s.publish(ctx, consts.ChatAdminChannel, dto.Envelope{
		Event: consts.EventConversationUpdate,
		Data:  marshal(dto.ConversationUpdateDTO{VisitorID: msg.VisitorID}),
	})
}

func (s *chatServiceImpl) publish(ctx context.Context, channel string, envelope dto.Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		log.ErrorContext(ctx, "marshal envelope failed", "event", envelope.Event, "err", err)
		return
	}
	if err := s.publisher.Publish(ctx, channel, payload); err != nil {
		log.WarnContext(ctx, "publish event failed", "channel", channel, "event", envelope.Event, "err", err)
	}
}

func marshal(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func toMessageDTO(m *mongo.Message) *dto.MessageDTO {
	var d dto.MessageDTO
	_ = copier.Copy(&d, m)
	return &d
}
