package dto

import (
	"time"

	"github.com/goccy/go-json"
)

// VisitorMessageReq 匿名访客发送消息请求体
type VisitorMessageReq struct {
	VisitorID string `json:"visitorId" binding:"required"`
	Content   string `json:"content" binding:"required,min=1,max=1000"`
}

// UserMessageReq 已登录用户/管理员发送消息请求体。
// userId 与 isFromAdmin 一律由服务端会话推断，客户端提交的同名字段被忽略。
type UserMessageReq struct {
	VisitorID string `json:"visitorId" binding:"required"`
	Content   string `json:"content" binding:"required,min=1,max=1000"`
}

// MessageDTO 消息明细响应
type MessageDTO struct {
	ID          string    `json:"id"`
	VisitorID   string    `json:"visitorId"`
	UserID      uint64    `json:"userId,omitempty"`
	Content     string    `json:"content"`
	IsFromAdmin bool      `json:"isFromAdmin"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserSummaryDTO 会话关联用户摘要
type UserSummaryDTO struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ConversationDTO 会话列表项：每个 visitorId 恰好一条
type ConversationDTO struct {
	VisitorID   string          `json:"visitorId"`
	LastMessage *MessageDTO     `json:"lastMessage"`
	UnreadCount int64           `json:"unreadCount"`
	User        *UserSummaryDTO `json:"user,omitempty"`
}

// Envelope WebSocket 事件信封。
// Origin 仅在需要排除发送端的广播（typing:admin）中携带。
type Envelope struct {
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
	Origin string          `json:"origin,omitempty"`
}

// JoinVisitorReq join:visitor 负载
type JoinVisitorReq struct {
	VisitorID string `json:"visitorId"`
}

// WsMessageReq message:send / message:admin 负载
type WsMessageReq struct {
	VisitorID string `json:"visitorId"`
	Content   string `json:"content"`
}

// TypingReq typing:start / typing:stop 负载
type TypingReq struct {
	VisitorID string `json:"visitorId"`
}

// TypingAdminReq typing:admin 负载
type TypingAdminReq struct {
	VisitorID string `json:"visitorId"`
	IsTyping  bool   `json:"isTyping"`
}

// ReadReq messages:read 负载
type ReadReq struct {
	VisitorID string `json:"visitorId"`
}

// TypingUpdateDTO typing:update 推送
type TypingUpdateDTO struct {
	VisitorID string `json:"visitorId"`
	IsTyping  bool   `json:"isTyping"`
	IsAdmin   bool   `json:"isAdmin"`
}

// ConversationUpdateDTO conversation:update 推送，提示管理端刷新会话列表
type ConversationUpdateDTO struct {
	VisitorID string `json:"visitorId"`
}

// MessageErrorDTO message:error 推送
type MessageErrorDTO struct {
	Error string `json:"error"`
}
