package mongo

import (
	"time"
)

// Message 消息明细模型。
// 同一 visitor_id 下的全部消息构成一次访客会话。
type Message struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	VisitorID   string    `bson:"visitor_id" json:"visitorId"`
	UserID      uint64    `bson:"user_id,omitempty" json:"userId,omitempty"` // 0 - 匿名访客
	Content     string    `bson:"content" json:"content"`
	IsFromAdmin bool      `bson:"is_from_admin" json:"isFromAdmin"`
	Read        bool      `bson:"read" json:"read"` // 仅对访客方向的消息置位
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}
