package consts

const (
	// ChatContentMaxLen 消息内容最大长度
	ChatContentMaxLen = 1000
	// ChatRateLimitPerMinute 每个访客每分钟最多发送的消息数
	ChatRateLimitPerMinute = 10
)

// 房间频道：访客私有频道前缀 与 管理员共享频道
const (
	ChatVisitorChannel = "chat:visitor:"
	ChatAdminChannel   = "chat:admin"
)

// WebSocket 事件名 (客户端 -> 服务端)
const (
	EventJoinVisitor  = "join:visitor"
	EventJoinAdmin    = "join:admin"
	EventMessageSend  = "message:send"
	EventMessageAdmin = "message:admin"
	EventTypingStart  = "typing:start"
	EventTypingStop   = "typing:stop"
	EventTypingAdmin  = "typing:admin"
	EventMessagesRead = "messages:read"
)

// WebSocket 事件名 (服务端 -> 客户端)
const (
	EventMessageNew         = "message:new"
	EventMessageError       = "message:error"
	EventConversationUpdate = "conversation:update"
	EventTypingUpdate       = "typing:update"
)
