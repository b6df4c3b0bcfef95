package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/pkg/response"
	"Bigwise/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatSvc service.ChatService
}

func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// GetVisitorMessages 匿名访客拉取历史，visitorId 即凭证
func (s *ChatHandler) GetVisitorMessages(c *gin.Context) {
	messages, err := s.chatSvc.GetMessages(c.Request.Context(), c.Param("visitorId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}

// PostVisitorMessage 匿名访客发消息。
// 携带有效 Token 时顺带记下 userId 以便账号关联。
func (s *ChatHandler) PostVisitorMessage(c *gin.Context) {
	var req dto.VisitorMessageReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	sess := middleware.GetSession(c)

	msg, err := s.chatSvc.SubmitMessage(c.Request.Context(), service.SubmitMessageInput{
		VisitorID: req.VisitorID,
		Content:   req.Content,
		UserID:    sess.UserID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

// GetMessages 登录态拉取历史，非管理员校验账号关联
func (s *ChatHandler) GetMessages(c *gin.Context) {
	visitorID := c.Param("visitorId")
	sess := middleware.GetSession(c)

	if !sess.IsAdmin {
		if err := s.chatSvc.AuthorizeVisitor(c.Request.Context(), sess.UserID, visitorID, false); err != nil {
			response.Error(c, err)
			return
		}
	}

	messages, err := s.chatSvc.GetMessages(c.Request.Context(), visitorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, messages)
}

// PostMessage 登录态发消息。
// userId 与 isFromAdmin 一律取自会话，请求体同名字段被忽略。
func (s *ChatHandler) PostMessage(c *gin.Context) {
	var req dto.UserMessageReq
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	sess := middleware.GetSession(c)
	if !sess.IsAdmin {
		if err := s.chatSvc.AuthorizeVisitor(c.Request.Context(), sess.UserID, req.VisitorID, true); err != nil {
			response.Error(c, err)
			return
		}
	}

	msg, err := s.chatSvc.SubmitMessage(c.Request.Context(), service.SubmitMessageInput{
		VisitorID:   req.VisitorID,
		Content:     req.Content,
		UserID:      sess.UserID,
		IsFromAdmin: sess.IsAdmin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, msg)
}

// GetConversations 管理端会话列表
func (s *ChatHandler) GetConversations(c *gin.Context) {
	conversations, err := s.chatSvc.GetAllConversations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, conversations)
}

// MarkRead 管理端批量已读
func (s *ChatHandler) MarkRead(c *gin.Context) {
	if err := s.chatSvc.MarkMessagesAsRead(c.Request.Context(), c.Param("visitorId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// DeleteMessage 管理端删除单条消息
func (s *ChatHandler) DeleteMessage(c *gin.Context) {
	if err := s.chatSvc.DeleteMessage(c.Request.Context(), c.Param("messageId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
