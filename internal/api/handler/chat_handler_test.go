package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/pkg/security"
	"Bigwise/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type typingCall struct {
	update dto.TypingUpdateDTO
	origin string
}

// fakeChatService 记录调用入参，按预置错误应答
type fakeChatService struct {
	submitted    []service.SubmitMessageInput
	marked       []string
	typing       []typingCall
	authorizeErr error
	submitErr    error
}

func (s *fakeChatService) SubmitMessage(_ context.Context, in service.SubmitMessageInput) (*dto.MessageDTO, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	s.submitted = append(s.submitted, in)
	return &dto.MessageDTO{
		ID:          "000000000000000000000001",
		VisitorID:   in.VisitorID,
		UserID:      in.UserID,
		Content:     in.Content,
		IsFromAdmin: in.IsFromAdmin,
	}, nil
}

func (s *fakeChatService) GetMessages(_ context.Context, visitorID string) ([]*dto.MessageDTO, error) {
	return []*dto.MessageDTO{{VisitorID: visitorID, Content: "hi"}}, nil
}

func (s *fakeChatService) GetAllConversations(_ context.Context) ([]*dto.ConversationDTO, error) {
	return []*dto.ConversationDTO{}, nil
}

func (s *fakeChatService) MarkMessagesAsRead(_ context.Context, visitorID string) error {
	s.marked = append(s.marked, visitorID)
	return nil
}

func (s *fakeChatService) DeleteMessage(_ context.Context, _ string) error { return nil }

func (s *fakeChatService) AuthorizeVisitor(_ context.Context, _ uint64, _ string, _ bool) error {
	return s.authorizeErr
}

func (s *fakeChatService) BroadcastTyping(_ context.Context, t dto.TypingUpdateDTO, origin string) {
	s.typing = append(s.typing, typingCall{update: t, origin: origin})
}

func sessionInjector(sess security.SessionContext) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("session", sess)
		c.Next()
	}
}

func newChatRouter(svc service.ChatService, sess security.SessionContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(svc)

	r := gin.New()
	r.Use(sessionInjector(sess))
	r.GET("/api/visitor/messages/:visitorId", h.GetVisitorMessages)
	r.POST("/api/visitor/messages", h.PostVisitorMessage)
	r.GET("/api/messages/:visitorId", h.GetMessages)
	r.POST("/api/messages", h.PostMessage)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = strings.NewReader(string(payload))
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doRaw(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostVisitorMessageMalformedJSON(t *testing.T) {
	r := newChatRouter(&fakeChatService{}, security.SessionContext{})

	// 字段类型不匹配
	w := doRaw(r, http.MethodPost, "/api/visitor/messages", `{"visitorId":"v1","content":123}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// JSON 语法错误
	w = doRaw(r, http.MethodPost, "/api/visitor/messages", `{"visitorId":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostVisitorMessageContentTooLong(t *testing.T) {
	r := newChatRouter(&fakeChatService{}, security.SessionContext{})

	w := doJSON(r, http.MethodPost, "/api/visitor/messages", dto.VisitorMessageReq{
		VisitorID: "v1",
		Content:   strings.Repeat("a", 1001),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostVisitorMessageMissingVisitorID(t *testing.T) {
	r := newChatRouter(&fakeChatService{}, security.SessionContext{})

	w := doJSON(r, http.MethodPost, "/api/visitor/messages", map[string]string{"content": "hi"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostVisitorMessageAttachesSessionUser(t *testing.T) {
	svc := &fakeChatService{}
	r := newChatRouter(svc, security.SessionContext{UserID: 7, Username: "u7"})

	w := doJSON(r, http.MethodPost, "/api/visitor/messages", dto.VisitorMessageReq{
		VisitorID: "v1",
		Content:   "hello",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.submitted, 1)
	assert.EqualValues(t, 7, svc.submitted[0].UserID)
	assert.False(t, svc.submitted[0].IsFromAdmin)
}

func TestPostMessageServerOverridesIdentity(t *testing.T) {
	svc := &fakeChatService{}
	r := newChatRouter(svc, security.SessionContext{UserID: 1, IsAdmin: true})

	// 客户端伪造的 userId/isFromAdmin 字段被忽略，以会话为准
	w := doJSON(r, http.MethodPost, "/api/messages", map[string]interface{}{
		"visitorId":   "v1",
		"content":     "hello",
		"userId":      99,
		"isFromAdmin": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, svc.submitted, 1)
	assert.EqualValues(t, 1, svc.submitted[0].UserID)
	assert.True(t, svc.submitted[0].IsFromAdmin)
}

func TestGetMessagesVisitorMismatch(t *testing.T) {
	svc := &fakeChatService{authorizeErr: service.ErrVisitorMismatch}
	r := newChatRouter(svc, security.SessionContext{UserID: 2})

	w := doJSON(r, http.MethodGet, "/api/messages/vy", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetMessagesAdminBypassesLinkage(t *testing.T) {
	svc := &fakeChatService{authorizeErr: service.ErrVisitorMismatch}
	r := newChatRouter(svc, security.SessionContext{UserID: 1, IsAdmin: true})

	w := doJSON(r, http.MethodGet, "/api/messages/any", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPostMessageRateLimited(t *testing.T) {
	svc := &fakeChatService{submitErr: service.ErrRateLimited}
	r := newChatRouter(svc, security.SessionContext{})

	w := doJSON(r, http.MethodPost, "/api/visitor/messages", dto.VisitorMessageReq{
		VisitorID: "v1",
		Content:   "hello",
	})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

// fakeLimiter 固定窗口内放行前 limit 次
type fakeLimiter struct {
	limit int
	count map[string]int
}

func (s *fakeLimiter) Allow(_ context.Context, visitorID string) (bool, error) {
	if s.count == nil {
		s.count = make(map[string]int)
	}
	s.count[visitorID]++
	return s.count[visitorID] <= s.limit, nil
}

func TestChatRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeChatService{}
	h := NewChatHandler(svc)

	r := gin.New()
	r.Use(sessionInjector(security.SessionContext{}))
	r.POST("/api/visitor/messages",
		middleware.ChatRateLimitMiddleware(&fakeLimiter{limit: 10}),
		h.PostVisitorMessage)

	body := dto.VisitorMessageReq{VisitorID: "v1", Content: "hello"}
	for i := 0; i < 10; i++ {
		w := doJSON(r, http.MethodPost, "/api/visitor/messages", body)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := doJSON(r, http.MethodPost, "/api/visitor/messages", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// 其他访客不受影响
	w = doJSON(r, http.MethodPost, "/api/visitor/messages", dto.VisitorMessageReq{VisitorID: "v2", Content: "hello"})
	assert.Equal(t, http.StatusOK, w.Code)
}
