package handler

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/security"
	"Bigwise/internal/service"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWsTestClient(sess security.SessionContext) *wsClient {
	return &wsClient{
		id:       "conn-test",
		sess:     sess,
		outbound: make(chan []byte, 16),
		stop:     make(chan struct{}),
	}
}

func envelopeOf(t *testing.T, event string, payload interface{}) *dto.Envelope {
	t.Helper()
	envelope := &dto.Envelope{Event: event}
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		envelope.Data = data
	}
	return envelope
}

func recvErrorReply(t *testing.T, client *wsClient) dto.MessageErrorDTO {
	t.Helper()
	select {
	case payload := <-client.outbound:
		var envelope dto.Envelope
		require.NoError(t, json.Unmarshal(payload, &envelope))
		require.Equal(t, consts.EventMessageError, envelope.Event)
		var e dto.MessageErrorDTO
		require.NoError(t, json.Unmarshal(envelope.Data, &e))
		return e
	default:
		t.Fatal("expected a message:error reply")
		return dto.MessageErrorDTO{}
	}
}

func requireNoReply(t *testing.T, client *wsClient) {
	t.Helper()
	select {
	case payload := <-client.outbound:
		t.Fatalf("unexpected reply: %s", payload)
	default:
	}
}

func TestDispatchAdminEventsRejectNonAdmin(t *testing.T) {
	svc := &fakeChatService{}
	h := NewWsHandler(svc)
	ctx := context.Background()

	client := newWsTestClient(security.SessionContext{UserID: 2})

	cases := []*dto.Envelope{
		envelopeOf(t, consts.EventMessageAdmin, dto.WsMessageReq{VisitorID: "v1", Content: "hi"}),
		envelopeOf(t, consts.EventTypingAdmin, dto.TypingAdminReq{VisitorID: "v1", IsTyping: true}),
		envelopeOf(t, consts.EventMessagesRead, dto.ReadReq{VisitorID: "v1"}),
		envelopeOf(t, consts.EventJoinAdmin, nil),
	}
	for _, envelope := range cases {
		h.dispatch(ctx, client, envelope)
		reply := recvErrorReply(t, client)
		assert.Equal(t, service.UnauthorizedError.Error(), reply.Error, "event %s", envelope.Event)
	}

	assert.Empty(t, svc.submitted)
	assert.Empty(t, svc.marked)
	assert.Empty(t, svc.typing)
}

func TestDispatchAdminEvents(t *testing.T) {
	svc := &fakeChatService{}
	h := NewWsHandler(svc)
	ctx := context.Background()

	client := newWsTestClient(security.SessionContext{UserID: 1, IsAdmin: true})

	h.dispatch(ctx, client, envelopeOf(t, consts.EventMessageAdmin, dto.WsMessageReq{VisitorID: "v1", Content: "hello"}))
	requireNoReply(t, client)
	require.Len(t, svc.submitted, 1)
	assert.True(t, svc.submitted[0].IsFromAdmin)
	assert.EqualValues(t, 1, svc.submitted[0].UserID)
	assert.Equal(t, "v1", svc.submitted[0].VisitorID)

	h.dispatch(ctx, client, envelopeOf(t, consts.EventTypingAdmin, dto.TypingAdminReq{VisitorID: "v1", IsTyping: true}))
	requireNoReply(t, client)
	require.Len(t, svc.typing, 1)
	assert.True(t, svc.typing[0].update.IsAdmin)
	// 管理员输入带发送端连接标识，供各连接自过滤
	assert.Equal(t, client.id, svc.typing[0].origin)

	h.dispatch(ctx, client, envelopeOf(t, consts.EventMessagesRead, dto.ReadReq{VisitorID: "v1"}))
	requireNoReply(t, client)
	assert.Equal(t, []string{"v1"}, svc.marked)
}

func TestDispatchLinkageMismatch(t *testing.T) {
	svc := &fakeChatService{authorizeErr: service.ErrVisitorMismatch}
	h := NewWsHandler(svc)
	ctx := context.Background()

	// 已登录非管理员：加入与发言都先过关联校验
	client := newWsTestClient(security.SessionContext{UserID: 2})

	h.dispatch(ctx, client, envelopeOf(t, consts.EventJoinVisitor, dto.JoinVisitorReq{VisitorID: "vy"}))
	reply := recvErrorReply(t, client)
	assert.Equal(t, service.ErrVisitorMismatch.Error(), reply.Error)

	h.dispatch(ctx, client, envelopeOf(t, consts.EventMessageSend, dto.WsMessageReq{VisitorID: "vy", Content: "hi"}))
	reply = recvErrorReply(t, client)
	assert.Equal(t, service.ErrVisitorMismatch.Error(), reply.Error)
	assert.Empty(t, svc.submitted)
}

func TestDispatchAnonymousMessageSend(t *testing.T) {
	svc := &fakeChatService{authorizeErr: service.ErrVisitorMismatch}
	h := NewWsHandler(svc)

	// 匿名连接不过关联校验，visitorId 即凭证
	client := newWsTestClient(security.SessionContext{})

	h.dispatch(context.Background(), client, envelopeOf(t, consts.EventMessageSend, dto.WsMessageReq{VisitorID: "v1", Content: "hello"}))
	requireNoReply(t, client)
	require.Len(t, svc.submitted, 1)
	assert.EqualValues(t, 0, svc.submitted[0].UserID)
	assert.False(t, svc.submitted[0].IsFromAdmin)
}

func TestDispatchTypingEvents(t *testing.T) {
	svc := &fakeChatService{}
	h := NewWsHandler(svc)
	ctx := context.Background()

	client := newWsTestClient(security.SessionContext{})

	h.dispatch(ctx, client, envelopeOf(t, consts.EventTypingStart, dto.TypingReq{VisitorID: "v1"}))
	h.dispatch(ctx, client, envelopeOf(t, consts.EventTypingStop, dto.TypingReq{VisitorID: "v1"}))

	require.Len(t, svc.typing, 2)
	assert.True(t, svc.typing[0].update.IsTyping)
	assert.False(t, svc.typing[1].update.IsTyping)
	// 访客输入不带 origin，不参与自过滤
	assert.Empty(t, svc.typing[0].origin)
	assert.False(t, svc.typing[0].update.IsAdmin)
}

func TestDispatchMalformedPayload(t *testing.T) {
	svc := &fakeChatService{}
	h := NewWsHandler(svc)

	client := newWsTestClient(security.SessionContext{})

	h.dispatch(context.Background(), client, &dto.Envelope{
		Event: consts.EventMessageSend,
		Data:  json.RawMessage(`123`),
	})
	reply := recvErrorReply(t, client)
	assert.Equal(t, service.ErrParamInvalid.Error(), reply.Error)
	assert.Empty(t, svc.submitted)
}

func TestWriteLoopFiltersOwnOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewWsHandler(&fakeChatService{})

	redisCh := make(chan *goredis.Message, 3)
	done := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer func() {
			_ = conn.Close()
		}()

		client := &wsClient{
			id:       "conn-1",
			conn:     conn,
			outbound: make(chan []byte, 16),
			stop:     make(chan struct{}),
		}
		h.writeLoop(client, redisCh)
		close(done)
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	defer func() {
		_ = conn.Close()
	}()

	own, _ := json.Marshal(dto.Envelope{Event: consts.EventTypingUpdate, Origin: "conn-1"})
	other, _ := json.Marshal(dto.Envelope{Event: consts.EventTypingUpdate, Origin: "conn-2"})
	broadcast, _ := json.Marshal(dto.Envelope{Event: consts.EventMessageNew})

	redisCh <- &goredis.Message{Payload: string(own)}
	redisCh <- &goredis.Message{Payload: string(other)}
	redisCh <- &goredis.Message{Payload: string(broadcast)}

	// 自身 origin 的帧被丢弃，收到的应依次是他端 typing 与无 origin 的广播
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got []string
	for i := 0; i < 2; i++ {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		var envelope dto.Envelope
		require.NoError(t, json.Unmarshal(raw, &envelope))
		got = append(got, envelope.Origin)
	}
	assert.Equal(t, []string{"conn-2", ""}, got)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "the frame carrying this connection's own origin must not arrive")

	close(redisCh)
	<-done
}
