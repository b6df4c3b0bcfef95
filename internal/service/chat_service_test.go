package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/model"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/mongo"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeMessageRepo 按插入序保存，排序语义与存储层一致：(created_at, 插入序)
type fakeMessageRepo struct {
	messages []*mongo.Message
	seq      int
}

func (s *fakeMessageRepo) SaveMessage(_ context.Context, msg *mongo.Message) error {
	s.seq++
	clone := *msg
	clone.ID = fmt.Sprintf("%024d", s.seq)
	s.messages = append(s.messages, &clone)
	msg.ID = clone.ID
	return nil
}

func (s *fakeMessageRepo) sorted() []*mongo.Message {
	res := make([]*mongo.Message, len(s.messages))
	copy(res, s.messages)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res
}

func (s *fakeMessageRepo) GetMessages(_ context.Context, visitorID string) ([]*mongo.Message, error) {
	res := make([]*mongo.Message, 0)
	for _, m := range s.sorted() {
		if m.VisitorID == visitorID {
			clone := *m
			res = append(res, &clone)
		}
	}
	return res, nil
}

func (s *fakeMessageRepo) GetAllMessages(_ context.Context) ([]*mongo.Message, error) {
	res := make([]*mongo.Message, 0, len(s.messages))
	for _, m := range s.sorted() {
		clone := *m
		res = append(res, &clone)
	}
	return res, nil
}

func (s *fakeMessageRepo) MarkMessagesAsRead(_ context.Context, visitorID string) error {
	for _, m := range s.messages {
		if m.VisitorID == visitorID && !m.IsFromAdmin {
			m.Read = true
		}
	}
	return nil
}

func (s *fakeMessageRepo) DeleteMessage(_ context.Context, id string) (bool, error) {
	for i, m := range s.messages {
		if m.ID == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	users map[uint64]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uint64]*model.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (s *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserRepo) GetUser(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserRepo) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range s.users {
		if u.Username != nil && *u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserRepo) GetUserByVisitorID(_ context.Context, visitorID string) (*model.User, error) {
	for _, u := range s.users {
		if u.VisitorID != nil && *u.VisitorID == visitorID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// LinkVisitor 与存储层一致：已有关联时静默不覆盖
func (s *fakeUserRepo) LinkVisitor(_ context.Context, userID uint64, visitorID string) error {
	if u, ok := s.users[userID]; ok && u.VisitorID == nil {
		v := visitorID
		u.VisitorID = &v
	}
	return nil
}

type publishedEvent struct {
	channel  string
	envelope dto.Envelope
}

type fakePublisher struct {
	events []publishedEvent
}

func (s *fakePublisher) Publish(_ context.Context, channel string, payload []byte) error {
	var envelope dto.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return err
	}
	s.events = append(s.events, publishedEvent{channel: channel, envelope: envelope})
	return nil
}

func (s *fakePublisher) byEvent(event string) []publishedEvent {
	res := make([]publishedEvent, 0)
	for _, e := range s.events {
		if e.envelope.Event == event {
			res = append(res, e)
		}
	}
	return res
}

type fakeNotify struct {
	visitorIDs []string
}

func (s *fakeNotify) NotifyVisitorMessage(_ context.Context, visitorID, _ string) {
	s.visitorIDs = append(s.visitorIDs, visitorID)
}

func newTestChatService(msgRepo *fakeMessageRepo, userRepo *fakeUserRepo) (ChatService, *fakePublisher, *fakeNotify) {
	publisher := &fakePublisher{}
	notify := &fakeNotify{}
	svc := NewChatService(msgRepo, userRepo, publisher, notify, nil)
	return svc, publisher, notify
}

func TestSubmitMessageContentBounds(t *testing.T) {
	svc, _, _ := newTestChatService(&fakeMessageRepo{}, newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "", Content: "hi"})
	assert.ErrorIs(t, err, ErrVisitorIDRequired)

	_, err = svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: ""})
	assert.ErrorIs(t, err, ErrContentLength)

	_, err = svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: strings.Repeat("a", 1001)})
	assert.ErrorIs(t, err, ErrContentLength)

	// 按字符数而非字节数计界
	msg, err := svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: strings.Repeat("界", 1000)})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
}

func TestSubmitMessageFanOut(t *testing.T) {
	svc, publisher, notify := newTestChatService(&fakeMessageRepo{}, newFakeUserRepo())

	msg, err := svc.SubmitMessage(context.Background(), SubmitMessageInput{VisitorID: "v1", Content: "hello"})
	require.NoError(t, err)

	newEvents := publisher.byEvent(consts.EventMessageNew)
	require.Len(t, newEvents, 2)
	assert.Equal(t, consts.ChatVisitorChannel+"v1", newEvents[0].channel)
	assert.Equal(t, consts.ChatAdminChannel, newEvents[1].channel)

	var pushed dto.MessageDTO
	require.NoError(t, json.Unmarshal(newEvents[0].envelope.Data, &pushed))
	assert.Equal(t, msg.ID, pushed.ID)
	assert.Equal(t, "hello", pushed.Content)

	updates := publisher.byEvent(consts.EventConversationUpdate)
	require.Len(t, updates, 1)
	assert.Equal(t, consts.ChatAdminChannel, updates[0].channel)

	assert.Equal(t, []string{"v1"}, notify.visitorIDs)
}

func TestSubmitMessageAdminSkipsNotify(t *testing.T) {
	svc, _, notify := newTestChatService(&fakeMessageRepo{}, newFakeUserRepo())

	_, err := svc.SubmitMessage(context.Background(), SubmitMessageInput{
		VisitorID: "v1", Content: "hi there", UserID: 1, IsFromAdmin: true,
	})
	require.NoError(t, err)
	assert.Empty(t, notify.visitorIDs)
}

func TestSubmitMessageAutoLink(t *testing.T) {
	userRepo := newFakeUserRepo(&model.User{ID: 7})
	svc, _, _ := newTestChatService(&fakeMessageRepo{}, userRepo)
	ctx := context.Background()

	_, err := svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: "hi", UserID: 7})
	require.NoError(t, err)
	require.NotNil(t, userRepo.users[7].VisitorID)
	assert.Equal(t, "v1", *userRepo.users[7].VisitorID)

	// 首次关联生效后不被覆盖
	_, err = svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v2", Content: "hi", UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, "v1", *userRepo.users[7].VisitorID)
}

func TestSubmitMessageAdminDoesNotLink(t *testing.T) {
	userRepo := newFakeUserRepo(&model.User{ID: 9, IsAdmin: true})
	svc, _, _ := newTestChatService(&fakeMessageRepo{}, userRepo)

	_, err := svc.SubmitMessage(context.Background(), SubmitMessageInput{
		VisitorID: "v1", Content: "hi", UserID: 9, IsFromAdmin: true,
	})
	require.NoError(t, err)
	assert.Nil(t, userRepo.users[9].VisitorID)
}

func TestGetMessagesOrdering(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	svc, _, _ := newTestChatService(msgRepo, newFakeUserRepo())
	ctx := context.Background()

	base := time.Now()
	for i, content := range []string{"first", "second", "third"} {
		require.NoError(t, msgRepo.SaveMessage(ctx, &mongo.Message{
			VisitorID: "v1",
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}
	// 同一时刻的两条按插入序稳定
	require.NoError(t, msgRepo.SaveMessage(ctx, &mongo.Message{VisitorID: "v1", Content: "tie-a", CreatedAt: base.Add(3 * time.Second)}))
	require.NoError(t, msgRepo.SaveMessage(ctx, &mongo.Message{VisitorID: "v1", Content: "tie-b", CreatedAt: base.Add(3 * time.Second)}))

	messages, err := svc.GetMessages(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, messages, 5)

	contents := make([]string, 0, len(messages))
	for _, m := range messages {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"first", "second", "third", "tie-a", "tie-b"}, contents)
}

func TestConversationLifecycle(t *testing.T) {
	svc, publisher, _ := newTestChatService(&fakeMessageRepo{}, newFakeUserRepo())
	ctx := context.Background()

	_, err := svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: "Hello"})
	require.NoError(t, err)

	conversations, err := svc.GetAllConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "v1", conversations[0].VisitorID)
	assert.Equal(t, "Hello", conversations[0].LastMessage.Content)
	assert.EqualValues(t, 1, conversations[0].UnreadCount)
	assert.Nil(t, conversations[0].User)

	require.NoError(t, svc.MarkMessagesAsRead(ctx, "v1"))

	readEvents := publisher.byEvent(consts.EventMessagesRead)
	require.Len(t, readEvents, 1)
	assert.Equal(t, consts.ChatAdminChannel, readEvents[0].channel)

	conversations, err = svc.GetAllConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.EqualValues(t, 0, conversations[0].UnreadCount)

	// 重复标记保持幂等
	require.NoError(t, svc.MarkMessagesAsRead(ctx, "v1"))
	conversations, _ = svc.GetAllConversations(ctx)
	assert.EqualValues(t, 0, conversations[0].UnreadCount)
}

func TestConversationGroupingAndSort(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	username := "alice"
	vID := "v1"
	userRepo := newFakeUserRepo(&model.User{ID: 3, Username: &username, FullName: "Alice", VisitorID: &vID})
	svc, _, _ := newTestChatService(msgRepo, userRepo)
	ctx := context.Background()

	base := time.Now()
	seed := []*mongo.Message{
		{VisitorID: "v1", Content: "a1", CreatedAt: base},
		{VisitorID: "v2", Content: "b1", CreatedAt: base.Add(time.Second)},
		{VisitorID: "v1", Content: "a2", IsFromAdmin: true, CreatedAt: base.Add(2 * time.Second)},
		{VisitorID: "v2", Content: "b2", CreatedAt: base.Add(3 * time.Second)},
	}
	for _, m := range seed {
		require.NoError(t, msgRepo.SaveMessage(ctx, m))
	}

	conversations, err := svc.GetAllConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// 按最后一条消息时间倒序
	assert.Equal(t, "v2", conversations[0].VisitorID)
	assert.Equal(t, "b2", conversations[0].LastMessage.Content)
	assert.EqualValues(t, 2, conversations[0].UnreadCount)

	assert.Equal(t, "v1", conversations[1].VisitorID)
	assert.Equal(t, "a2", conversations[1].LastMessage.Content)
	// 管理员消息不计入未读
	assert.EqualValues(t, 1, conversations[1].UnreadCount)
	require.NotNil(t, conversations[1].User)
	assert.Equal(t, "alice", conversations[1].User.Username)
}

func TestConversationUserFallbackSkipsAnonymous(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	username := "bob"
	userRepo := newFakeUserRepo(&model.User{ID: 5, Username: &username, FullName: "Bob"})
	svc, _, _ := newTestChatService(msgRepo, userRepo)
	ctx := context.Background()

	base := time.Now()
	// 带账号的消息之后又来了一条未登录消息，会话归属保持在账号上
	require.NoError(t, msgRepo.SaveMessage(ctx, &mongo.Message{
		VisitorID: "v1", Content: "as bob", UserID: 5, CreatedAt: base,
	}))
	require.NoError(t, msgRepo.SaveMessage(ctx, &mongo.Message{
		VisitorID: "v1", Content: "logged out now", CreatedAt: base.Add(time.Second),
	}))

	conversations, err := svc.GetAllConversations(ctx)
	require.NoError(t, err)
	require.Len(t, conversations, 1)
	assert.Equal(t, "logged out now", conversations[0].LastMessage.Content)
	require.NotNil(t, conversations[0].User)
	assert.Equal(t, "bob", conversations[0].User.Username)
}

func TestAuthorizeVisitor(t *testing.T) {
	linked := "v1"
	userRepo := newFakeUserRepo(
		&model.User{ID: 1, VisitorID: &linked},
		&model.User{ID: 2},
	)
	svc, _, _ := newTestChatService(&fakeMessageRepo{}, userRepo)
	ctx := context.Background()

	assert.NoError(t, svc.AuthorizeVisitor(ctx, 1, "v1", false))
	assert.NoError(t, svc.AuthorizeVisitor(ctx, 1, "v1", true))
	assert.ErrorIs(t, svc.AuthorizeVisitor(ctx, 1, "v2", true), ErrVisitorMismatch)

	// 未关联账号：写入放行（随后 auto-link），读取拒绝
	assert.NoError(t, svc.AuthorizeVisitor(ctx, 2, "v9", true))
	assert.ErrorIs(t, svc.AuthorizeVisitor(ctx, 2, "v9", false), ErrVisitorMismatch)
}

func TestDeleteMessage(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	svc, _, _ := newTestChatService(msgRepo, newFakeUserRepo())
	ctx := context.Background()

	msg, err := svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: "bye"})
	require.NoError(t, err)

	assert.NoError(t, svc.DeleteMessage(ctx, msg.ID))
	assert.ErrorIs(t, svc.DeleteMessage(ctx, msg.ID), ErrMessageNotFound)
}

func TestBroadcastTypingOrigin(t *testing.T) {
	svc, publisher, _ := newTestChatService(&fakeMessageRepo{}, newFakeUserRepo())
	ctx := context.Background()

	svc.BroadcastTyping(ctx, dto.TypingUpdateDTO{VisitorID: "v1", IsTyping: true}, "")
	svc.BroadcastTyping(ctx, dto.TypingUpdateDTO{VisitorID: "v1", IsTyping: true, IsAdmin: true}, "conn-1")

	events := publisher.byEvent(consts.EventTypingUpdate)
	require.Len(t, events, 4)

	// 访客输入不带 origin
	for _, e := range events[:2] {
		assert.Empty(t, e.envelope.Origin)
	}

	// 管理员输入仅管理频道带 origin，访客频道不带
	assert.Equal(t, consts.ChatVisitorChannel+"v1", events[2].channel)
	assert.Empty(t, events[2].envelope.Origin)
	assert.Equal(t, consts.ChatAdminChannel, events[3].channel)
	assert.Equal(t, "conn-1", events[3].envelope.Origin)
}

func TestRoundTripRealtimeToRest(t *testing.T) {
	msgRepo := &fakeMessageRepo{}
	svc, _, _ := newTestChatService(msgRepo, newFakeUserRepo())
	ctx := context.Background()

	sent, err := svc.SubmitMessage(ctx, SubmitMessageInput{VisitorID: "v1", Content: "ping", UserID: 0})
	require.NoError(t, err)

	messages, err := svc.GetMessages(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, sent.ID, messages[0].ID)
	assert.Equal(t, "ping", messages[0].Content)
	assert.Equal(t, "v1", messages[0].VisitorID)
	assert.False(t, messages[0].IsFromAdmin)
}
