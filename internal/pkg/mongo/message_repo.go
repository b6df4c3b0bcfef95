package mongo

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepo interface {
	SaveMessage(ctx context.Context, msg *Message) error
	GetMessages(ctx context.Context, visitorID string) ([]*Message, error)
	GetAllMessages(ctx context.Context) ([]*Message, error)
	MarkMessagesAsRead(ctx context.Context, visitorID string) error
	DeleteMessage(ctx context.Context, id string) (bool, error)
}

type messageRepoImpl struct {
	col *mongo.Collection
}

func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepoImpl{
		col: db.Collection("messages"),
	}
}

// SaveMessage 将消息存入 MongoDB，并回填生成的 ID
func (s *messageRepoImpl) SaveMessage(ctx context.Context, msg *Message) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	res, err := s.col.InsertOne(ctx, msg)
	if err != nil {
		return errors.Wrap(err, "insert message")
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

// GetMessages 获取某访客的全部消息，按时间升序。
// created_at 相同时按 _id (插入序) 作为次级排序，保证顺序确定。
func (s *messageRepoImpl) GetMessages(ctx context.Context, visitorID string) ([]*Message, error) {
	filter := bson.M{"visitor_id": visitorID}

	findOptions := options.Find().
		SetSort(bson.D{
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		})

	cursor, err := s.col.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "find messages")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "decode messages")
	}

	return messages, nil
}

// GetAllMessages 全量扫描，供会话聚合使用，排序规则与 GetMessages 一致
func (s *messageRepoImpl) GetAllMessages(ctx context.Context) ([]*Message, error) {
	findOptions := options.Find().
		SetSort(bson.D{
			{Key: "created_at", Value: 1},
			{Key: "_id", Value: 1},
		})

	cursor, err := s.col.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, errors.Wrap(err, "scan messages")
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	messages := make([]*Message, 0)
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, errors.Wrap(err, "decode messages")
	}

	return messages, nil
}

// MarkMessagesAsRead 批量置位已读，仅影响访客方向的消息，天然幂等
func (s *messageRepoImpl) MarkMessagesAsRead(ctx context.Context, visitorID string) error {
	filter := bson.M{
		"visitor_id":    visitorID,
		"is_from_admin": false,
	}

	_, err := s.col.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	return errors.Wrap(err, "mark messages as read")
}

// DeleteMessage 按 ID 删除单条消息，返回是否确有删除
func (s *messageRepoImpl) DeleteMessage(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, errors.Wrap(err, "delete message")
	}
	return res.DeletedCount > 0, nil
}
