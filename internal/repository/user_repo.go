package repository

import (
	"Bigwise/internal/model"
	"context"
	"errors"

	"gorm.io/gorm"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id uint64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByVisitorID(ctx context.Context, visitorID string) (*model.User, error)
	LinkVisitor(ctx context.Context, userID uint64, visitorID string) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

func (s *userRepoImpl) CreateUser(ctx context.Context, user *model.User) error {
	return s.db.WithContext(ctx).Create(user).Error
}

func (s *userRepoImpl) GetUser(ctx context.Context, id uint64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByVisitorID 根据访客标识反查已关联的账号，未关联时返回 ErrRecordNotFound
func (s *userRepoImpl) GetUserByVisitorID(ctx context.Context, visitorID string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Where("visitor_id = ?", visitorID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// LinkVisitor 首次写入生效：WHERE visitor_id IS NULL 保证并发下也不会覆盖已有关联
func (s *userRepoImpl) LinkVisitor(ctx context.Context, userID uint64, visitorID string) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND visitor_id IS NULL", userID).
		Update("visitor_id", visitorID).Error
}

// IsNotFound 判断是否为未命中错误
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
