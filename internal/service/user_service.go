package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/model"
	"Bigwise/internal/pkg/consts"
	"Bigwise/internal/pkg/redis"
	"Bigwise/internal/pkg/security"
	"Bigwise/internal/repository"
	"context"
	log "log/slog"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterReq) (*dto.LoginRes, error)
	Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginRes, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, userID uint64) (*dto.UserDTO, error)
}

type userServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &userServiceImpl{userRepo: userRepo}
}

// Register 注册并直接签发会话
func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterReq) (*dto.LoginRes, error) {
	if _, err := s.userRepo.GetUserByUsername(ctx, req.Username); err == nil {
		return nil, ErrUserUsernameExist
	} else if !repository.IsNotFound(err) {
		log.ErrorContext(ctx, "check username failed", "err", err)
		return nil, UnExpectedError
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, req.Email); err == nil {
		return nil, ErrUserEmailExist
	} else if !repository.IsNotFound(err) {
		log.ErrorContext(ctx, "check email failed", "err", err)
		return nil, UnExpectedError
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		log.ErrorContext(ctx, "hash password failed", "err", err)
		return nil, UnExpectedError
	}

	user := &model.User{
		Username: &req.Username,
		Email:    &req.Email,
		FullName: req.FullName,
		Password: &hashed,
	}
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		log.ErrorContext(ctx, "create user failed", "err", err)
		return nil, UnExpectedError
	}

	return s.issueSession(user)
}

// Login 用户名密码登录
func (s *userServiceImpl) Login(ctx context.Context, req *dto.LoginReq) (*dto.LoginRes, error) {
	if req.Username == "" || req.Password == "" {
		return nil, ErrMissingLoginCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		log.ErrorContext(ctx, "load user failed", "err", err)
		return nil, UnExpectedError
	}

	if user.Password == nil || security.CheckPasswordHash(req.Password, *user.Password) != nil {
		return nil, ErrPasswordIncorrect
	}

	return s.issueSession(user)
}

// Logout 将 Token 签名拉入黑名单直至其自然过期
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}

	err = redis.SetWithExpiration(ctx, consts.TokenRevokedKey+signature, "revoked", security.JWTExpirationTime)
	if err != nil {
		log.ErrorContext(ctx, "revoke token failed", "err", err)
		return UnExpectedError
	}
	return nil
}

func (s *userServiceImpl) GetUserInfo(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUser(ctx, userID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		log.ErrorContext(ctx, "load user failed", "userID", userID, "err", err)
		return nil, UnExpectedError
	}
	return toUserDTO(user), nil
}

func (s *userServiceImpl) issueSession(user *model.User) (*dto.LoginRes, error) {
	username := ""
	if user.Username != nil {
		username = *user.Username
	}

	token, err := security.GenerateToken(user.ID, username, user.IsAdmin)
	if err != nil {
		log.Error("generate token failed", "userID", user.ID, "err", err)
		return nil, UnExpectedError
	}

	return &dto.LoginRes{
		Token: token,
		User:  *toUserDTO(user),
	}, nil
}

func toUserDTO(user *model.User) *dto.UserDTO {
	d := &dto.UserDTO{
		ID:        user.ID,
		FullName:  user.FullName,
		IsAdmin:   user.IsAdmin,
		VisitorID: user.VisitorID,
	}
	if user.Username != nil {
		d.Username = *user.Username
	}
	if user.Email != nil {
		d.Email = *user.Email
	}
	return d
}
