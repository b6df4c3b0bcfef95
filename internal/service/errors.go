package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	TooManyRequests     = 429
	InternalServerError = 500
)

var (
	ErrParamInvalid            = errors.New("参数错误")
	ErrContentLength           = errors.New("消息内容长度需在 1-1000 字符之间")
	ErrVisitorIDRequired       = errors.New("缺少访客标识")
	ErrMessageNotFound         = errors.New("消息不存在")
	ErrUserNotFound            = errors.New("用户不存在")
	ErrUserUsernameExist       = errors.New("用户名已存在")
	ErrUserEmailExist          = errors.New("邮箱已注册")
	ErrPasswordIncorrect       = errors.New("密码错误")
	ErrMissingLoginCredentials = errors.New("缺少登录凭据")
	ErrProductNotFound         = errors.New("商品不存在")
	ErrCartItemNotFound        = errors.New("购物车条目不存在")
	ErrWishlistItemNotFound    = errors.New("心愿单条目不存在")
	ErrFileNotSupported        = errors.New("不支持的文件类型")
	ErrRateLimited             = errors.New("发送过于频繁，请稍后再试")
	ErrVisitorMismatch         = errors.New("无权访问该会话")
	UnauthenticatedError       = errors.New("未登录")
	UnauthorizedError          = errors.New("权限不足")
	UnExpectedError            = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:            BadRequest,
	ErrContentLength:           BadRequest,
	ErrVisitorIDRequired:       BadRequest,
	ErrMessageNotFound:         NotFound,
	ErrUserNotFound:            NotFound,
	ErrUserUsernameExist:       BadRequest,
	ErrUserEmailExist:          BadRequest,
	ErrPasswordIncorrect:       Unauthorized,
	ErrMissingLoginCredentials: Unauthorized,
	ErrProductNotFound:         NotFound,
	ErrCartItemNotFound:        NotFound,
	ErrWishlistItemNotFound:    NotFound,
	ErrFileNotSupported:        BadRequest,
	ErrRateLimited:             TooManyRequests,
	ErrVisitorMismatch:         Forbidden,
	UnauthenticatedError:       Unauthorized,
	UnauthorizedError:          Forbidden,
	UnExpectedError:            InternalServerError,
}
