package dto

// RegisterReq 注册请求体
type RegisterReq struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	FullName string `json:"fullName" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// LoginReq 登录请求体
type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserDTO 用户信息响应
type UserDTO struct {
	ID        uint64  `json:"id"`
	Username  string  `json:"username"`
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	IsAdmin   bool    `json:"isAdmin"`
	VisitorID *string `json:"visitorId,omitempty"`
}

// LoginRes 登录成功响应
type LoginRes struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}
