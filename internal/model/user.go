package model

import (
	"time"
)

type User struct {
	ID       uint64  `gorm:"primaryKey"`
	Username *string `gorm:"type:varchar(50);uniqueIndex:idx_username"`
	Email    *string `gorm:"type:varchar(100);uniqueIndex:idx_email"`
	FullName string  `gorm:"type:varchar(100)"`
	Password *string `gorm:"type:varchar(255)"`
	IsAdmin  bool    `gorm:"type:tinyint(1);default:0"`

	// VisitorID 账号与浏览器访客上下文的一次性关联（auto-link），首次写入后不再变更
	VisitorID *string `gorm:"type:varchar(64);uniqueIndex:idx_visitor_id"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (User) TableName() string {
	return "users"
}
