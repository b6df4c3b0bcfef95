package model

import "time"

// CartItem 购物车条目
type CartItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"uniqueIndex:idx_cart_user_product;index" json:"userId"`
	ProductID uint64 `gorm:"uniqueIndex:idx_cart_user_product" json:"productId"`
	Quantity  int    `gorm:"not null;default:1" json:"quantity"`
	Size      string `gorm:"type:varchar(20)" json:"size"`
	Color     string `gorm:"type:varchar(30)" json:"color"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
}

func (CartItem) TableName() string { return "cart_items" }
