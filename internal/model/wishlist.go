package model

import "time"

// WishlistItem 心愿单条目
type WishlistItem struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64 `gorm:"uniqueIndex:idx_wish_user_product;index" json:"userId"`
	ProductID uint64 `gorm:"uniqueIndex:idx_wish_user_product" json:"productId"`

	CreatedAt time.Time `json:"createdAt"`

	Product Product `gorm:"foreignKey:ProductID;references:ID" json:"product"`
}

func (WishlistItem) TableName() string { return "wishlist_items" }
