package repository

import (
	"Bigwise/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WishlistRepo interface {
	AddItem(ctx context.Context, item *model.WishlistItem) error
	GetItems(ctx context.Context, userID uint64) ([]*model.WishlistItem, error)
	RemoveItem(ctx context.Context, userID, productID uint64) (bool, error)
}

type wishlistRepoImpl struct {
	db *gorm.DB
}

func NewWishlistRepo(db *gorm.DB) WishlistRepo {
	return &wishlistRepoImpl{db: db}
}

// AddItem 重复收藏视为幂等操作
func (s *wishlistRepoImpl) AddItem(ctx context.Context, item *model.WishlistItem) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoNothing: true,
	}).Create(item).Error
}

func (s *wishlistRepoImpl) GetItems(ctx context.Context, userID uint64) ([]*model.WishlistItem, error) {
	var items []*model.WishlistItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (s *wishlistRepoImpl) RemoveItem(ctx context.Context, userID, productID uint64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.WishlistItem{})
	return res.RowsAffected > 0, res.Error
}
