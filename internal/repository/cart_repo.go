package repository

import (
	"Bigwise/internal/model"
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo interface {
	UpsertItem(ctx context.Context, item *model.CartItem) error
	GetItems(ctx context.Context, userID uint64) ([]*model.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint64, quantity int) (bool, error)
	RemoveItem(ctx context.Context, userID, itemID uint64) (bool, error)
	Clear(ctx context.Context, userID uint64) error
}

type cartRepoImpl struct {
	db *gorm.DB
}

func NewCartRepo(db *gorm.DB) CartRepo {
	return &cartRepoImpl{db: db}
}

// UpsertItem 同一用户重复加购同一商品时累加数量
func (s *cartRepoImpl) UpsertItem(ctx context.Context, item *model.CartItem) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", item.Quantity),
			"size":     item.Size,
			"color":    item.Color,
		}),
	}).Create(item).Error
}

func (s *cartRepoImpl) GetItems(ctx context.Context, userID uint64) ([]*model.CartItem, error) {
	var items []*model.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	return items, err
}

func (s *cartRepoImpl) UpdateQuantity(ctx context.Context, userID, itemID uint64, quantity int) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	return res.RowsAffected > 0, res.Error
}

func (s *cartRepoImpl) RemoveItem(ctx context.Context, userID, itemID uint64) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&model.CartItem{})
	return res.RowsAffected > 0, res.Error
}

func (s *cartRepoImpl) Clear(ctx context.Context, userID uint64) error {
	return s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.CartItem{}).Error
}
