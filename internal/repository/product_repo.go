package repository

import (
	"Bigwise/internal/model"
	"context"

	"gorm.io/gorm"
)

// ProductFilter 商品列表过滤条件
type ProductFilter struct {
	Category string
	Featured *bool
}

type ProductRepo interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id uint64) (bool, error)
	GetProduct(ctx context.Context, id uint64) (*model.Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*model.Product, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepo {
	return &productRepoImpl{db: db}
}

func (s *productRepoImpl) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

func (s *productRepoImpl) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

func (s *productRepoImpl) DeleteProduct(ctx context.Context, id uint64) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&model.Product{}, id)
	return res.RowsAffected > 0, res.Error
}

func (s *productRepoImpl) GetProduct(ctx context.Context, id uint64) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *productRepoImpl) ListProducts(ctx context.Context, filter ProductFilter) ([]*model.Product, error) {
	query := s.db.WithContext(ctx).Model(&model.Product{})

	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Featured != nil {
		query = query.Where("featured = ?", *filter.Featured)
	}

	var products []*model.Product
	err := query.Order("created_at DESC").Find(&products).Error
	return products, err
}
