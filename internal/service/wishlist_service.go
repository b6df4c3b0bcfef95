package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/model"
	"Bigwise/internal/repository"
	"context"
	log "log/slog"
)

type WishlistService interface {
	AddItem(ctx context.Context, userID, productID uint64) error
	GetItems(ctx context.Context, userID uint64) ([]*dto.WishlistItemDTO, error)
	RemoveItem(ctx context.Context, userID, productID uint64) error
}

type wishlistServiceImpl struct {
	wishlistRepo repository.WishlistRepo
	productRepo  repository.ProductRepo
}

func NewWishlistService(wishlistRepo repository.WishlistRepo, productRepo repository.ProductRepo) WishlistService {
	return &wishlistServiceImpl{wishlistRepo: wishlistRepo, productRepo: productRepo}
}

func (s *wishlistServiceImpl) AddItem(ctx context.Context, userID, productID uint64) error {
	if _, err := s.productRepo.GetProduct(ctx, productID); err != nil {
		if repository.IsNotFound(err) {
			return ErrProductNotFound
		}
		log.ErrorContext(ctx, "load product failed", "productID", productID, "err", err)
		return UnExpectedError
	}

	item := &model.WishlistItem{UserID: userID, ProductID: productID}
	if err := s.wishlistRepo.AddItem(ctx, item); err != nil {
		log.ErrorContext(ctx, "add wishlist item failed", "userID", userID, "productID", productID, "err", err)
		return UnExpectedError
	}
	return nil
}

func (s *wishlistServiceImpl) GetItems(ctx context.Context, userID uint64) ([]*dto.WishlistItemDTO, error) {
	items, err := s.wishlistRepo.GetItems(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get wishlist items failed", "userID", userID, "err", err)
		return nil, UnExpectedError
	}

	res := make([]*dto.WishlistItemDTO, 0, len(items))
	for _, item := range items {
		res = append(res, &dto.WishlistItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Product:   *toProductDTO(&item.Product),
		})
	}
	return res, nil
}

func (s *wishlistServiceImpl) RemoveItem(ctx context.Context, userID, productID uint64) error {
	ok, err := s.wishlistRepo.RemoveItem(ctx, userID, productID)
	if err != nil {
		log.ErrorContext(ctx, "remove wishlist item failed", "userID", userID, "productID", productID, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrWishlistItemNotFound
	}
	return nil
}
