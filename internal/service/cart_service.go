package service

import (
	"Bigwise/internal/api/dto"
	"Bigwise/internal/model"
	"Bigwise/internal/repository"
	"context"
	log "log/slog"
)

type CartService interface {
	AddItem(ctx context.Context, userID uint64, req *dto.AddCartItemReq) error
	GetItems(ctx context.Context, userID uint64) ([]*dto.CartItemDTO, error)
	UpdateQuantity(ctx context.Context, userID, itemID uint64, quantity int) error
	RemoveItem(ctx context.Context, userID, itemID uint64) error
	Clear(ctx context.Context, userID uint64) error
}

type cartServiceImpl struct {
	cartRepo    repository.CartRepo
	productRepo repository.ProductRepo
}

func NewCartService(cartRepo repository.CartRepo, productRepo repository.ProductRepo) CartService {
	return &cartServiceImpl{cartRepo: cartRepo, productRepo: productRepo}
}

func (s *cartServiceImpl) AddItem(ctx context.Context, userID uint64, req *dto.AddCartItemReq) error {
	if _, err := s.productRepo.GetProduct(ctx, req.ProductID); err != nil {
		if repository.IsNotFound(err) {
			return ErrProductNotFound
		}
		log.ErrorContext(ctx, "load product failed", "productID", req.ProductID, "err", err)
		return UnExpectedError
	}

	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	item := &model.CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  quantity,
		Size:      req.Size,
		Color:     req.Color,
	}
	if err := s.cartRepo.UpsertItem(ctx, item); err != nil {
		log.ErrorContext(ctx, "upsert cart item failed", "userID", userID, "productID", req.ProductID, "err", err)
		return UnExpectedError
	}
	return nil
}

func (s *cartServiceImpl) GetItems(ctx context.Context, userID uint64) ([]*dto.CartItemDTO, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get cart items failed", "userID", userID, "err", err)
		return nil, UnExpectedError
	}

	res := make([]*dto.CartItemDTO, 0, len(items))
	for _, item := range items {
		res = append(res, &dto.CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
			Product:   *toProductDTO(&item.Product),
		})
	}
	return res, nil
}

func (s *cartServiceImpl) UpdateQuantity(ctx context.Context, userID, itemID uint64, quantity int) error {
	ok, err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		log.ErrorContext(ctx, "update cart quantity failed", "userID", userID, "itemID", itemID, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *cartServiceImpl) RemoveItem(ctx context.Context, userID, itemID uint64) error {
	ok, err := s.cartRepo.RemoveItem(ctx, userID, itemID)
	if err != nil {
		log.ErrorContext(ctx, "remove cart item failed", "userID", userID, "itemID", itemID, "err", err)
		return UnExpectedError
	}
	if !ok {
		return ErrCartItemNotFound
	}
	return nil
}

func (s *cartServiceImpl) Clear(ctx context.Context, userID uint64) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		log.ErrorContext(ctx, "clear cart failed", "userID", userID, "err", err)
		return UnExpectedError
	}
	return nil
}
