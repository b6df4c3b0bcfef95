package dto

// AddCartItemReq 加入购物车请求体
type AddCartItemReq struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"omitempty,gte=1"`
	Size      string `json:"size" binding:"max=20"`
	Color     string `json:"color" binding:"max=30"`
}

// UpdateCartItemReq 修改购物车数量请求体
type UpdateCartItemReq struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// CartItemDTO 购物车条目响应
type CartItemDTO struct {
	ID        uint64     `json:"id"`
	ProductID uint64     `json:"productId"`
	Quantity  int        `json:"quantity"`
	Size      string     `json:"size,omitempty"`
	Color     string     `json:"color,omitempty"`
	Product   ProductDTO `json:"product"`
}

// AddWishlistItemReq 加入心愿单请求体
type AddWishlistItemReq struct {
	ProductID uint64 `json:"productId" binding:"required"`
}

// WishlistItemDTO 心愿单条目响应
type WishlistItemDTO struct {
	ID        uint64     `json:"id"`
	ProductID uint64     `json:"productId"`
	Product   ProductDTO `json:"product"`
}
