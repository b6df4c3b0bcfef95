package api

import "Bigwise/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	AuthHandler     *handler.AuthHandler
	ChatHandler     *handler.ChatHandler
	WsHandler       *handler.WsHandler
	ProductHandler  *handler.ProductHandler
	CartHandler     *handler.CartHandler
	WishlistHandler *handler.WishlistHandler
	MediaHandler    *handler.MediaHandler
}
