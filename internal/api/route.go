package api

import (
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup, limiter middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		// 实时通道，Token 经 query 携带且可选
		apiGroup.GET("/chat/ws", group.WsHandler.Connect)

		authGroup := apiGroup.Group("/auth")
		{
			authGroup.POST("/register", group.AuthHandler.Register)
			authGroup.POST("/login", group.AuthHandler.Login)

			loggedGroup := authGroup.Group("")
			loggedGroup.Use(middleware.AuthMiddleware())
			{
				loggedGroup.POST("/logout", group.AuthHandler.Logout)
				loggedGroup.GET("/me", group.AuthHandler.Me)
			}
		}

		// 匿名访客通道：visitorId 即凭证，发消息按访客限流
		visitorGroup := apiGroup.Group("/visitor")
		visitorGroup.Use(middleware.AuthOptionalMiddleware())
		{
			visitorGroup.GET("/messages/:visitorId", group.ChatHandler.GetVisitorMessages)
			visitorGroup.POST("/messages",
				middleware.ChatRateLimitMiddleware(limiter),
				group.ChatHandler.PostVisitorMessage)
		}

		messageGroup := apiGroup.Group("/messages")
		messageGroup.Use(middleware.AuthMiddleware())
		{
			messageGroup.GET("/:visitorId", group.ChatHandler.GetMessages)
			messageGroup.POST("", group.ChatHandler.PostMessage)

			adminGroup := messageGroup.Group("")
			adminGroup.Use(middleware.CheckAdmin())
			{
				adminGroup.POST("/:visitorId/read", group.ChatHandler.MarkRead)
				adminGroup.DELETE("/:messageId", group.ChatHandler.DeleteMessage)
			}
		}

		conversationGroup := apiGroup.Group("/conversations")
		conversationGroup.Use(middleware.AuthMiddleware(), middleware.CheckAdmin())
		{
			conversationGroup.GET("", group.ChatHandler.GetConversations)
		}

		productGroup := apiGroup.Group("/products")
		{
			productGroup.GET("", group.ProductHandler.ListProducts)
			productGroup.GET("/:id", group.ProductHandler.GetProduct)

			adminGroup := productGroup.Group("")
			adminGroup.Use(middleware.AuthMiddleware(), middleware.CheckAdmin())
			{
				adminGroup.POST("", group.ProductHandler.CreateProduct)
				adminGroup.PUT("/:id", group.ProductHandler.UpdateProduct)
				adminGroup.DELETE("/:id", group.ProductHandler.DeleteProduct)
			}
		}

		cartGroup := apiGroup.Group("/cart")
		cartGroup.Use(middleware.AuthMiddleware())
		{
			cartGroup.GET("", group.CartHandler.GetItems)
			cartGroup.POST("", group.CartHandler.AddItem)
			cartGroup.PUT("/:id", group.CartHandler.UpdateItem)
			cartGroup.DELETE("/:id", group.CartHandler.RemoveItem)
			cartGroup.DELETE("", group.CartHandler.Clear)
		}

		wishlistGroup := apiGroup.Group("/wishlist")
		wishlistGroup.Use(middleware.AuthMiddleware())
		{
			wishlistGroup.GET("", group.WishlistHandler.GetItems)
			wishlistGroup.POST("", group.WishlistHandler.AddItem)
			wishlistGroup.DELETE("/:productId", group.WishlistHandler.RemoveItem)
		}

		mediaGroup := apiGroup.Group("/media")
		mediaGroup.Use(middleware.AuthMiddleware(), middleware.CheckAdmin())
		{
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}
	}

	return r
}
