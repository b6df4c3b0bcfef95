package wire

import (
	"Bigwise/internal/api"
	"Bigwise/internal/api/config"
	"Bigwise/internal/api/handler"
	"Bigwise/internal/api/middleware"
	"Bigwise/internal/job"
	"Bigwise/internal/pkg/cron"
	"Bigwise/internal/pkg/kafka"
	pkgmongo "Bigwise/internal/pkg/mongo"
	"Bigwise/internal/repository"
	"Bigwise/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router     *gin.Engine
	DB         *gorm.DB
	CronMgr    *cron.Manager
	ChatEvents *kafka.Producer
}

func BuildApplication(db *gorm.DB, mongoDB *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	cartRepo := repository.NewCartRepo(db)
	wishlistRepo := repository.NewWishlistRepo(db)
	messageRepo := pkgmongo.NewMessageRepo(mongoDB)

	chatEvents, err := kafka.NewProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	userService := service.NewUserService(userRepo)
	mediaService := service.NewMediaService()
	productService := service.NewProductService(productRepo, mediaService)
	cartService := service.NewCartService(cartRepo, productRepo)
	wishlistService := service.NewWishlistService(wishlistRepo, productRepo)
	notifyService := service.NewNotifyService()
	chatService := service.NewChatService(messageRepo, userRepo,
		service.NewRedisChatPublisher(), notifyService, chatEvents)

	handlers := &api.HandlersGroup{
		AuthHandler:     handler.NewAuthHandler(userService),
		ChatHandler:     handler.NewChatHandler(chatService),
		WsHandler:       handler.NewWsHandler(chatService),
		ProductHandler:  handler.NewProductHandler(productService),
		CartHandler:     handler.NewCartHandler(cartService),
		WishlistHandler: handler.NewWishlistHandler(wishlistService),
		MediaHandler:    handler.NewMediaHandler(mediaService),
	}

	router := api.SetupRouter(handlers, middleware.NewRedisRateLimiter())

	cronMgr := cron.NewCronManager(job.NewMediaCleanupJob())

	return &ApplicationContainer{
		Router:     router,
		DB:         db,
		CronMgr:    cronMgr,
		ChatEvents: chatEvents,
	}, nil
}
