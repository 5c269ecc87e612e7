package router

import (
	"time"

	"campusmart/config"
	"campusmart/internal/handler"
	"campusmart/internal/middleware"
	"campusmart/internal/repository"
	"campusmart/internal/service"
	"campusmart/internal/ws"
	"campusmart/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, gateway payment.Gateway, log zerolog.Logger) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	itemRepo := repository.NewItemRepository(db)
	offerRepo := repository.NewOfferRepository(db)
	meetupRepo := repository.NewMeetupRepository(db)
	coinRepo := repository.NewCoinRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	hub := ws.NewHub()

	// Services
	ledgerSvc := service.NewLedgerService(db, coinRepo, log)
	authSvc := service.NewAuthService(cfg, db, userRepo, ledgerSvc)
	itemSvc := service.NewItemService(db, itemRepo, userRepo, ledgerSvc, log)
	offerSvc := service.NewOfferService(db, offerRepo, itemRepo, log)
	meetupSvc := service.NewMeetupService(db, meetupRepo, offerRepo, itemRepo, userRepo, transactionRepo, ledgerSvc, log)
	coinSvc := service.NewCoinService(db, ledgerSvc, paymentRepo, coinRepo, gateway, cfg.Gateway, log)
	notifSvc := service.NewNotificationService(notificationRepo, hub, log)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc)
	meHandler := handler.NewMeHandler(userRepo, transactionRepo)
	itemHandler := handler.NewItemHandler(itemSvc)
	offerHandler := handler.NewOfferHandler(offerSvc, userRepo, notifSvc)
	meetupHandler := handler.NewMeetupHandler(meetupSvc, notifSvc)
	coinHandler := handler.NewCoinHandler(coinSvc, ledgerSvc, notifSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)

	authMw := middleware.AuthRequired(&cfg.JWT)

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		api.GET("/me", authMw, meHandler.Get)

		items := api.Group("/items")
		{
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.Get)
			items.POST("", authMw, itemHandler.Create)
			items.GET("/mine", authMw, itemHandler.ListMine)
			items.DELETE("/:id", authMw, itemHandler.Deactivate)
		}

		offers := api.Group("/offers", authMw)
		{
			offers.POST("", offerHandler.Create)
			offers.POST("/:id/counter", offerHandler.Counter)
			offers.PUT("/:id/accept", offerHandler.Accept)
			offers.PUT("/:id/reject", offerHandler.Reject)
			offers.PUT("/:id/cancel", offerHandler.Cancel)
			offers.GET("/:id/chain", offerHandler.Chain)
			offers.GET("/sent", offerHandler.ListSent)
			offers.GET("/received", offerHandler.ListReceived)
		}

		meetups := api.Group("/meetups", authMw)
		{
			meetups.POST("", meetupHandler.Create)
			meetups.GET("", meetupHandler.ListMine)
			meetups.GET("/:id", meetupHandler.Get)
			meetups.PUT("/:id", meetupHandler.Reschedule)
			meetups.PUT("/:id/confirm", meetupHandler.Confirm)
			meetups.PUT("/:id/fail", meetupHandler.MarkFailed)
			meetups.PUT("/:id/cancel", meetupHandler.Cancel)
		}

		user := api.Group("/user", authMw)
		{
			user.GET("/coins", coinHandler.Balance)
			user.POST("/coins/purchase", coinHandler.Purchase)
			user.POST("/coins/verify", coinHandler.Verify)
		}

		notifications := api.Group("/notifications", authMw)
		{
			notifications.GET("", notificationHandler.List)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}
	}

	r.GET("/ws/notifications", ws.UpgradeNotificationWS(&cfg.JWT, hub))

	return r
}
