package router

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/adapter/objectstore"
	"github.com/polkiloo/shoutout/internal/config"
	"github.com/polkiloo/shoutout/internal/domain/model"
	"github.com/polkiloo/shoutout/internal/server/http/dto"
	"github.com/polkiloo/shoutout/internal/server/http/handlers"
	"github.com/polkiloo/shoutout/internal/server/http/middleware"
)

const (
	maxInflatedBody    = 1 << 20
	maxMultipartMemory = 32 << 20
)

// Params are the router dependencies.
type Params struct {
	fx.In

	Facade      handlers.MarketplaceFacade
	Idempotency middleware.IdempotencyStore
	Config      *config.Config
	Logger      *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	if p.Config.Environment == config.EnvironmentProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	dto.RegisterValidators()

	engine := gin.New()
	engine.MaxMultipartMemory = maxMultipartMemory

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	if len(p.Config.CORSOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     p.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.IdempotencyKeyHeader},
			ExposeHeaders:    []string{"Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	engine.Use(middleware.DecompressRequest(maxInflatedBody))
	engine.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{objectstore.MediaPrefix})))

	if p.Config.StorageDriver == config.StorageDriverLocal {
		engine.Static(objectstore.MediaPrefix, p.Config.StorageDir)
	}

	authHandler := handlers.NewAuthHandler(p.Facade)
	celebrityHandler := handlers.NewCelebrityHandler(p.Facade)
	bookingHandler := handlers.NewBookingHandler(p.Facade)
	orderHandler := handlers.NewOrderHandler(p.Facade)
	webhookHandler := handlers.NewWebhookHandler(p.Facade)
	healthHandler := handlers.NewHealthHandler(p.Facade)

	idempotent := middleware.Idempotent(p.Idempotency, p.Config.IdempotencyTTL, p.Logger)
	// a second decline of a new take or a second tip may carry the same body
	repeatable := middleware.Idempotent(p.Idempotency, p.Config.IdempotencyTTL, p.Logger, middleware.ExplicitKeyOnly())

	engine.GET("/healthz", healthHandler.Check)

	api := engine.Group("/api")
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/webhooks/stripe", webhookHandler.Stripe)

	api.GET("/celebrities", celebrityHandler.List)
	api.GET("/celebrities/:slug", celebrityHandler.Get)
	api.GET("/celebrities/:slug/reviews", celebrityHandler.Reviews)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(p.Facade))
	authed.GET("/orders/:orderNumber", orderHandler.Get)

	celebrity := authed.Group("")
	celebrity.Use(middleware.RoleRequired(model.RoleCelebrity))
	celebrity.POST("/celebrity/profile", celebrityHandler.Onboard)
	celebrity.PUT("/celebrity/payout-account", celebrityHandler.SetPayoutAccount)
	celebrity.GET("/booking-requests", bookingHandler.List)
	celebrity.PATCH("/booking-requests/:id", idempotent, bookingHandler.Decide)
	celebrity.POST("/booking-requests/:id/video", bookingHandler.UploadVideo)

	customer := authed.Group("")
	customer.Use(middleware.RoleRequired(model.RoleCustomer))
	customer.POST("/orders", idempotent, orderHandler.Checkout)
	customer.GET("/orders", orderHandler.List)
	customer.POST("/orders/:orderNumber/approve", idempotent, orderHandler.Approve)
	customer.POST("/orders/:orderNumber/decline", repeatable, orderHandler.Decline)
	customer.GET("/orders/:orderNumber/video", orderHandler.Video)
	customer.POST("/orders/:orderNumber/reviews", orderHandler.Review)
	customer.POST("/tips", repeatable, orderHandler.Tip)

	admin := authed.Group("/admin")
	admin.Use(middleware.RoleRequired(model.RoleAdmin))
	admin.GET("/orders", orderHandler.ListByState)

	return engine
}
