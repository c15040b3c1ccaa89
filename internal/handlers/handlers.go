package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/diya-thabet/hirfa/internal/config"
	"github.com/diya-thabet/hirfa/internal/events"
	"github.com/diya-thabet/hirfa/internal/geo"
	"github.com/diya-thabet/hirfa/internal/middleware"
	"github.com/diya-thabet/hirfa/internal/models"
	"github.com/diya-thabet/hirfa/internal/repository"
	"github.com/diya-thabet/hirfa/internal/service"
	"github.com/diya-thabet/hirfa/internal/storage"
)

// UserAdmin is what the admin endpoints need from the user store.
type UserAdmin interface {
	middleware.UserFinder
	SetVerified(ctx context.Context, id int64, verified bool) error
}

// Services groups the domain services the handlers delegate to.
type Services struct {
	Auth      *service.AuthService
	Match     *service.MatchService
	Geo       *service.GeoService
	Community *service.CommunityService
	Chat      *service.ChatService
	Review    *service.ReviewService
	Media     *service.MediaService
	Users     UserAdmin
	Events    service.EventPublisher
}

// HealthCheck reports one dependency's status.
type HealthCheck func(ctx context.Context) error

type HandlerSet struct {
	log      zerolog.Logger
	cfg      *config.AppConfig
	services Services
	checks   map[string]HealthCheck
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) HandlerSet {
	users := repository.NewUserRepository(db)
	jobs := repository.NewJobRepository(db)
	bids := repository.NewBidRepository(db)
	publisher := events.NewRedisPublisher(cache, cfg.Redis.Stream)

	services := Services{
		Auth: service.NewAuthService(users, service.AuthConfig{
			JWTSecret:       cfg.Security.JWTSecret,
			JWTTTL:          cfg.Security.JWTTTL,
			AdminSecretHash: cfg.Security.AdminSecretHash,
		}, log),
		Match: service.NewMatchService(jobs, bids, service.FairPlayConfig{
			NewProviderBoost:  cfg.Marketplace.NewProviderBoost,
			NewProviderWindow: cfg.Marketplace.NewProviderWindow,
		}, log),
		Geo:       service.NewGeoService(geo.NewRedisIndex(cache), users, cfg.Marketplace.DefaultNearbyRadius),
		Community: service.NewCommunityService(repository.NewStoryRepository(db), cfg.Marketplace.StoryTTL, log),
		Chat:      service.NewChatService(repository.NewChatRepository(db), jobs, users, publisher, log),
		Review:    service.NewReviewService(repository.NewReviewRepository(db), jobs, bids, users, publisher, log),
		Media: service.NewMediaService(repository.NewMediaRepository(db), store, publisher,
			cfg.Security.MediaSecret, cfg.Marketplace.MaxUploadBytes, log),
		Users:  users,
		Events: publisher,
	}

	checks := map[string]HealthCheck{
		"database": db.Ping,
		"cache":    func(ctx context.Context) error { return cache.Ping(ctx).Err() },
	}
	return NewHandlerSetWithServices(log, cfg, services, checks)
}

func NewHandlerSetWithServices(log zerolog.Logger, cfg *config.AppConfig, services Services, checks map[string]HealthCheck) HandlerSet {
	return HandlerSet{log: log, cfg: cfg, services: services, checks: checks}
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authn := middleware.Auth(h.cfg.Security.JWTSecret, h.services.Users)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Register)
		auth.POST("/authenticate", h.Authenticate)
		auth.GET("/me", authn, h.Me)
	}

	jobs := v1.Group("/jobs")
	{
		jobs.GET("", h.ListJobs)
		jobs.GET("/:jobId", h.GetJob)
		jobs.GET("/:jobId/bids", h.ListBids)
		jobs.POST("", authn, middleware.RequireRoles(models.UserRoleCustomer), h.CreateJob)
		jobs.POST("/:jobId/bids", authn, middleware.RequireRoles(models.UserRoleProvider), h.PlaceBid)
		jobs.POST("/:jobId/bids/:bidId/accept", authn, middleware.RequireRoles(models.UserRoleCustomer), h.AcceptBid)
		jobs.POST("/:jobId/status", authn, h.UpdateJobStatus)
	}

	geoGroup := v1.Group("/geo")
	geoGroup.POST("/update", authn, h.UpdateLocation)
	geoGroup.GET("/nearby", h.NearbyProviders)

	community := v1.Group("/community")
	community.GET("/feed", h.Feed)
	community.POST("/stories", authn, h.PostStory)

	chat := v1.Group("/chat")
	chat.GET("/history/:jobId", h.ChatHistory)
	chat.POST("/send", authn, h.SendMessage)

	v1.POST("/reviews", authn, h.CreateReview)
	v1.POST("/media/upload", authn, h.UploadMedia)

	admin := v1.Group("/admin")
	admin.Use(authn, middleware.RequireRoles(models.UserRoleAdmin))
	admin.POST("/users/:userId/verify", h.VerifyUser)
	admin.POST("/providers/:userId/recompute", h.RecomputeFairness)
}
