package routes

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/infra/config"
	"github.com/hectoraparici0/cyberaegis/internal/infra/security"
	"github.com/hectoraparici0/cyberaegis/internal/transport/http/handlers"
	"github.com/hectoraparici0/cyberaegis/internal/transport/http/middleware"
	"github.com/hectoraparici0/cyberaegis/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Access  *usecase.AccessService
	Monitor *usecase.MonitorService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	HTTPMetrics *middleware.HTTPMetrics
	Services    ServiceSet
	Bearer      *security.BearerIssuer
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))
	if deps.HTTPMetrics != nil {
		r.Use(deps.HTTPMetrics.Handler())
	}

	healthOptions := make([]handlers.HealthOption, 0, 2)
	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}
	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireSession := middleware.RequireSession(deps.Bearer, deps.Services.Access)

	api := r.Group("/api/v1")
	{
		accessHandler := handlers.NewAccessHandler(deps.Services.Access)

		accessGroup := api.Group("/access")
		grantHandlers := make([]gin.HandlerFunc, 0, 2)
		if deps.RateLimiter != nil {
			grantHandlers = append(grantHandlers, deps.RateLimiter.RateLimit(middleware.RateLimitRule{
				Name:   "access_grant",
				Limit:  deps.Config.RateLimit.GrantMaxAttempts,
				Window: deps.Config.RateLimit.WindowDuration,
			}))
		}
		grantHandlers = append(grantHandlers, accessHandler.Grant)
		accessGroup.POST("/grant", grantHandlers...)
		accessGroup.POST("/revoke", requireSession, accessHandler.Revoke)

		alertsHandler := handlers.NewAlertsHandler(deps.Services.Monitor)

		alertsGroup := api.Group("/alerts", requireSession)
		alertsGroup.GET("", alertsHandler.Query)
		alertsGroup.POST("/:id/ack", alertsHandler.Acknowledge)
		alertsGroup.POST("/rules",
			middleware.RequireLevel(deps.Services.Access, domain.LevelBusiness),
			alertsHandler.AddRule)

		metricsHandler := handlers.NewMetricsHandler(deps.Services.Monitor)

		// Prometheus exposition lives at the root /metrics; this group is
		// the domain metric API.
		metricsGroup := api.Group("/metrics", requireSession)
		metricsGroup.POST("", metricsHandler.Record)
		metricsGroup.GET("/:name", metricsHandler.Range)
	}

	return r
}
