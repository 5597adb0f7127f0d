package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hectoraparici0/cyberaegis/internal/core/domain"
	"github.com/hectoraparici0/cyberaegis/internal/core/port"
	"github.com/hectoraparici0/cyberaegis/internal/infra/collectors"
	"github.com/hectoraparici0/cyberaegis/internal/infra/config"
	"github.com/hectoraparici0/cyberaegis/internal/infra/database"
	"github.com/hectoraparici0/cyberaegis/internal/infra/directory"
	kafkainfra "github.com/hectoraparici0/cyberaegis/internal/infra/kafka"
	"github.com/hectoraparici0/cyberaegis/internal/infra/logger"
	redisinfra "github.com/hectoraparici0/cyberaegis/internal/infra/redis"
	"github.com/hectoraparici0/cyberaegis/internal/infra/riskcontext"
	"github.com/hectoraparici0/cyberaegis/internal/infra/security"
	"github.com/hectoraparici0/cyberaegis/internal/infra/telemetry"
	"github.com/hectoraparici0/cyberaegis/internal/repository/memory"
	postgresrepo "github.com/hectoraparici0/cyberaegis/internal/repository/postgres"
	redisrepo "github.com/hectoraparici0/cyberaegis/internal/repository/redis"
	"github.com/hectoraparici0/cyberaegis/internal/transport/http/middleware"
	"github.com/hectoraparici0/cyberaegis/internal/transport/http/routes"
	"github.com/hectoraparici0/cyberaegis/internal/usecase"
)

// Application wires the stores, services, scheduler, and HTTP surface
// together and owns their shutdown order.
type Application struct {
	cfg       *config.AppConfig
	engine    *gin.Engine
	logger    *zap.Logger
	pool      *pgxpool.Pool
	redis     *redisinfra.Client
	scheduler *usecase.Scheduler

	// Directory is exposed so deployments can provision subjects at boot.
	Directory *directory.Directory
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	coreMetrics, err := telemetry.NewCoreMetrics(cfg.Telemetry.Namespace, nil)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{
		Namespace: cfg.Telemetry.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	// The durable audit trail is optional: no DSN means in-memory only.
	var pool *pgxpool.Pool
	var trail port.AuditTrail
	if cfg.Postgres.DSN != "" {
		pool, err = database.NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		trail = postgresrepo.NewAuditTrailRepository(pool)
	} else {
		log.Info("postgres dsn not configured, audit trail disabled")
	}

	var redisClient *redisinfra.Client
	var rateLimiter *middleware.RateLimiter
	if cfg.Redis.Host != "" {
		redisClient, err = redisinfra.NewClient(cfg.Redis, log)
		if err != nil {
			log.Warn("failed to init redis, rate limiting disabled", zap.Error(err))
		} else {
			rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
				KeyPrefix: "aegis:rate-limit",
				TTL:       cfg.RateLimit.WindowDuration * 2,
			})
			rateLimiter = middleware.NewRateLimiter(rateLimitStore, log)
		}
	}

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	profiles, err := usecase.NewProfileRegistry()
	if err != nil {
		return nil, fmt.Errorf("init profile registry: %w", err)
	}

	var masterKeys port.MasterKeyVerifier
	if cfg.Auth.MasterKeyDigest != "" {
		masterKeys, err = security.NewMasterKeyVerifier(cfg.Auth.MasterKeyDigest)
		if err != nil {
			return nil, fmt.Errorf("init master key verifier: %w", err)
		}
	} else {
		log.Warn("master key digest not configured, master grants will be denied")
		masterKeys = security.DenyAllMasterKeys{}
	}

	tokenSecret := cfg.Auth.TokenSecret
	if tokenSecret == "" {
		// Ephemeral secret keeps auth working in development; tokens do not
		// survive a restart.
		tokenSecret, err = security.GenerateSecureToken(32)
		if err != nil {
			return nil, fmt.Errorf("generate token secret: %w", err)
		}
		log.Warn("bearer token secret not configured, using ephemeral secret")
	}
	bearer, err := security.NewBearerIssuer(tokenSecret, cfg.App.Name, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("init bearer issuer: %w", err)
	}

	sessionStore := memory.NewSessionStore()
	metricStore := memory.NewMetricStore(cfg.Monitor.RetentionWindow)
	alertStore := memory.NewAlertStore()
	activityLog := memory.NewActivityLog(cfg.Risk.ActivityWindow)

	subjects := directory.New(security.DefaultPasswordValidator())

	accessService := usecase.NewAccessService(usecase.AccessServiceDeps{
		Sessions:      sessionStore,
		Profiles:      profiles,
		Authenticator: subjects,
		MasterKeys:    masterKeys,
		Publisher:     eventPublisher,
		Trail:         trail,
		Activity:      activityLog,
		Bearer:        bearer,
		Metrics:       coreMetrics,
		SessionTTL:    cfg.Session.TTL,
		AuthTimeout:   cfg.Auth.Timeout,
	})

	monitorService := usecase.NewMonitorService(
		metricStore,
		alertStore,
		[]port.MetricCollector{collectors.NewRuntimeCollector()},
		eventPublisher,
		coreMetrics,
	)

	riskService := usecase.NewRiskService(usecase.RiskServiceDeps{
		Sessions:  sessionStore,
		Activity:  activityLog,
		Contexts:  riskcontext.NewStaticProvider(domain.SessionContext{}),
		Alerts:    alertStore,
		Access:    accessService,
		Publisher: eventPublisher,
		Metrics:   coreMetrics,
		Weights:   cfg.Risk.Weights,
		Window:    cfg.Risk.ActivityWindow,
		Threshold: cfg.Risk.EscalationThreshold,
	})

	scheduler := usecase.NewScheduler(monitorService, riskService, sessionStore, coreMetrics,
		usecase.SchedulerIntervals{
			Collect:  cfg.Monitor.CollectInterval,
			Evaluate: cfg.Monitor.EvaluateInterval,
			Sweep:    cfg.Session.SweepInterval,
			Scan:     cfg.Risk.ScanInterval,
		}, log)

	deps := routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		HTTPMetrics: httpMetrics,
		Bearer:      bearer,
		Services: routes.ServiceSet{
			Access:  accessService,
			Monitor: monitorService,
		},
	}
	if pool != nil {
		deps.Database = pool
	}
	if redisClient != nil {
		deps.Cache = redisClient
	}

	engine := routes.Register(deps)

	return &Application{
		cfg:       cfg,
		engine:    engine,
		logger:    log,
		pool:      pool,
		redis:     redisClient,
		scheduler: scheduler,
		Directory: subjects,
	}, nil
}

// Run starts the periodic tasks and the HTTP server, blocking until the
// context is cancelled or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	a.scheduler.Start(schedulerCtx)
	defer a.scheduler.Wait()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting access control core",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		stopScheduler()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}
