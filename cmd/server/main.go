package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"roadside-rescue/internal/config"
	"roadside-rescue/internal/handlers"
	"roadside-rescue/internal/middleware"
	"roadside-rescue/internal/repositories/interfaces"
	"roadside-rescue/internal/repositories/memory"
	mongorepo "roadside-rescue/internal/repositories/mongodb"
	"roadside-rescue/internal/services"
	"roadside-rescue/pkg/cache"
	"roadside-rescue/pkg/database"
	"roadside-rescue/pkg/events"
	"roadside-rescue/pkg/logger"
	"roadside-rescue/pkg/maps"
	"roadside-rescue/pkg/sms"
	"roadside-rescue/pkg/websocket"
	"roadside-rescue/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithError(err).Fatal("Server exited")
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	pingers := map[string]handlers.Pinger{}

	userRepo, requestRepo, db, err := openRepositories(ctx, cfg, log)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		pingers["mongodb"] = db
	}

	geo, limiter, rc, err := openCache(cfg)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
		pingers["redis"] = rc
	}

	smsProvider, err := newSMSProvider(ctx, cfg.SMS, log)
	if err != nil {
		return err
	}

	var geocoder maps.Geocoder = maps.NoopGeocoder{}
	if cfg.Maps.GoogleMaps.APIKey != "" {
		provider, err := maps.NewGoogleMapsProvider(cfg.Maps.GoogleMaps.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create geocoder: %w", err)
		}
		geocoder = provider
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.Events.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic, cfg.Events.WriteTimeout)
		log.WithField("brokers", cfg.Events.KafkaBrokers).Info("Publishing lifecycle events to Kafka")
	}
	defer publisher.Close()

	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	notifier := services.NewNotificationService(hub, publisher, smsProvider, userRepo, cfg.SMS.DefaultCountryCode, log)
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, log)
	requestService := services.NewRequestService(requestRepo, userRepo, geo, geocoder, notifier, cfg.Dispatch.NearbyRadiusKM, log)
	mechanicService := services.NewMechanicService(userRepo, log)

	if err := requestService.RebuildGeoIndex(ctx); err != nil {
		log.WithError(err).Warn("Failed to rebuild geo index")
	}

	deps := &routes.Dependencies{
		AuthService:     authService,
		AuthHandler:     handlers.NewAuthHandler(authService, log),
		RequestHandler:  handlers.NewRequestHandler(requestService, log),
		MechanicHandler: handlers.NewMechanicHandler(mechanicService, requestService, log),
		HealthHandler:   handlers.NewHealthHandler(cfg.App.Version, pingers),
		RegisterLimiter: limiter,
		Logger:          log,
	}
	if cfg.WebSocket.Enabled {
		deps.WebSocketHandler = websocket.NewHandler(hub, websocket.HandlerConfig{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			PingInterval:    cfg.WebSocket.PingInterval,
			PongTimeout:     cfg.WebSocket.PongTimeout,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		}, log)
	}

	router, err := newRouter(cfg, log, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.App.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newRouter(cfg *config.Config, log *logger.Logger, deps *routes.Dependencies) (*gin.Engine, error) {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))

	routes.Setup(router, deps)
	return router, nil
}

// openRepositories connects to MongoDB when a URI is configured and falls
// back to in-memory repositories otherwise. The returned handle is nil in
// that case.
func openRepositories(ctx context.Context, cfg *config.Config, log *logger.Logger) (interfaces.UserRepository, interfaces.HelpRequestRepository, *database.MongoDB, error) {
	if !cfg.Database.Enabled() {
		log.Warn("MONGODB_URI not set, keeping state in memory")
		return memory.NewUserRepository(), memory.NewHelpRequestRepository(), nil, nil
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, log).Up(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return mongorepo.NewUserRepository(db.Database), mongorepo.NewHelpRequestRepository(db.Database), db, nil
}

// openCache returns the Redis-backed geo index and register limiter, or
// in-memory versions when REDIS_HOST is empty.
func openCache(cfg *config.Config) (cache.GeoIndex, cache.Limiter, *cache.RedisCache, error) {
	if !cfg.Redis.Enabled() {
		return cache.NewMemoryGeo(),
			cache.NewMemoryLimiter(cfg.Security.RegisterRateLimit, cfg.Security.RegisterRateWindow),
			nil, nil
	}

	rc, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	geo := cache.NewRedisGeo(rc, cfg.Dispatch.GeoKey)
	limiter := cache.NewRedisLimiter(rc, "ratelimit:register", cfg.Security.RegisterRateLimit, cfg.Security.RegisterRateWindow)
	return geo, limiter, rc, nil
}
func newSMSProvider(ctx context.Context, cfg *config.SMSConfig, log *logger.Logger) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "twilio":
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	case "sns":
		provider, err := sms.NewAWSSNSProvider(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create SNS provider: %w", err)
		}
		return provider, nil
	default:
		return sms.NewLogProvider(log), nil
	}
}
