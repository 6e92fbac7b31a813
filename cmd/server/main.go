package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alcyxob/coaching-api/internal/api"
	"alcyxob/coaching-api/internal/cache"
	"alcyxob/coaching-api/internal/config"
	"alcyxob/coaching-api/internal/logging"
	"alcyxob/coaching-api/internal/mailer"
	"alcyxob/coaching-api/internal/metrics"
	"alcyxob/coaching-api/internal/repository/mongo"
	"alcyxob/coaching-api/internal/service"
	"alcyxob/coaching-api/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// @title Coaching API
// @version 1.0
// @description API for coaches and athletes: training plans, feedback, templates and calendar.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("could not load config: %s", err)
	}

	logCloser := logging.Setup(logging.LoggerSetupParams{
		LogFileName:   cfg.Log.File,
		LogToStdout:   cfg.Log.Stdout,
		LogLevel:      cfg.Log.Level,
		LogFormatJSON: cfg.Log.JSON,
	})
	log.Infoln("starting coaching api ...")

	if cfg.JWT.Secret == "" {
		log.Fatalln("jwt.secret (JWT_SECRET) must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- Database ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("could not connect to mongo: %s", err)
	}
	appDB := dbClient.Database(cfg.Database.Name)
	log.Infof("connected to mongo database %s", cfg.Database.Name)

	go func() {
		indexCtx, indexCancel := context.WithTimeout(ctx, time.Minute)
		defer indexCancel()
		mongo.EnsureIndexes(indexCtx, appDB)
	}()

	// --- Storage ---
	var fileStorage storage.FileStorage
	if cfg.S3.Endpoint != "" || cfg.S3.AccessKeyID != "" {
		fileStorage, err = storage.NewS3Storage(ctx, cfg.S3)
		if err != nil {
			log.Fatalf("failed to initialize s3 storage: %s", err)
		}
	} else {
		log.Warnln("no object store configured, media is kept in memory")
		fileStorage = storage.NewMemoryStorage()
	}

	// --- Metrics ---
	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsManager := metrics.NewManager("coaching", "api", promRegistry)

	// --- Redis rate limiting ---
	var rateLimiter api.RequestRateLimiter
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Errorf("failed to ping redis: %s", err)
		}
		rateLimiter = redis_rate.NewLimiter(rdb)
	} else {
		log.Warnln("redis disabled, auth routes are not rate limited")
	}

	// --- Repositories & services ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoTrainingPlanRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	uploadRepo := mongo.NewMongoUploadRepository(appDB)

	accountMailer, err := mailer.New(cfg.Mail)
	if err != nil {
		log.Fatalf("failed to configure mailer: %s", err)
	}

	readCache := cache.New(cfg.Cache.SizeMB, cfg.Cache.TTL)
	templateService := service.NewTemplateService(templateRepo, planRepo, readCache)
	planService := service.NewTrainingPlanService(planRepo, userRepo, uploadRepo, templateService, fileStorage, cfg.S3.URLExpiry)
	services := api.Services{
		Auth:      service.NewAuthService(userRepo, accountMailer, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.Server.FrontendURL),
		Users:     service.NewUserService(userRepo, uploadRepo, fileStorage, metricsManager, cfg.S3.URLExpiry),
		Plans:     planService,
		Feedback:  service.NewFeedbackService(planRepo, uploadRepo, planService, fileStorage, metricsManager),
		Templates: templateService,
		Calendar:  service.NewCalendarService(planRepo, userRepo),
		Dashboard: service.NewDashboardService(planRepo, userRepo),
	}

	// --- HTTP ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	api.SetupRoutes(router, api.RouterConfig{
		JWTSecret:     cfg.JWT.Secret,
		RateLimiter:   rateLimiter,
		AuthPerMinute: cfg.Redis.AuthPerMinute,
		Metrics:       metricsManager,
		Gatherer:      promRegistry,
	}, services)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.WithCORS(router, cfg.Server.CORSOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Infof("listening on %s", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen and serve: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Infof("received %s, shutting down ...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	var shutdownErr error
	shutdownErr = multierr.Append(shutdownErr, server.Shutdown(shutdownCtx))
	if rdb != nil {
		shutdownErr = multierr.Append(shutdownErr, rdb.Close())
	}
	shutdownErr = multierr.Append(shutdownErr, mongo.DisconnectDB(dbClient))
	if shutdownErr != nil {
		log.Errorf("unclean shutdown: %s", shutdownErr)
	}

	log.Infoln("server stopped")
	_ = logCloser.Close()
}
