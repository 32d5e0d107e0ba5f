package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"coupon-service/internal/cache"
	"coupon-service/internal/plan"
	"coupon-service/internal/repository"
	"coupon-service/internal/service"
	"coupon-service/pkg/config"
	"coupon-service/pkg/database"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	mongoDB, err := database.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		logger.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := mongoDB.Disconnect(context.Background()); err != nil {
			logger.Error("error disconnecting from mongodb", "error", err)
		}
	}()
	logger.Info("connected to mongodb", "database", cfg.Mongo.Database)

	couponRepo := repository.NewCouponRepository(mongoDB.Database)

	var userRepo repository.UserRepository = repository.NewUserRepository(mongoDB.Database)
	if cfg.Redis.URL != "" {
		client, err := newRedisClient(ctx, cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		userRepo = cache.NewPlanCache(client, userRepo, cfg.Redis.PlanTTL, logger)
		logger.Info("plan cache enabled", "ttl", cfg.Redis.PlanTTL)
	}

	registry := plan.NewRegistry(map[plan.Plan]int64{
		plan.Free:     cfg.Plans.Free,
		plan.Servicio: cfg.Plans.Servicio,
		plan.Tienda:   cfg.Plans.Tienda,
	})

	svc := service.NewCouponService(couponRepo, userRepo, registry,
		service.WithMaxRedeemRetries(cfg.Redemption.MaxRetries))

	router := setupRouter(svc, logger)

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func newRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

func setupRouter(svc *service.CouponService, logger *slog.Logger) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(logger), identity())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		api.POST("/sites/:siteId/coupons", createCouponHandler(svc))
		api.GET("/sites/:siteId/coupons", listCouponsHandler(svc))
		api.GET("/sites/:siteId/coupons/quota", quotaHandler(svc))
		api.POST("/sites/:siteId/coupons/validate", validateCouponHandler(svc))
		api.POST("/sites/:siteId/coupons/apply", applyCouponHandler(svc))
		api.PATCH("/coupons/:id", updateCouponHandler(svc))
		api.DELETE("/coupons/:id", deleteCouponHandler(svc))
	}

	return router
}
