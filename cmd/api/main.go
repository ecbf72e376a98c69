package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/safar/go-storefront/internal/api"
	"github.com/safar/go-storefront/internal/auth"
	"github.com/safar/go-storefront/internal/cache"
	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/config"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/media"
	"github.com/safar/go-storefront/internal/objectstore"
	"github.com/safar/go-storefront/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	logger := newLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	if cfg.Auth.JWTSecret == "" {
		log.Fatalf("AUTH_JWT_SECRET is required")
	}
	if cfg.Checkout.ChatRecipient == "" {
		logger.Warn("CHAT_RECIPIENT is empty; checkout links will not reach the shop")
	}

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	logger.Info("connected to database")

	var redisClient *redis.Client
	var cacheStore cache.Store
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("Parse REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Connect to redis: %v", err)
		}
		defer redisClient.Close()

		cacheStore = cache.NewRedisStore(redisClient)
		logger.Info("connected to redis")
	} else {
		cacheStore = cache.NewMemoryStore()
		logger.Info("REDIS_URL not set; using in-process list cache without checkout rate limiting")
	}

	buckets, err := objectstore.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Open object store: %v", err)
	}
	logger.Info("object store ready",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("blog_bucket", cfg.Storage.BlogBucket),
		slog.String("product_bucket", cfg.Storage.ProductBucket),
	)

	productRepo := store.NewProductRepository(db)
	blogRepo := store.NewBlogRepository(db)
	cartRepo := store.NewCartRepository(db)
	profileRepo := store.NewProfileRepository(db)
	orderRepo := store.NewOrderRepository(db)

	products := catalog.NewProductService(
		productRepo,
		media.NewUploader(buckets.ProductImages),
		cache.NewNamespace(cacheStore, "products", cfg.Redis.ListTTL, logger),
		logger,
	)
	blogs := catalog.NewBlogService(
		blogRepo,
		media.NewUploader(buckets.BlogMedia),
		cache.NewNamespace(cacheStore, "blogs", cfg.Redis.ListTTL, logger),
		logger,
	)
	checkoutService := checkout.NewService(cartRepo, profileRepo, orderRepo, cfg.Checkout, logger)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Redis:    redisClient,
		Verifier: auth.NewVerifier(cfg.Auth.JWTSecret),
		Products: products,
		Blogs:    blogs,
		Cart:     cartRepo,
		Profiles: profileRepo,
		Orders:   orderRepo,
		Checkout: checkoutService,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("server exited")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
