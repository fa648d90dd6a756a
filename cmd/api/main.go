package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront-api/internal/api/http"
	"github.com/spec-kit/storefront-api/internal/api/http/handlers"
	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/cache"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/persistence"
	"github.com/spec-kit/storefront-api/internal/repository"
	"github.com/spec-kit/storefront-api/internal/service"
	"github.com/spec-kit/storefront-api/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	settingsRepo := repository.NewSettingsRepository(pool)
	settings, err := settingsRepo.All(ctx)
	if err != nil {
		logger.Fatal("failed to load settings", zap.Error(err))
	}
	cfg.Apply(config.FromSettings(settings))

	secret, err := auth.EnsureSecret(ctx, cfg.Auth.JWTSecret, settingsRepo, logger)
	if err != nil {
		logger.Fatal("failed to initialise signing secret", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	wishlistRepo := repository.NewWishlistRepository(pool)

	tokens := auth.NewTokenManager(auth.TokenSettings{
		Secret:     secret,
		Issuer:     cfg.App.BaseURL,
		AccessTTL:  cfg.Auth.AccessTokenTTL(),
		RefreshTTL: cfg.Auth.RefreshTokenTTL(),
	}, userRepo)
	logger.Info("token manager ready", zap.String("issuer", tokens.Issuer()))

	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	var productCache service.ProductCache
	if catalogCache := cache.NewCatalogCache(redis.Client, cfg.Catalog.CacheTTL(), logger); catalogCache != nil {
		productCache = catalogCache
	}

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo:   userRepo,
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	productService := service.NewProductService(productRepo, productCache)
	wishlistService := service.NewWishlistService(service.WishlistDependencies{
		WishlistRepo: wishlistRepo,
		ProductRepo:  productRepo,
		Dispatcher:   dispatcher,
	})

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.CORS.AllowedOrigins)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		APIPrefix: cfg.App.APIPrefix,
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version,
			map[string]handlers.Pinger{"postgres": pg},
			map[string]handlers.Pinger{"redis": redis},
			metrics),
		Auth:          handlers.NewAuthHandler(authService),
		Products:      handlers.NewProductsHandler(productService, wishlistService, cfg.Catalog.DefaultPerPage, cfg.Catalog.MaxPerPage),
		Wishlist:      handlers.NewWishlistHandler(wishlistService, cfg.Catalog.DefaultPerPage, cfg.Catalog.MaxPerPage),
		Authenticator: auth.NewAuthenticator(tokens),
		LoginLimiter:  httptransport.NewLoginLimiter(cfg.RateLimit.LoginPerMinute),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
