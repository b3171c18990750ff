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

	httptransport "github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/http"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/api/http/handlers"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/auth"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/config"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/events"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/observability"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/persistence"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/service"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/storage"
	"github.com/tsai-yu-xuan/vuetify-shop-back/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
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

	rdb := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer rdb.Close()

	st, err := buildStores(cfg.Auth, pg, rdb, logger)
	if err != nil {
		logger.Fatal("failed to build stores", zap.Error(err))
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(logger, cfg.Notification)
	notifier := worker.StartNotificationWorker(ctx, dispatcher, notifications, logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	verifier, err := auth.NewVerifier(st.users, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to init verifier", zap.Error(err))
	}
	gate := auth.NewGate(auth.GateDependencies{
		Verifier:   verifier,
		Registry:   auth.NewRegistry(tokens, st.tokens, cfg.Auth.MaxTokensPerUser),
		Tokens:     tokens,
		Users:      st.users,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})

	uploader, err := storage.New(ctx, cfg.Upload, logger)
	if err != nil {
		logger.Fatal("failed to init uploader", zap.Error(err))
	}

	authService := service.NewAuthService(cfg.Auth, st.users, gate)
	cartService := service.NewCartService(st.users, st.products)
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		Products: st.products,
		Services: st.services,
		Worships: st.worships,
	})
	orderService := service.NewOrderService(service.OrderDependencies{
		Users:      st.users,
		Orders:     st.orders,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxBytes) + 64*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    rdb,
		}),
		Users:   handlers.NewUsersHandler(authService, cartService),
		Orders:  handlers.NewOrdersHandler(orderService),
		Catalog: handlers.NewCatalogHandler(catalogService, uploader),
		Gate:    gate,
		Metrics: metrics,
		Auth:    cfg.Auth,
		Upload:  cfg.Upload,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	cancel()
	notifier.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
