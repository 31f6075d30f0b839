package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"protonshop/internal/config"
	"protonshop/internal/handler"
	"protonshop/internal/localstore"
	"protonshop/internal/logger"
	"protonshop/internal/repository"
	"protonshop/internal/repository/memory"
	"protonshop/internal/service"
	"protonshop/internal/shop"
	"protonshop/internal/storage"
	"protonshop/internal/ws"
	"protonshop/pkg/database"
	"protonshop/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Config + logging
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return err
	}
	slog.SetDefault(log)
	jwt.SetSecret(cfg.JWTSecret)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Store backend
	repos, err := openStore(cfg, log)
	if err != nil {
		return err
	}

	carts, err := localstore.Open(cfg.LocalStorePath)
	if err != nil {
		return err
	}
	defer carts.Close()

	media, err := storage.Open(ctx, cfg.MediaBucketURL, cfg.MediaPublicBaseURL)
	if err != nil {
		return err
	}
	defer media.Close()

	// 3. WebSocket hub
	wsHub := ws.NewHub(log)
	go wsHub.Run(ctx)

	// 4. Dependency Injection (Wiring Layers)
	authService := service.NewAuthService(repos.Users, wsHub, log)
	if err := authService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Warn("admin account not seeded", slog.String("error", err.Error()))
	}

	invService := service.NewInventoryService(repos.Products, repos.Categories, media, wsHub, log)
	importService := service.NewImportService(invService, wsHub, log)
	catalogService := service.NewCatalogService(repos.Products, repos.Categories, repos.Visits, log)
	cartService := service.NewCartService(carts, repos.Products)
	orderService := service.NewOrderService(repos.Orders, wsHub, log)
	profileService := service.NewProfileService(repos.Profiles)
	dashService := service.NewDashboardService(repos.Orders, repos.Products, repos.Visits, log,
		shop.WithLocation(cfg.Location()))

	poller := service.NewDashboardPoller(dashService, wsHub, cfg.DashboardPollInterval, log)
	poller.Start(ctx)
	defer poller.Stop()

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "ProtonShop API v1.0",
		BodyLimit: 50 * 1024 * 1024,
	})
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + handler.CartHeader,
	}))

	// 6. Routes
	handler.RegisterRoutes(app, handler.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Store:     handler.NewStoreHandler(catalogService),
		Cart:      handler.NewCartHandler(cartService),
		Orders:    handler.NewOrderHandler(orderService, cartService),
		Profiles:  handler.NewProfileHandler(profileService),
		Inventory: handler.NewInventoryHandler(invService, importService),
		Dashboard: handler.NewDashboardHandler(dashService, poller),
	}, authService)

	if media.Local() {
		app.Get("/media/*", handler.MediaHandler(media))
	}
	app.Use("/ws", handler.WSUpgrade(authService))
	app.Get("/ws", handler.WSHandler(wsHub))

	// 7. Graceful Shutdown
	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		return errors.Wrap(err, "server forced to shutdown")
	}
	log.Info("server exited")
	return nil
}

func openStore(cfg *config.Config, log *slog.Logger) (repository.Repositories, error) {
	if cfg.StoreDriver == config.DriverMemory {
		log.Warn("using in-memory store; data is lost on restart")
		return memory.New().Repositories(), nil
	}

	db, err := database.ConnectDB(database.Options{
		DSN:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    cfg.LogLevel == "debug",
	}, log)
	if err != nil {
		return repository.Repositories{}, err
	}
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return repository.Repositories{}, err
	}
	return repository.NewGormRepositories(db), nil
}
