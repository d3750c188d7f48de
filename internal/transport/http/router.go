package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"
	"gorm.io/gorm"

	"github.com/csvflow/backend/internal/config"
	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/core/services"
	"github.com/csvflow/backend/internal/infrastructure/db"
	"github.com/csvflow/backend/internal/infrastructure/logger"
	"github.com/csvflow/backend/internal/infrastructure/queue"
	"github.com/csvflow/backend/internal/infrastructure/storage"
	"github.com/csvflow/backend/internal/transport/http/handlers"
	httpmw "github.com/csvflow/backend/internal/transport/http/middleware"
)

type RouterConfig struct {
	DB     *gorm.DB
	Logger *logger.Logger
	Config *config.Config
}

// SetupRoutes wires repositories, services, the worker pool and all
// HTTP routes. The returned pool is started and stopped by the caller.
func SetupRoutes(app *fiber.App, cfg RouterConfig) *queue.Pool {
	// Repositories
	userRepo := db.NewUserRepository(cfg.DB, cfg.Logger)
	datasetRepo := db.NewDatasetRepository(cfg.DB, cfg.Logger)
	taskRepo := db.NewTaskRepository(cfg.DB, cfg.Logger)

	// Dataset store
	var store ports.DatasetStore
	switch cfg.Config.Storage.Backend {
	case "sftp":
		store = storage.NewSFTPStore(cfg.Config.Storage.SFTP, cfg.Logger)
	default:
		store = storage.NewLocalStore(afero.NewOsFs(), cfg.Config.Storage.BaseDir, cfg.Logger)
	}

	// Services
	ledgerService := services.NewLedgerService(services.LedgerServiceConfig{
		Tasks:    taskRepo,
		Datasets: datasetRepo,
		Logger:   cfg.Logger,
	})

	runner := services.NewExecutorService(services.ExecutorServiceConfig{
		Ledger:   ledgerService,
		Datasets: datasetRepo,
		Store:    store,
		Logger:   cfg.Logger,
	})

	pool := queue.NewPool(queue.PoolConfig{
		Workers:   cfg.Config.Worker.Count,
		QueueSize: cfg.Config.Worker.QueueSize,
		Runner:    runner,
		Logger:    cfg.Logger,
	})

	submitService := services.NewSubmitService(services.SubmitServiceConfig{
		Ledger: ledgerService,
		Queue:  pool,
		Logger: cfg.Logger,
	})

	queryService := services.NewQueryService(services.QueryServiceConfig{
		Ledger: ledgerService,
		Store:  store,
		Logger: cfg.Logger,
	})

	authService := services.NewAuthService(services.AuthServiceConfig{
		Users:      userRepo,
		Logger:     cfg.Logger,
		JWTSecret:  cfg.Config.Auth.JWTSecret,
		AccessTTL:  cfg.Config.Auth.AccessTTL,
		RefreshTTL: cfg.Config.Auth.RefreshTTL,
	})

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, cfg.Logger)
	datasetHandler := handlers.NewDatasetHandler(datasetRepo, store, cfg.Logger)
	taskHandler := handlers.NewTaskHandler(submitService, queryService, taskRepo, cfg.Logger)
	watchHandler := handlers.NewWatchHandler(ledgerService, authService, cfg.Logger)

	// Static file access to stored blobs (local backend only).
	if cfg.Config.Storage.Backend != "sftp" {
		app.Static("/files", cfg.Config.Storage.BaseDir)
	}

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("", httpmw.JWTAuth(authService))
	protected.Post("/datasets", datasetHandler.Upload)
	protected.Get("/datasets", datasetHandler.List)
	protected.Post("/tasks", taskHandler.Submit)
	protected.Get("/tasks", taskHandler.List)
	protected.Get("/tasks/:id", taskHandler.Status)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws/tasks/:id", websocket.New(watchHandler.Handle))

	return pool
}
