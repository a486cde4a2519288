package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"tourism-rewards-system/config"
	"tourism-rewards-system/handlers"
	"tourism-rewards-system/models"
	"tourism-rewards-system/services"
	"tourism-rewards-system/storage"
	"tourism-rewards-system/utils"
	"tourism-rewards-system/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	logger, err := utils.NewLogger(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	store := storage.NewGormStore(db)
	if err := store.AutoMigrate(); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Level table, quest catalog, and exchange rates are static config;
	// a malformed table is fatal here, never a request-time error.
	progression, err := services.NewProgressionEngine(models.DefaultLevelTable)
	if err != nil {
		logger.Fatal("invalid level table", zap.Error(err))
	}
	vouchers := services.NewVoucherService(store, logger)
	rewards, err := services.NewRewardsService(store, progression, vouchers,
		models.DefaultQuestCatalog, models.DefaultExchangeRates, logger)
	if err != nil {
		logger.Fatal("invalid rewards config", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName: "tourism-rewards-system",
	})
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-User-ID, X-User-Roles",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRewardsRoutes(app, rewards, logger, cfg.RateLimitPerMinute)

	sweep, err := rewards.StartExpirySweep()
	if err != nil {
		logger.Fatal("failed to start expiry sweep", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollLedgerAudit(ctx, rewards, logger, cfg.AuditInterval)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}()

	logger.Info("rewards engine running",
		zap.String("port", cfg.Port),
		zap.Strings("allowed_origins", cfg.AllowedOrigins),
		zap.Duration("audit_interval", cfg.AuditInterval))

	<-ctx.Done()
	logger.Info("shutting down")
	_ = sweep.Shutdown()
	_ = app.Shutdown()
}
