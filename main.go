package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"idle-miner/config"
	"idle-miner/handlers"
	"idle-miner/middleware"
	"idle-miner/models"
	"idle-miner/services"
	"idle-miner/utils"
	"idle-miner/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	app := fiber.New()

	// 🔐❗ GLOBAL: Only Gateway requests allowed, no exceptions
	app.Use(middleware.GatewayAuthMiddleware(cfg.GameServiceToken))

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	clock := clockwork.NewRealClock()

	var gateway services.RewardGateway = services.NewLedgerGateway()
	if cfg.TransferServiceURL != "" {
		gateway = services.NewTransferClient(cfg.TransferServiceURL, cfg.GameServiceToken)
		log.Printf("✅ Reward transfers via %s", cfg.TransferServiceURL)
	}

	gameService := services.NewGameService(db, cfg.GameAdminID)
	playerService := services.NewPlayerService(db, gateway, clock)
	tokenService := services.NewTokenAccountService(db, clock)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Bootstrap != nil {
		bootstrap(ctx, gameService, cfg)
	}

	var jobs []workers.Job
	if cfg.WalletSyncURL != "" {
		sync := workers.NewTokenAccountSync(db, cfg.WalletSyncURL, cfg.GameServiceToken, clock)
		jobs = append(jobs, workers.Job{
			Name:           "token-account-sync",
			Interval:       cfg.WalletSyncInterval,
			RunImmediately: true,
			Run:            sync.Run,
		})
	}
	if cfg.R2.Enabled() {
		uploader, err := utils.NewR2Uploader(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		archiver := workers.NewPayoutArchiver(db, uploader, cfg.PayoutArchiveInterval, clock)
		jobs = append(jobs, workers.Job{
			Name:     "payout-archive",
			Interval: cfg.PayoutArchiveInterval,
			Run:      archiver.Run,
		})
	}
	if len(jobs) > 0 {
		if _, err := workers.StartScheduler(ctx, jobs...); err != nil {
			log.Fatal("failed to start scheduler:", err)
		}
	}

	handlers.SetupGameRoutes(app, gameService, tokenService)
	handlers.SetupPlayerRoutes(app, playerService, tokenService)

	go func() {
		if err := app.Listen(cfg.ListenAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on %s", cfg.ListenAddr)
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}

// bootstrap applies the env-supplied game parameters once.
func bootstrap(ctx context.Context, gameService *services.GameService, cfg *config.Config) {
	b := cfg.Bootstrap
	_, err := gameService.Initialize(ctx, cfg.GameAdminID, services.InitializeParams{
		EntryFee:           b.EntryFee,
		BaseRate:           b.BaseRate,
		IntervalSeconds:    b.IntervalSeconds,
		MilestoneScore:     b.MilestoneScore,
		RewardPerMilestone: b.RewardPerMilestone,
		RewardMint:         b.RewardMint,
		RewardVault:        b.RewardVault,
	})
	switch {
	case errors.Is(err, services.ErrAlreadyInitialized):
		log.Println("ℹ️  [GAME] Config already initialized, GAME_BOOTSTRAP ignored")
	case err != nil:
		log.Fatal("failed to bootstrap game config:", err)
	}
}
