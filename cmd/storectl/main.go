package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/maillots/storefront/internal/application/identity"
	"github.com/maillots/storefront/internal/application/notification"
	"github.com/maillots/storefront/internal/application/reconciliation"
	"github.com/maillots/storefront/internal/infrastructure/auth"
	"github.com/maillots/storefront/internal/infrastructure/cache"
	"github.com/maillots/storefront/internal/infrastructure/config"
	"github.com/maillots/storefront/internal/infrastructure/logger"
	"github.com/maillots/storefront/internal/infrastructure/mail"
	"github.com/maillots/storefront/internal/infrastructure/persistence"
	"github.com/maillots/storefront/internal/infrastructure/storage"
	"github.com/maillots/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	log, err := logger.New(logger.CommandConfig(cfg.Log.Level))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = log.Sync()
	}()

	// usage needs no database
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		newCLI(nil, nil, os.Stdout, 0, log).usage(os.Stdout)
		return 0
	}

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry, log)
	if err != nil {
		log.Error("Failed to initialize telemetry", zap.Error(err))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = tel.Shutdown(shutdownCtx)
	}()
	log = tel.Logger(log)

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database,
		logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
			logger.WithSlowThreshold(time.Duration(cfg.Database.SlowQueryMs)*time.Millisecond)))
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := tel.InstrumentDB(db.DB, cfg.Database.DBName); err != nil {
		log.Error("Failed to register database tracing", zap.Error(err))
		return 1
	}
	if cfg.Database.Driver == "sqlite" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Error("Failed to create sqlite schema", zap.Error(err))
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancelStart := context.WithTimeout(ctx, 10*time.Second)
	backends := cache.NewBackends(startCtx, cfg, log)
	cancelStart()
	defer func() {
		_ = backends.Close()
	}()

	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)

	reconciler := reconciliation.NewService(
		orderRepo,
		persistence.NewGormPaymentRepository(db.DB),
		persistence.NewGormPaymentLogRepository(db.DB),
		cartRepo,
		persistence.NewGormCustomizationRepository(db.DB),
		persistence.NewGormTransactionScope(db.DB),
		log.Named("reconciliation"),
	)
	reconciler.SetLocker(backends.Locker, cfg.Reconciliation.LockTTL)
	reconciler.SetMetrics(tel.Metrics)

	emailService := notification.NewEmailService(
		cfg.Email,
		persistence.NewGormEmailTemplateRepository(db.DB),
		persistence.NewGormEmailLogRepository(db.DB),
		userRepo,
		orderRepo,
		cartRepo,
		mail.NewSMTPSender(cfg.Email, log.Named("smtp")),
		log.Named("email"),
	)
	if backends.Quota != nil {
		emailService.SetRateLimiter(backends.Quota)
	}
	emailService.SetMetrics(tel.Metrics)

	c := newCLI(reconciler, emailService, os.Stdout, cfg.Email.CartReminderDelayHours, log)
	c.accounts = identityapp.NewAuthService(userRepo, auth.NewJWTService(cfg.JWT), nil, log.Named("auth"))
	c.openBucket = func(ctx context.Context, bucket string) (storage.ObjectStore, error) {
		store, err := storage.NewS3Store(ctx, cfg.Storage, bucket, storage.WithLogger(log.Named("storage")))
		if err != nil {
			return nil, err
		}
		if err := store.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
	err = c.Run(ctx, args)
	switch {
	case err == nil, errors.Is(err, errHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintln(os.Stderr, err)
		c.usage(os.Stderr)
		return 2
	default:
		log.Error("Command failed", zap.String("command", args[0]), zap.Error(err))
		return 1
	}
}
