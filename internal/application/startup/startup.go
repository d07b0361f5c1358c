// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/owlcart/owlcart-go/internal/application/container"
	"github.com/owlcart/owlcart-go/internal/infrastructure/authority/local"
	"github.com/owlcart/owlcart-go/internal/infrastructure/authority/remote"
	"github.com/owlcart/owlcart-go/internal/infrastructure/caching/manager"
	"github.com/owlcart/owlcart-go/internal/infrastructure/email"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/logging"
	"github.com/owlcart/owlcart-go/internal/infrastructure/observability/performance"
	"github.com/owlcart/owlcart-go/internal/infrastructure/persistence/database"
	"github.com/owlcart/owlcart-go/internal/infrastructure/security"
	"github.com/owlcart/owlcart-go/internal/presentation/http/server"
	"github.com/owlcart/owlcart-go/pkg/config"
)

const idleCartMaxAge = 6 * time.Hour
const idleCartSweepInterval = 30 * time.Minute

// Initialize performs the complete startup sequence
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	// Step 1: Channeled logging
	logger, err := logging.NewChanneledLogger(logging.DefaultLoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger.Startup().Info("OwlCart starting")

	if err := ensureTokenSecrets(logger); err != nil {
		return err
	}

	// Step 2: Performance tracking and caches
	perfTracker := performance.NewTracker(1024)
	cacheManager := manager.NewManager(logger)

	// Step 3: Authorities (local SQL-backed or remote HTTP)
	auths, db, err := buildAuthorities(logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}
	logger.Startup().Info("Authorities initialized", "mode", config.AuthorityMode)

	// Step 4: Email (optional)
	var emailer email.Service
	if os.Getenv("RESEND_API_KEY") != "" {
		emailer, err = email.NewService()
		if err != nil {
			logger.Startup().Warn("Email service unavailable, receipts disabled", "error", err.Error())
			emailer = nil
		}
	} else {
		logger.Startup().Info("No email provider configured, receipts disabled")
	}

	// Step 5: Dependency injection container
	appContainer := container.NewContainer(logger, perfTracker, cacheManager, auths, emailer)
	logger.Startup().Info("Dependency injection container created with singleton services")

	// Step 6: Background workers
	go appContainer.PriceBroadcaster.Run()
	go sweepIdleCarts(ctx, cacheManager, logger)
	logger.Startup().Info("Background workers started")

	// Step 7: HTTP server
	httpServer := server.New(config.Port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", config.Port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown")

	shutdownStart := time.Now()
	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// buildAuthorities selects the authority implementations for the configured
// mode. In local mode the catalog database is created and seeded on first run.
func buildAuthorities(logger *logging.ChanneledLogger) (container.Authorities, *database.DB, error) {
	if config.AuthorityMode == "remote" {
		client := remote.New(config.AuthorityBaseURL, config.RemoteCallTimeout, logger)
		return container.Authorities{
			Pricing:  client,
			Coupon:   client,
			Stock:    client,
			Products: client,
		}, nil, nil
	}

	db, err := database.NewConnectionWithLogger(config.DBDriver, config.DBPath, logger)
	if err != nil {
		return container.Authorities{}, nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	tableCreator := database.NewTableCreator()
	if err := tableCreator.CreateSchema(db.DB); err != nil {
		db.Close()
		return container.Authorities{}, nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if err := tableCreator.SeedInitialContent(db.DB); err != nil {
		db.Close()
		return container.Authorities{}, nil, fmt.Errorf("failed to seed catalog: %w", err)
	}

	authority := local.New(db, local.FeeSchedule{
		FreeDeliveryThreshold: config.FreeDeliveryThreshold,
		DeliveryFee:           config.DeliveryFee,
		ConvenienceFee:        config.ConvenienceFee,
	}, logger)

	return container.Authorities{
		Pricing:  authority,
		Coupon:   authority,
		Stock:    authority,
		Products: authority,
	}, db, nil
}

// ensureTokenSecrets mints ephemeral signing secrets when none are
// configured. Tokens signed with an ephemeral secret do not survive a
// restart, so a warning is logged.
func ensureTokenSecrets(logger *logging.ChanneledLogger) error {
	if config.HandoffTokenSecret == "" {
		key, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate handoff token secret: %w", err)
		}
		config.HandoffTokenSecret = key
		logger.Startup().Warn("HANDOFF_TOKEN_SECRET not set, minted an ephemeral secret; handoff tokens will not survive a restart")
	}
	if config.OpsTokenSecret == "" {
		key, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate ops token secret: %w", err)
		}
		config.OpsTokenSecret = key
		logger.Startup().Warn("OPS_TOKEN_SECRET not set, minted an ephemeral secret; ops sessions will not survive a restart")
	}
	return nil
}

// sweepIdleCarts periodically evicts carts with no recent activity.
func sweepIdleCarts(ctx context.Context, cacheManager *manager.Manager, logger *logging.ChanneledLogger) {
	ticker := time.NewTicker(idleCartSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evicted := cacheManager.EvictIdleCarts(idleCartMaxAge)
			if evicted > 0 {
				logger.System().Info("Idle cart sweep complete", "evicted", evicted)
			}
		}
	}
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
