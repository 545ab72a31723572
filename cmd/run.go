package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stakehouse/api"
	"stakehouse/config"
	"stakehouse/database"
	"stakehouse/events"
	"stakehouse/models"
	"stakehouse/repository"
	"stakehouse/service"
	"stakehouse/token"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting stakehouse...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Forward domain events to NATS when configured
	var forwarder *events.NATSForwarder
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		forwarder, err = events.ConnectNATS(cfg.NATSServers, cfg.NATSSubject)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer forwarder.Close()
		forwarder.SubscribeAll(eventBus)
		log.Info("NATS event forwarding enabled")
	}

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize token ledger client
	tokenClient := token.NewHTTPClient(cfg.TokenAPIURL)

	// The custody address must be whitelisted on the token ledger or every
	// deposit will fail. Surface the problem at startup rather than on the
	// first user request.
	whitelisted, err := tokenClient.Whitelisted(ctx, cfg.CustodyAddress)
	if err != nil {
		log.WithError(err).Warn("Could not verify custody address whitelist status")
	} else if !whitelisted {
		log.WithField("custody", cfg.CustodyAddress).Warn("Custody address is not whitelisted on the token ledger")
	}

	// Initialize services
	authorizer := service.NewOwnerAuthorizer()
	walletService := service.NewWalletService(uowFactory, tokenClient, cfg.CustodyAddress)
	gameService := service.NewGameService(uowFactory, tokenClient, authorizer)
	bonusService := service.NewBonusService(uowFactory, tokenClient, authorizer, cfg.CustodyAddress)
	settingsService := service.NewSettingsService(uowFactory, authorizer)

	// Bootstrap platform settings on first run
	settings, err := settingsService.EnsureSettings(ctx, &models.PlatformSettings{
		Owner:        cfg.OwnerAddress,
		FeeWallet:    cfg.FeeWallet,
		FeeRateBps:   cfg.DefaultFeeRateBps,
		MaxBonus:     cfg.DefaultMaxBonus,
		BonusAccount: cfg.BonusAccount,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap platform settings: %w", err)
	}
	log.WithFields(log.Fields{
		"owner":      settings.Owner,
		"feeRateBps": settings.FeeRateBps,
	}).Info("Platform settings loaded")

	// Start HTTP server
	server := api.NewServer(cfg.ListenAddr, walletService, gameService, bonusService, settingsService)

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Infof("Serving in %s mode", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	log.Info("Shutdown completed")
	return nil
}
