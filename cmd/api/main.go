package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/investpro/ledger/internal/api"
	"github.com/investpro/ledger/internal/api/service"
	"github.com/investpro/ledger/internal/auth"
	"github.com/investpro/ledger/internal/config"
	"github.com/investpro/ledger/internal/data/mongo"
	"github.com/investpro/ledger/internal/data/postgres"
	"github.com/investpro/ledger/internal/domain/sequence"
	"github.com/investpro/ledger/internal/logger"
	"github.com/investpro/ledger/internal/platform/cache"
	"github.com/investpro/ledger/internal/platform/persistence"
	"github.com/investpro/ledger/internal/reporting"
	"github.com/investpro/ledger/internal/settlement"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("api")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize databases with app context
	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Initialize the balance cache
	balanceCache, err := cache.NewCache(appCtx, log, &cfg.Redis)
	if err != nil {
		log.Error("Failed to initialize Redis cache", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	walletRepo := postgres.NewWalletRepository(log, postgresDB)
	txnRepo := postgres.NewTransactionRepository(log, postgresDB)
	outboxRepo := postgres.NewOutboxRepository(log, postgresDB)
	historyRepo := mongo.NewHistoryRepository(log, mongoDB.Database())
	allocator := postgres.NewSequenceRepository(log, postgresDB, map[string]int64{
		sequence.CounterAccountNo: cfg.Ledger.AccountNoFloor,
	})

	// Initialize the settlement engine and services
	engine := settlement.NewEngine(log, postgresDB, walletRepo, txnRepo, outboxRepo, balanceCache, cfg.Ledger, cfg.Rails)
	walletService := service.NewWalletService(log, postgresDB, walletRepo, allocator, balanceCache, cfg.Ledger.TxMaxRetries)
	transactionService := service.NewTransactionService(log, txnRepo, historyRepo)
	reporter := reporting.NewReporter(log, walletRepo, historyRepo, balanceCache, cfg.Ledger.SummaryWindow)

	// Initialize token verification
	tokens := auth.NewService(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)

	// Initialize REST server
	server := api.NewServer(log, cfg, tokens, engine, walletService, transactionService, reporter)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server first so in-flight requests drain against live backends
	if err = server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Shutdown postgres connection pool
	postgresDB.Close()

	if err = balanceCache.Close(); err != nil {
		log.Error("Error closing Redis cache", "error", err)
	}

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
