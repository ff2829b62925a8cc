package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-datastore/config"
	"github.com/fekuna/omnipos-datastore/pkg/logger"

	auditH "github.com/fekuna/omnipos-datastore/internal/audit/handler"
	auditListenerPkg "github.com/fekuna/omnipos-datastore/internal/audit/listener"
	auditRepoPkg "github.com/fekuna/omnipos-datastore/internal/audit/repository"
	auditUCPkg "github.com/fekuna/omnipos-datastore/internal/audit/usecase"

	invH "github.com/fekuna/omnipos-datastore/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-datastore/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-datastore/internal/inventory/usecase"

	saleH "github.com/fekuna/omnipos-datastore/internal/invoice/handler"
	saleRepoPkg "github.com/fekuna/omnipos-datastore/internal/invoice/repository"
	saleUCPkg "github.com/fekuna/omnipos-datastore/internal/invoice/usecase"

	userH "github.com/fekuna/omnipos-datastore/internal/user/handler"
	userRepoPkg "github.com/fekuna/omnipos-datastore/internal/user/repository"
	userUCPkg "github.com/fekuna/omnipos-datastore/internal/user/usecase"

	"github.com/fekuna/omnipos-datastore/internal/backup"
	backupH "github.com/fekuna/omnipos-datastore/internal/backup/handler"
	"github.com/fekuna/omnipos-datastore/internal/docstore"
	"github.com/fekuna/omnipos-datastore/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Open Document Store
	store, err := docstore.Open(cfg.SQLite.Path, cfg.SQLite.BusyTimeoutMs)
	if err != nil {
		appLogger.Fatal("Could not open document store", zap.Error(err))
	}
	defer store.Close()
	appLogger.Info("Opened SQLite document store", zap.String("path", cfg.SQLite.Path))

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewDocRepository(store)
	saleRepo := saleRepoPkg.NewDocRepository(store)
	userRepo := userRepoPkg.NewDocRepository(store)
	auditRepo := auditRepoPkg.NewDocRepository(store)
	settingsCol := store.Collection("settings", "")

	// 5. Initialize UseCases
	auditUC := auditUCPkg.NewAuditUseCase(auditRepo, appLogger)
	invUC := invUCPkg.NewInventoryUseCase(invRepo, appLogger)
	saleUC := saleUCPkg.NewInvoiceUseCase(saleRepo, invUC, appLogger)
	userUC := userUCPkg.NewUserUseCase(userRepo, auditUC, appLogger)

	// 5.5 Seed the owner account
	if err := userUC.Bootstrap(context.Background(), cfg.Bootstrap.OwnerPIN, cfg.Bootstrap.OwnerName); err != nil {
		appLogger.Fatal("Could not seed owner user", zap.Error(err))
	}

	// 6. Initialize Backup
	backupCols := &backup.Collections{
		Inventory: invRepo.Collection(),
		Invoices:  saleRepo.Collection(),
		Users:     userRepo.Collection(),
		Audit:     auditRepo.Collection(),
		Settings:  settingsCol,
	}
	exporter := backup.NewExporter(backupCols, appLogger)
	importer := backup.NewImporter(backupCols, appLogger)

	// 6.5 Initialize Listeners
	salesListener := auditListenerPkg.NewSalesListener(saleRepo.Collection(), auditUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go salesListener.Start(ctx)

	// 7. Initialize Handlers
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	saleHandler := saleH.NewInvoiceHandler(saleUC, appLogger)
	userHandler := userH.NewUserHandler(userUC, saleUC, appLogger)
	auditHandler := auditH.NewAuditHandler(auditUC, appLogger)
	backupHandler := backupH.NewBackupHandler(exporter, importer, appLogger)

	// 8. Start HTTP Server
	srv := server.New(appLogger, map[string]*docstore.Collection{
		invRepoPkg.CollectionName:   invRepo.Collection(),
		saleRepoPkg.CollectionName:  saleRepo.Collection(),
		userRepoPkg.CollectionName:  userRepo.Collection(),
		auditRepoPkg.CollectionName: auditRepo.Collection(),
		"settings":                  settingsCol,
	}, invHandler, saleHandler, userHandler, auditHandler, backupHandler)

	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Handler(),
	}

	appLogger.Info("Starting HTTP server", zap.String("addr", cfg.Server.HTTPAddr))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
