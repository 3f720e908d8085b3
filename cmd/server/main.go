package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/fotoforma/backoffice/internal/config"
	httpiface "github.com/fotoforma/backoffice/internal/interfaces/http"
	"github.com/fotoforma/backoffice/internal/notification"
	"github.com/fotoforma/backoffice/internal/report"
	"github.com/fotoforma/backoffice/internal/repository"
	"github.com/fotoforma/backoffice/internal/service"
	"github.com/fotoforma/backoffice/internal/storage"
	"github.com/fotoforma/backoffice/internal/workflow"
	"github.com/fotoforma/backoffice/pkg/database"
	"github.com/fotoforma/backoffice/pkg/utils"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting backoffice server", zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(cfg.Storage.AttachmentDir, 0755); err != nil {
		logger.Fatal("Failed to create attachment directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	expenseRepo := repository.NewExpenseRepository(db.DB, logger)
	historyRepo := repository.NewHistoryRepository(db.DB, logger)
	attachmentRepo := repository.NewAttachmentRepository(db.DB, logger)
	turmaRepo := repository.NewTurmaRepository(db.DB, logger)
	vendorRepo := repository.NewVendorRepository(db.DB, logger)
	eventRepo := repository.NewEventRepository(db.DB, logger)
	briefingRepo := repository.NewBriefingRepository(db.DB, logger)
	saleRepo := repository.NewSaleRepository(db.DB, logger)

	// Storage
	fileStorage := storage.NewLocalFileStorage(cfg.Storage.AttachmentDir, logger)
	folderManager := storage.NewFolderManager(cfg.Storage.AttachmentDir, logger)
	pdfValidator := storage.NewPDFValidator(logger)

	// Notification channel: email when configured, log-only otherwise.
	var notifier workflow.Notifier
	if cfg.Email.SendGridAPIKey != "" {
		notifier = notification.NewEmailNotifier(
			cfg.Email.SendGridAPIKey,
			cfg.Email.SenderName,
			cfg.Email.SenderEmail,
			cfg.Email.FinanceEmails,
			logger,
		)
	} else {
		notifier = notification.NewLogNotifier(logger)
	}

	// Workflow
	engine := workflow.NewEngine(db, expenseRepo, historyRepo, attachmentRepo, notifier, logger)
	liquidation := workflow.NewLiquidationProcessor(engine, fileStorage, folderManager, pdfValidator, logger)

	// Services
	expenseService := service.NewExpenseService(
		db, expenseRepo, historyRepo, attachmentRepo,
		turmaRepo, vendorRepo, fileStorage, folderManager, logger,
	)
	turmaService := service.NewTurmaService(turmaRepo, logger)
	vendorService := service.NewVendorService(vendorRepo, logger)
	eventService := service.NewEventService(eventRepo, turmaRepo, logger)
	briefingService := service.NewBriefingService(briefingRepo, turmaRepo, logger)
	saleService := service.NewSaleService(db, saleRepo, turmaRepo, logger)
	exporter := report.NewExporter(logger)

	handlers := httpiface.NewHandlers(
		expenseService,
		turmaService,
		vendorService,
		eventService,
		briefingService,
		saleService,
		engine,
		liquidation,
		exporter,
		attachmentRepo,
		cfg.Storage.MaxUploadMB,
		logger,
	)

	server := httpiface.NewServer(httpiface.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
	logger.Info("Server exited successfully")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
