package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"shieldbackend/internal/config"
	"shieldbackend/internal/handler"
	"shieldbackend/internal/ml_client"
	"shieldbackend/internal/notifier"
	"shieldbackend/internal/repository"
	"shieldbackend/internal/safefilter"
	"shieldbackend/internal/server"
	"shieldbackend/internal/service"
	"shieldbackend/internal/verdict"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	// Initialize repositories
	historyRepo := repository.NewScanHistoryRepository(db, logger)
	feedbackRepo := repository.NewFeedbackRepository(db, logger)
	reportRepo := repository.NewReportRepository(db, logger)

	// Initialize ML service client
	mlClient := ml_client.NewClient(cfg.MLService.URL, time.Duration(cfg.MLService.TimeoutSeconds)*time.Second)

	// Initialize reviewer notifications (optional)
	var reviewNotifier service.ReviewNotifier
	if cfg.Notifier.Enabled {
		tg, err := notifier.NewTelegramNotifier(cfg.Notifier.TelegramBotToken, cfg.Notifier.ReviewerChatID, logger)
		if err != nil {
			logger.Warn("Failed to initialize Telegram notifier, continuing without it", zap.Error(err))
		} else {
			reviewNotifier = tg
		}
	}

	// Initialize services
	interpreter := verdict.NewInterpreter(verdict.Calibration{
		TextThreshold:       cfg.Detection.TextThreshold,
		PhishingThreshold:   cfg.Detection.PhishingThreshold,
		VeryHighConfidence:  cfg.Detection.VeryHighConfidence,
		ShortMessagePenalty: cfg.Detection.ShortMessagePenalty,
		MinWords:            cfg.Detection.MinWordsForCheck,
	})
	scanService := service.NewScanService(mlClient, safefilter.New(), interpreter, historyRepo, cfg.Detection.SafeGreetingBypass, logger)
	feedbackService := service.NewFeedbackService(feedbackRepo, historyRepo, reviewNotifier, logger)
	reportService := service.NewReportService(reportRepo, logger)

	handlers := server.Handlers{
		Scan:     handler.NewScanHandler(scanService, logger),
		Feedback: handler.NewFeedbackHandler(feedbackService, logger),
		Report:   handler.NewReportHandler(reportService, logger),
		Stats:    handler.NewStatsHandler(scanService, feedbackService, reportService, logger),
	}

	// Initialize and run the server
	srv := server.NewServer(cfg, handlers, logger, logrus.New())
	srv.Run(cfg.Server.Port)
}
