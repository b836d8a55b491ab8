package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/archive"
	"github.com/leakguard/leakguard/internal/classifier"
	"github.com/leakguard/leakguard/internal/collector"
	"github.com/leakguard/leakguard/internal/config"
	"github.com/leakguard/leakguard/internal/handler"
	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/notifier"
	"github.com/leakguard/leakguard/internal/pipeline"
	"github.com/leakguard/leakguard/internal/repository"
	"github.com/leakguard/leakguard/internal/search"
	"github.com/leakguard/leakguard/internal/server"
	"github.com/leakguard/leakguard/internal/telegram"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to configuration file")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic("Error initializing logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repository.MigrateDB(db, logger)

	channelRepo := repository.NewChannelRepository(db, logger)
	messageRepo := repository.NewMessageRepository(db, logger)
	entityRepo := repository.NewEntityRepository(db, logger)
	leakRepo := repository.NewLeakRepository(db, logger)
	alertRepo := repository.NewAlertRepository(db, logger)

	// Search, archive and notification backends are optional. A failure to
	// reach one is logged and the service runs without it; the database stays
	// the source of truth.
	var indexer pipeline.Indexer
	if cfg.OpenSearch.URL != "" {
		idx, err := search.New(cfg, logger)
		if err != nil {
			logger.Warn("Search indexing disabled", zap.Error(err))
		} else {
			indexer = idx
		}
	}

	var archiver pipeline.Archiver
	if cfg.Minio.Endpoint != "" {
		store, err := archive.New(ctx, cfg, logger)
		if err != nil {
			logger.Warn("Message archiving disabled", zap.Error(err))
		} else {
			archiver = store
		}
	}

	var alertNotifier pipeline.Notifier
	if cfg.Alerts.TelegramBotToken != "" && cfg.Alerts.TelegramChatID != 0 {
		n, err := notifier.NewTelegram(cfg.Alerts.TelegramBotToken, cfg.Alerts.TelegramChatID, logger)
		if err != nil {
			logger.Warn("Alert notifications disabled", zap.Error(err))
		} else {
			alertNotifier = n
		}
	}

	cls := classifier.New(cfg.Classifier.StrongCredentialScore)
	pipe := pipeline.New(cls, messageRepo, entityRepo, leakRepo, alertRepo,
		indexer, archiver, alertNotifier, models.Severity(cfg.Alerts.MinSeverity), logger)

	// The Telegram client is optional too: without credentials the REST API
	// still serves stored data and manual re-extraction.
	var codeSubmitter handler.CodeSubmitter
	if cfg.Telegram.APIID != 0 && cfg.Telegram.APIHash != "" {
		tgClient := telegram.NewClient(cfg, logger)
		codeSubmitter = tgClient

		go func() {
			if err := tgClient.Run(ctx, cfg.Telegram.Phone); err != nil && ctx.Err() == nil {
				logger.Error("Telegram client stopped", zap.Error(err))
			}
		}()

		coll := collector.New(tgClient, channelRepo, messageRepo, pipe,
			time.Duration(cfg.Collector.PollInterval)*time.Second,
			time.Duration(cfg.Collector.ChannelProcessDelay)*time.Second,
			cfg.Collector.FetchLimit,
			logger)

		go func() {
			select {
			case <-tgClient.AuthCompleted:
				coll.Run(ctx)
			case <-ctx.Done():
			}
		}()
	} else {
		logger.Warn("Telegram credentials not configured, collector disabled")
	}

	srv := server.NewServer(db, cfg, pipe, codeSubmitter, logger)
	go func() {
		if err := srv.Run(cfg.Server.Port); err != nil {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
}
