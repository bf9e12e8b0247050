package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankledger/internal/backup"
	"bankledger/internal/config"
	"bankledger/internal/dispatch"
	"bankledger/internal/entrypoint/rest"
	"bankledger/internal/entrypoint/telegram"
	"bankledger/internal/usecase"
	"bankledger/internal/usecase/repository/idempotence"
	"bankledger/internal/usecase/repository/ledger"

	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	db, err := bolt.Open(cfg.DBPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ledgerRepository, err := ledger.NewBoltDB(db)
	if err != nil {
		log.Fatal(err)
	}
	accounts := usecase.NewAccounts(log.WithField("component", "accounts"))
	dispatcher := dispatch.New(ledgerRepository, accounts, log.WithField("component", "dispatch"))

	idempotenceRepository, err := idempotence.NewBoltDB(db)
	if err != nil {
		log.Fatal(err)
	}
	idempotenceUsecase := usecase.NewIdempotence(idempotenceRepository)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramToken != "" {
		bot, err := telegram.New(cfg.TelegramToken, cfg.TelegramAdmin, idempotenceUsecase, dispatcher, log.WithField("component", "telegram"))
		if err != nil {
			log.Fatal(err)
		}
		bot.Start(ctx)
		defer bot.Stop()
	}

	if cfg.BackupSchedule != "" {
		scheduler, err := backup.New(
			cfg.BackupSchedule, cfg.BackupDir, ledgerRepository, log.WithField("component", "backup"),
			backup.WithDedupePruning(idempotenceUsecase, cfg.DedupeRetention),
		)
		if err != nil {
			log.Fatal(err)
		}
		scheduler.Start()
		defer func() { <-scheduler.Stop().Done() }()
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      rest.NewServer(dispatcher, log.WithField("component", "http")).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("http shutdown")
		}
	}()

	log.Infof("Starting server on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
}
