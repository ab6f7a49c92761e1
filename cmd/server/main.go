package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"peppolsheet/internal/config"
	"peppolsheet/internal/infra"
	"peppolsheet/internal/logger"
	"peppolsheet/internal/router"
	"peppolsheet/internal/service"
	"peppolsheet/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// dev: pretty console, prod: JSON
	if err := logger.Setup(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		log.Fatal().Err(err).Msg("failed to configure logger")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	gateway := infra.NewStorecoveClient(cfg.StorecoveAPIURL, cfg.StorecoveAPIKey, cfg.StorecoveTimeout, nil)

	// Email copies go through the worker pool; without SMTP the feature is off.
	var emails service.EmailQueue
	mailer := infra.NewMailer(cfg)
	if mailer.Configured() {
		pool := worker.NewPool(rdb)
		pool.Register(worker.QueueEmail, worker.JobEmailCopy, worker.NewEmailWorker(mailer))
		pool.Start(ctx, cfg.WorkerPoolSize)
		emails = worker.NewDispatcher(rdb)
	} else {
		log.Warn().Msg("SMTP_HOST not set, email_copy_to will be ignored")
	}

	r := router.New(ctx, router.Deps{
		Config:  cfg,
		DB:      db,
		Redis:   rdb,
		Gateway: gateway,
		Emails:  emails,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.StorecoveTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("PeppolSheet API listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
