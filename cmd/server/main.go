package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vytor/flashrecall/internal/api"
	"github.com/vytor/flashrecall/internal/config"
	"github.com/vytor/flashrecall/internal/jobs"
	"github.com/vytor/flashrecall/internal/logger"
	"github.com/vytor/flashrecall/internal/scheduler"
	"github.com/vytor/flashrecall/internal/services"
	"github.com/vytor/flashrecall/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("FlashRecall Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("store_backend=%s", cfg.StoreBackend)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("digest_interval_minutes=%d", cfg.DigestIntervalMinutes)
	log.Debug("digest_worker_count=%d", cfg.DigestWorkerCount)
	log.Debug("digest_queue_size=%d", cfg.DigestQueueSize)
	log.Debug("store_timeout_seconds=%d", cfg.StoreTimeoutSeconds)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("failed to open %s store: %v", cfg.StoreBackend, err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing progress store")
		if err := closer.Close(); err != nil {
			log.Warn("failed to close progress store: %v", err)
		}
	}()

	// Initialize services
	reviewService := services.NewReviewService(store, time.Now, cfg.StoreTimeout())
	statsService := services.NewStatsService(store, time.Now, cfg.StoreTimeout())

	srv := &api.Server{
		ReviewService: reviewService,
		StatsService:  statsService,
		Store:         store,
		PingTimeout:   cfg.StoreTimeout(),
	}

	digestPool := worker.NewPool(cfg.DigestWorkerCount, cfg.DigestQueueSize)
	queue := jobs.NewWorkerQueue(digestPool, statsService, worker.NewLogNotifier(log))

	var sched *scheduler.Scheduler
	if cfg.DigestInterval() > 0 {
		sched = scheduler.New(store, queue, cfg.DigestInterval(), cfg.StoreTimeout())
	} else {
		log.Info("due digest disabled")
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	digestPool.Start(gctx)
	if sched != nil {
		if err := sched.Start(); err != nil {
			log.Error("failed to start scheduler: %v", err)
			digestPool.Stop()
			os.Exit(1)
		}
	}

	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info("initiating graceful shutdown")
		if sched != nil {
			sched.Stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		log.Debug("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}

		log.Debug("stopping digest pool")
		digestPool.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error: %v", err)
	}

	log.Info("===========================================")
	log.Info("FlashRecall Server Stopped")
	log.Info("===========================================")
}
