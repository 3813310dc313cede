package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moneta/internal/config"
	"moneta/internal/database"
	"moneta/internal/lock"
	"moneta/internal/logger"
	"moneta/internal/notify"
	"moneta/internal/services"
)

// The worker materializes due recurring expenses on a fixed interval. It is
// the deployment of choice when the API runs with several replicas: the
// replicas skip their in-process schedulers and this single worker, fenced
// further by the per-user lease, does the processing.
func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var locker lock.Locker = lock.NewMemoryLocker()
	if appConfig.RedisAddr != "" {
		redisLocker, err := lock.NewRedisLocker(ctx, appConfig.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		locker = redisLocker
		log.Infof("Using Redis processing lease at %s", appConfig.RedisAddr)
	}

	var publisher notify.Publisher = notify.NopPublisher{}
	if appConfig.AMQPURL != "" {
		amqpPublisher, err := notify.NewAMQPPublisher(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPQueue)
		if err != nil {
			return fmt.Errorf("failed to connect to message broker: %w", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Infof("Publishing occurrences to exchange %s", appConfig.AMQPExchange)
	}

	processor := services.NewRecurringProcessor(dbManager.DB(), locker, publisher)

	log.Infow("Recurring expense worker configured", "interval", appConfig.ProcessInterval)

	// Run one pass on startup so a restart never delays overdue templates by
	// a full interval.
	if count, err := processor.ProcessAll(ctx, time.Now()); err != nil {
		log.Errorw("initial processing run failed", "error", err)
	} else {
		log.Infow("initial processing run complete", "materialized", count)
	}

	ticker := time.NewTicker(appConfig.ProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Shutting down recurring expense worker")
			return nil
		case now := <-ticker.C:
			count, err := processor.ProcessAll(ctx, now)
			if err != nil {
				log.Errorw("processing run failed", "error", err)
				continue
			}
			log.Infow("processing run complete", "materialized", count)
		}
	}
}
