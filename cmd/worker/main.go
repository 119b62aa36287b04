// Package main runs the background notification worker.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/skillproof/backend/config"
	"github.com/skillproof/backend/internal/bootstrap"
	"github.com/skillproof/backend/internal/notifications"
	"github.com/skillproof/backend/internal/worker"
	"github.com/skillproof/backend/pkg/queue"
	"github.com/skillproof/backend/pkg/redis"
)

func main() {
	logger := bootstrap.NewLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	st, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}
	defer st.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	jobQueue := queue.NewQueue(rdb.Client, logger)
	var notifier worker.Notifier = worker.NewLogNotifier(logger)
	if st.Pool != nil {
		notifier = worker.NewRecordingNotifier(notifier, notifications.NewRepository(st.Pool), logger)
	}
	processor := worker.NewNotificationProcessor(jobQueue, st.Stores().Users, notifier, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		processor.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("worker stopped")
}
