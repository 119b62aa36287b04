// Package main runs the SkillProof HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/skillproof/backend/config"
	"github.com/skillproof/backend/internal/auth"
	"github.com/skillproof/backend/internal/bootstrap"
	"github.com/skillproof/backend/internal/metrics"
	"github.com/skillproof/backend/internal/registration"
	"github.com/skillproof/backend/internal/server"
	"github.com/skillproof/backend/internal/verification"
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

	m := metrics.New(prometheus.DefaultRegisterer)
	engine := verification.NewEngine(st, bootstrap.EngineConfig(cfg), logger)
	engine.SetMetrics(m)

	var rdb *redis.Client
	if cfg.NotificationsEnabled {
		rdb, err = redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
		if err != nil {
			logger.Fatal("redis", zap.Error(err))
		}
		defer rdb.Close()
		engine.SetPublisher(worker.NewQueuePublisher(queue.NewQueue(rdb.Client, logger)))
	}

	workflow := registration.NewWorkflow(st, engine, logger)
	workflow.SetMetrics(m)

	router := server.NewRouter(server.Deps{
		Store:       st,
		Engine:      engine,
		Workflow:    workflow,
		JWT:         auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours),
		Metrics:     m,
		Gatherer:    prometheus.DefaultGatherer,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Logger:      logger,
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := st.Ready(ctx); err != nil {
				return err
			}
			if rdb != nil {
				return rdb.Healthy(ctx)
			}
			return nil
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("storage", cfg.StorageDriver))
	if err := server.Run(ctx, srv); err != nil {
		logger.Error("server", zap.Error(err))
	}
	logger.Info("server stopped")
}
