package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"productif-agent/internal/completion"
	"productif-agent/internal/config"
	"productif-agent/internal/dispatch"
	"productif-agent/internal/handler"
	"productif-agent/internal/httpserver"
	"productif-agent/internal/intent"
	"productif-agent/internal/pipeline"
	"productif-agent/internal/productif"
	"productif-agent/internal/session"
	"productif-agent/internal/transport/whatsapp"
	"productif-agent/pkg/logger"
	"productif-agent/pkg/mq"
	"productif-agent/pkg/otel"
	"productif-agent/pkg/redis"
	"productif-agent/pkg/util"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(cfg.Agent.LogLevel)
	defer log.Sync()

	log.Info("Starting productif-agent...",
		zap.String("port", cfg.Server.Port),
		zap.String("session_backend", cfg.Agent.SessionBackend),
		zap.String("completion_provider", cfg.Completion.Provider),
	)

	shutdownTracing, err := otel.Init(context.Background(), otel.Config{
		ServiceName:    "productif-agent",
		ServiceVersion: "1.0.0",
		Endpoint:       cfg.Otel.Endpoint,
		Enabled:        cfg.Otel.Enabled,
		Insecure:       cfg.Otel.Insecure,
		SampleRatio:    cfg.Otel.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("Failed to init OpenTelemetry", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Error("Failed to flush traces", zap.Error(err))
		}
	}()

	ctx := context.Background()
	var checks []httpserver.ReadinessCheck

	// Redis：会话存储与去重，未配置时使用内存会话且不去重
	var rdb *goredis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal("Failed to init Redis", zap.Error(err))
		}
		defer rdb.Close()
		checks = append(checks, httpserver.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		log.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))
	}

	var sessions session.Store
	if cfg.Agent.SessionBackend == config.SessionBackendRedis {
		sessions = session.NewRedisStore(rdb, cfg.Agent.SessionTTL)
	} else {
		sessions = session.NewMemoryStore()
	}

	var dedup handler.Deduper
	if rdb != nil {
		dedup = util.NewDeduper(rdb, cfg.Agent.DedupTTL, log)
	}

	// MQ：事件发布尽力而为，未配置时不发布
	var publisher pipeline.EventPublisher
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		defer p.Close()
		publisher = p
		checks = append(checks, httpserver.ReadinessCheck{
			Name: "mq",
			Check: func(context.Context) error {
				if !p.IsConnected() {
					return errors.New("connection closed")
				}
				return nil
			},
		})
	}

	loc, err := cfg.Agent.Location()
	if err != nil {
		log.Fatal("Invalid timezone", zap.Error(err))
	}

	completer, err := completion.New(ctx, cfg.Completion, log)
	if err != nil {
		log.Fatal("Failed to init completion provider", zap.Error(err))
	}

	api := productif.NewClient(cfg.Productif.BaseURL, cfg.Productif.Timeout, log)
	dates := intent.NewDateResolver(time.Now, loc)
	classifier := intent.NewClassifier(completer, dates, cfg.Completion.Timeout, log)
	dispatcher := dispatch.NewDispatcher(api, dispatch.Options{DayRatingHabit: cfg.Agent.DayRatingHabit}, log)
	agent := pipeline.New(sessions, classifier, dispatcher, api, publisher, log)

	sender := whatsapp.NewSender(cfg.WhatsApp, log)
	webhook := handler.NewWebhookHandler(agent, sender, dedup, cfg.WhatsApp.VerifyToken, cfg.Agent.PipelineTimeout, log)

	gin.SetMode(gin.ReleaseMode)
	router := httpserver.NewRouter(webhook, log, checks...)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("productif-agent is fully initialized and running")

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down productif-agent gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Agent.PipelineTimeout+5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("productif-agent shutdown complete")
}
