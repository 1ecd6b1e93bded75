package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/tradejournal/trade-journal-service/internal/api"
	"github.com/tradejournal/trade-journal-service/internal/auth"
	"github.com/tradejournal/trade-journal-service/internal/config"
	"github.com/tradejournal/trade-journal-service/internal/database"
	"github.com/tradejournal/trade-journal-service/internal/journal"
	"github.com/tradejournal/trade-journal-service/internal/kafka"
	"github.com/tradejournal/trade-journal-service/internal/reports"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "trade-journal").Logger()
	cfg := config.Load()

	db, err := database.New(cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, report caching disabled")
		redisClient = nil
	}
	cache := reports.NewCache(redisClient, cfg.Redis.CacheTTL)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TradesTopic)
	defer producer.Close()

	svc := journal.NewService(db, producer, cache, logger)
	authManager := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.FillsTopic, cfg.Kafka.ConsumerGroup, svc, logger)
	go func() {
		if err := consumer.Start(ctx); err != nil {
			logger.Error().Err(err).Msg("kafka consumer stopped")
		}
	}()

	handler := api.NewHandler(svc, db, authManager, logger)
	router := api.SetupRoutes(handler, authManager)

	srv := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
}
