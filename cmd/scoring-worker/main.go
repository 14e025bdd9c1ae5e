package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"

	"github.com/rentalneeds/leadflow-backend/internal/leads/consumers"
	"github.com/rentalneeds/leadflow-backend/internal/leads/events"
	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/leads/service"
	"github.com/rentalneeds/leadflow-backend/internal/scoring"
	"github.com/rentalneeds/leadflow-backend/pkg/config"
	"github.com/rentalneeds/leadflow-backend/pkg/database"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
)

func main() {
	cfg, err := config.LoadWithValidation("scoring-worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("scoring-worker", cfg.Server.Environment)
	log.Info().Msg("starting Scoring Worker")

	// The worker shares the lead-service database, so it cannot run in memory
	if cfg.Database.InMemory() {
		log.Fatal().Msg("scoring-worker needs a PostgreSQL database; LEADFLOW_DATABASE_URL=memory is not supported")
	}

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	if err := rmq.DeclareDeadLetterQueue("scoring-worker"); err != nil {
		log.Fatal().Err(err).Msg("failed to declare dead letter queue")
	}

	publisher, err := events.NewLeadEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cache scoring.Cache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unavailable, trust score cache disabled")
		} else {
			cache = scoring.NewRedisCache(rdb, cfg.Redis.TTL)
		}
	}

	scoringService := scoring.NewService(scoring.NewClient(scoring.ClientConfig{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.OpenAI.Model,
		MaxTokens: cfg.OpenAI.MaxTokens,
		Timeout:   cfg.OpenAI.Timeout,
	}, log), cache, log)

	leadService := service.NewLeadService(repository.NewCustomerRepository(db), scoringService, publisher, log)

	consumer, err := consumers.NewScoringConsumer(rmq, leadService, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scoring consumer")
	}
	done, err := consumer.Start(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start scoring consumer")
	}

	// Health endpoint only
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httputil.Recoverer(log))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "scoring-worker",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("health server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info().Msg("shutting down worker")
	case <-done:
		log.Error().Msg("consumer stopped unexpectedly")
	}

	// Stop the consumer and let the in-flight message finish
	cancel()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		log.Warn().Msg("consumer did not stop in time")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}
