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
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"

	"github.com/rentalneeds/leadflow-backend/internal/admin"
	"github.com/rentalneeds/leadflow-backend/internal/admin/jwt"
	dochandler "github.com/rentalneeds/leadflow-backend/internal/docscan/handler"
	"github.com/rentalneeds/leadflow-backend/internal/docscan/processor"
	docservice "github.com/rentalneeds/leadflow-backend/internal/docscan/service"
	"github.com/rentalneeds/leadflow-backend/internal/docscan/storage"
	"github.com/rentalneeds/leadflow-backend/internal/leads/events"
	"github.com/rentalneeds/leadflow-backend/internal/leads/handler"
	"github.com/rentalneeds/leadflow-backend/internal/leads/repository"
	"github.com/rentalneeds/leadflow-backend/internal/leads/service"
	"github.com/rentalneeds/leadflow-backend/internal/scoring"
	"github.com/rentalneeds/leadflow-backend/internal/uploads"
	"github.com/rentalneeds/leadflow-backend/internal/voice"
	"github.com/rentalneeds/leadflow-backend/pkg/config"
	"github.com/rentalneeds/leadflow-backend/pkg/database"
	"github.com/rentalneeds/leadflow-backend/pkg/httputil"
	"github.com/rentalneeds/leadflow-backend/pkg/logger"
	"github.com/rentalneeds/leadflow-backend/pkg/messaging"
)

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("lead-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("lead-service", cfg.Server.Environment)
	log.Info().Msg("starting Lead Service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	health := map[string]func(context.Context) map[string]string{}

	// Customer store
	var repo service.Repository
	if cfg.Database.InMemory() {
		log.Warn().Msg("using in-memory customer store; data is lost on restart")
		repo = repository.NewMemoryRepository()
	} else {
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := db.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
		repo = repository.NewCustomerRepository(db)
		health["database"] = db.Health
	}

	// Lead events are optional outside production
	var publisher *events.LeadEventPublisher
	if cfg.RabbitMQ.URL != "" {
		rmq, err := messaging.New(&cfg.RabbitMQ, log)
		switch {
		case err != nil && cfg.IsProductionLike():
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		case err != nil:
			log.Warn().Err(err).Msg("RabbitMQ unavailable, lead events disabled")
		default:
			defer rmq.Close()
			publisher, err = events.NewLeadEventPublisher(rmq, log)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to create event publisher")
			}
			health["rabbitmq"] = func(context.Context) map[string]string { return rmq.Health() }
		}
	}

	// Trust scoring, with an optional Redis cache in front of the model
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
	scoringClient := scoring.NewClient(scoring.ClientConfig{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.OpenAI.Model,
		MaxTokens: cfg.OpenAI.MaxTokens,
		Timeout:   cfg.OpenAI.Timeout,
	}, log)
	scoringService := scoring.NewService(scoringClient, cache, log)

	leadService := service.NewLeadService(repo, scoringService, publisher, log)

	// Document extraction
	processors := []processor.Processor{processor.NewTextProcessor()}
	if cfg.OCR.Enabled {
		processors = append(processors, processor.NewOCRProcessor(processor.ExecRunner{}, processor.OCRConfig{
			Command:  cfg.OCR.Command,
			Language: cfg.OCR.Language,
			Timeout:  cfg.OCR.Timeout,
		}, log))
	}
	jobs := storage.NewTempStorage(cfg.OCR.JobTTL)
	jobs.StartCleanup(ctx)
	docService := docservice.NewService(processor.NewRegistry(processors...), jobs, log)

	// Admin auth
	adminHandler := admin.NewHandler(admin.NewService(cfg.Admin, jwt.NewManager(&cfg.JWT), log), log)
	if cfg.Admin.PasswordHash == "" {
		log.Warn().Msg("no admin password hash configured, dashboard routes are open")
	}

	// Handlers
	customerHandler := handler.NewCustomerHandler(leadService, log)
	scoringHandler := scoring.NewHandler(scoringService, log)
	documentHandler := dochandler.NewHandler(docService, cfg.Uploads.MaxFileBytes, log)
	uploadHandler := uploads.NewHandler(uploads.NewClient(uploads.ClientConfig{
		Token:   cfg.Uploads.Token,
		BaseURL: cfg.Uploads.BaseURL,
		Timeout: cfg.Uploads.Timeout,
	}, log), cfg.Uploads.MaxFileBytes, log)
	voiceHandler := voice.NewHandler(cfg.Voice)

	limiter := httputil.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	limiter.StartCleanup(ctx, 10*time.Minute)

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{
			"status":  "healthy",
			"service": "lead-service",
		}
		for name, check := range health {
			body[name] = check(r.Context())
		}
		httputil.JSON(w, http.StatusOK, body)
	})

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		adminHandler.RegisterRoutes(r)
		voiceHandler.RegisterRoutes(r)
		customerHandler.RegisterRoutes(r, adminHandler.RequireAdmin)

		// Public endpoints that reach paid collaborators
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			scoringHandler.RegisterRoutes(r)
			documentHandler.RegisterRoutes(r)
			uploadHandler.RegisterRoutes(r)
		})
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop cleanup loops
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
