package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PewPewSlowMo/SmartCallCenter/internal/aggregator"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/api"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/config"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/event"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/metrics"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/reports"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/storage"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/ticker"
	"github.com/PewPewSlowMo/SmartCallCenter/internal/websocket"
	"github.com/PewPewSlowMo/SmartCallCenter/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Int("service_level_seconds", cfg.ServiceLevelSecs).
		Str("timezone", cfg.Location.String()).
		Msg("starting call center reporting server")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create store
	store, err := storage.NewStore(ctx, storage.LoadDynamoConfig(), log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create store")
	}

	m := metrics.Get()

	// Create report service
	reportService := reports.NewService(store, aggregator.New(cfg.ServiceLevelSecs), cfg.Location, m, log.Logger)
	reportHandler := api.NewReportHandler(reportService, log.Logger)

	// Create call record receiver
	receiver := event.NewReceiver(store, m, log.Logger)

	// Create WebSocket hub
	hub := websocket.NewHub(log.Logger, m)
	go hub.Run()

	// Push the live dashboard to connected clients
	publisher := ticker.NewPublisher(hub, reportService, cfg.LiveInterval, m, log.Logger)
	go publisher.Start(ctx)

	// Create WebSocket handler
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", m.Handler())
	r.Route("/api/reports", reportHandler.Routes)
	r.Get("/ws", wsHandler.ServeHTTP)

	// Internal endpoints for the telephony side
	r.Route("/internal", func(r chi.Router) {
		r.Post("/calls", receiver.HandleCall)
		r.Get("/calls/stats", receiver.GetStats)
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the publisher
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"callcenter-reports"}`)
}
