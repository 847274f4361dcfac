package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/geocoding"
	httpadapter "github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/drone-emergency-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/config"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/ingest"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/observability"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/seed"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/session"
	"github.com/couchcryptid/drone-emergency-dashboard/internal/store"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reports, err := seed.Load(cfg.SeedFile)
	if err != nil {
		logger.Error("failed to load seed data", "error", err)
		os.Exit(1)
	}

	// Status changes are published to Kafka only when ingestion is enabled.
	var (
		publisher store.StatusPublisher
		writer    *kafkaadapter.StatusWriter
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewStatusWriter(cfg, logger)
		publisher = writer
	}

	st := store.New(publisher, logger, metrics)
	if err := st.Seed(reports); err != nil {
		logger.Error("failed to seed report store", "error", err)
		os.Exit(1)
	}

	geocoder, err := geocoding.NewFromConfig(cfg, logger, metrics)
	if err != nil {
		logger.Error("failed to configure geocoding", "error", err)
		os.Exit(1)
	}

	loader := session.NewDetailLoader(st, geocoder, cfg.GeocodeTimeout, cfg.DisplayTimezone, logger, metrics)
	sessions := session.NewManager(st, loader, session.Options{
		RefreshInterval: cfg.RefreshInterval,
		Timezone:        cfg.DisplayTimezone,
	}, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Reports:  st,
		Details:  loader,
		Sessions: sessions,
		Ready:    st,
		Timezone: cfg.DisplayTimezone,
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start report ingestion.
	var reader *kafkaadapter.Reader
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		in := ingest.New(reader, st, logger, metrics)
		go func() {
			if err := in.Run(ctx); err != nil {
				logger.Error("ingestion error", "error", err)
			}
		}()
	} else {
		logger.Info("kafka disabled, serving seed data only")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := sessions.CloseAll(shutdownCtx); err != nil {
		logger.Error("session shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
