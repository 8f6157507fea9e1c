package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"perfin/internal/backend"
	"perfin/internal/backend/memory"
	"perfin/internal/backend/rest"
	"perfin/internal/capture"
	"perfin/internal/config"
	"perfin/internal/events"
	apphttp "perfin/internal/http"
	"perfin/internal/scan"
	"perfin/internal/store"
	"perfin/internal/upload"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var client backend.Client
	switch cfg.DataBackend {
	case "rest":
		client = rest.New(cfg.BackendURL)
		logger.Info("Initialized rest backend", "backend", cfg.DataBackend, "url", cfg.BackendURL)
	default:
		client = memory.NewWithSamples()
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	var pub *events.Publisher
	if cfg.AMQPURL != "" {
		p, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Event delivery is best-effort; the client works without it.
			logger.Warn("Event publishing disabled", "error", err)
		} else {
			pub = p
			defer pub.Close()
			logger.Info("Event publishing enabled",
				"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	st := store.New(client, pub)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := st.Load(loadCtx); err != nil {
		// The collection stays empty until a refresh succeeds.
		logger.Warn("Initial transaction load failed", "error", err)
	}
	loadCancel()

	writer := upload.NewS3Store(cfg.S3Region, cfg.S3Bucket, cfg.S3AccessKey, cfg.S3SecretKey)
	camera := capture.NewFileCamera(cfg.CameraDir)
	sc := scan.New(camera, writer)
	defer sc.Close()

	srv := apphttp.NewServer(":"+cfg.Port, st, sc)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting perfind server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
