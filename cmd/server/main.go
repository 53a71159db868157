package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Brownie44l1/dermascan-api/internal/analysis"
	"github.com/Brownie44l1/dermascan-api/internal/config"
	"github.com/Brownie44l1/dermascan-api/internal/features"
	"github.com/Brownie44l1/dermascan-api/internal/handlers"
	"github.com/Brownie44l1/dermascan-api/internal/model"
	"github.com/Brownie44l1/dermascan-api/internal/session"
	"github.com/Brownie44l1/dermascan-api/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to dermascan.yaml")
	flag.Parse()

	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	logger, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Info("loading model", "path", cfg.Model.Path)
	modelSession, err := model.Load(
		cfg.Model.Path,
		cfg.Model.MetadataPath,
		cfg.Model.LibraryPath,
		features.Length,
		features.EdgeDensityScale,
	)
	if err != nil {
		return err
	}
	defer modelSession.Close()

	classifier := model.NewSessionClassifier(modelSession)
	pipeline := analysis.New(features.NewExtractor(), classifier,
		analysis.WithLogger(logger),
		analysis.WithWorkers(cfg.Analysis.Workers),
		analysis.WithMaxImages(cfg.Analysis.MaxImages),
	)
	sessions := session.NewStore(cfg.Session.TTL)

	opts := []handlers.Option{handlers.WithLogger(logger)}
	if cfg.Store.Enabled {
		archive, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer archive.Close()
		opts = append(opts, handlers.WithArchive(archive))
		logger.Info("archive enabled", "path", cfg.Store.Path)
	}

	handler := handlers.NewHandler(pipeline, classifier, sessions, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, sessions, cfg.Session.TTL, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handlers.EnableCORS(handler.Routes()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"addr", srv.Addr,
		"model_version", modelSession.Metadata.Version,
		"classes", modelSession.Metadata.Classes,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func sweepSessions(ctx context.Context, sessions *session.Store, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(max(ttl/2, time.Second))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", "count", n)
			}
		}
	}
}
