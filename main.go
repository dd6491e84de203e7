package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/portfolio-cms/content-api/handlers"
	"github.com/portfolio-cms/content-api/internal/config"
	"github.com/portfolio-cms/content-api/internal/content/service"
	"github.com/portfolio-cms/content-api/internal/storage"
	"github.com/portfolio-cms/content-api/internal/store"
	"github.com/portfolio-cms/content-api/pkg/logger"
	"github.com/portfolio-cms/content-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.SetOutput(os.Stdout, !cfg.Server.Production())
	logger.Init(cfg.Log.Level)
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())
	if cfg.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a missing or unreachable store degrades /test, it never aborts startup
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		logger.Warnf("store unavailable: %v", err)
	} else if cfg.Database.URL == "" {
		logger.Warnf("DATABASE_URL not set, running without a store")
	}
	svc := service.NewService(st)
	if err := svc.EnsureIndexes(ctx); err != nil && !errors.Is(err, store.ErrNotConnected) {
		logger.Warnf("ensure indexes: %v", err)
	}

	var media *handlers.MediaHandler
	if cfg.MinIO.Endpoint != "" {
		ms, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
		if err != nil {
			logger.Warnf("media storage disabled: %v", err)
		} else {
			media = handlers.NewMediaHandler(ms, cfg.Media.MaxUploadBytes, cfg.Media.PresignExpiry)
			logger.Infof("media storage enabled: bucket=%s", cfg.MinIO.Bucket)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := handlers.NewRouter(handlers.RouterOptions{
		AppName:        cfg.App.Name,
		Service:        svc,
		DatabaseURLSet: cfg.Database.URL != "",
		Media:          media,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting %s on %s (store=%q)", cfg.App.Name, srv.Addr, st.Name())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	failed := false
	select {
	case err := <-errCh:
		if err != nil {
			logger.Errorf("server failed: %v", err)
			failed = true
		}
	case <-ctx.Done():
		logger.Infof("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("shutdown: %v", err)
	}
	if err := st.Close(shutdownCtx); err != nil {
		logger.Warnf("close store: %v", err)
	}
	if failed {
		cancel()
		stop()
		os.Exit(1)
	}
}
