package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/samvad-hq/samvad-services-client/internal/config"
	"github.com/samvad-hq/samvad-services-client/internal/logger"
	"github.com/samvad-hq/samvad-services-client/internal/stubserver"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stubserver start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	if cfg.Env != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stub := stubserver.New(stubserver.Response{Message: cfg.StubMessage, Status: cfg.StubStatus}, log)
	srv := &http.Server{
		Addr:              cfg.StubAddr,
		Handler:           stub.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.InfoObj("stub server listening", "stub_meta", map[string]any{
			"addr":     cfg.StubAddr,
			"response": stub.Current(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("stub server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown stub server: %w", err)
	}
	logger.InfoObj("stub server stopped", "reason", ctx.Err())
	return nil
}
