package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cli"
	"fintrack/internal/events"
	apphttp "fintrack/internal/http"
	"fintrack/internal/identity"
	"fintrack/internal/log"
	"fintrack/internal/shell"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger := cli.LoadAndValidateConfig()
	result := cli.InitBackend(logger, cfg)
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err.Error())
		}
	}()

	shells := shell.NewManager(result.Store, cfg.SessionIdleTimeout, logger)
	defer shells.Close()

	srv := apphttp.NewServer(cfg, shells, identity.NewProvider(cfg.SecureCookies), logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting fintrack server",
			log.FieldPort, cfg.Port,
			log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	// Idle shell janitor.
	g.Go(func() error {
		return shells.Run(gctx)
	})

	// When another process writes to the shared database, its change
	// message prompts a reload so open subscriptions catch up.
	if result.Events != nil && result.Reloader != nil {
		reloader := result.Reloader
		g.Go(func() error {
			err := result.Events.ConsumeChanges(gctx, func(msg *events.ChangeMessage) error {
				logger.Info("Change message received",
					log.FieldUser, msg.User,
					log.FieldOperation, msg.Op,
					log.FieldTxID, msg.ID)
				return reloader.Reload(gctx, msg.User)
			})
			if err != nil && gctx.Err() == nil {
				logger.Error("Change consumer stopped", log.FieldError, err.Error())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Server error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
