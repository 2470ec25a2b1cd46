package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/klabast/wb-services/beschikbaarheid/internal/app"
	"github.com/klabast/wb-services/beschikbaarheid/internal/commands"
	"github.com/klabast/wb-services/beschikbaarheid/ui"
)

func main() {
	// Check for subcommands
	if len(os.Args) > 1 && os.Args[1] == "hash-password" {
		if err := commands.HashPassword(os.Args[2:], os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 0, "Port to listen on (overrides APP_PORT)")
	configFile := flag.String("config", "", "Path to a config file")
	flag.Parse()

	cfg, err := app.LoadConfig(*configFile)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Port = *port
	}

	logger, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	authFile, err := app.ResolveAuthFile(cfg.AuthFile)
	if err != nil {
		return err
	}
	auth, err := app.LoadAuthenticator(authFile, logger)
	if err != nil {
		return fmt.Errorf("loading auth credentials: %w", err)
	}

	a, err := app.New(cfg, logger, auth, ui.Files)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.Sessions.Run(ctx, cfg.SessionSweepInterval)
	go auth.Run(ctx, cfg.SessionSweepInterval)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting Beschikbaarheid",
			zap.String("addr", fmt.Sprintf("http://localhost:%d", cfg.Port)),
			zap.String("env", cfg.Env),
			zap.Bool("auth", auth.Enabled()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
