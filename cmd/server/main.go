// Package main initializes and starts the FinTrack API server, setting up
// configuration, logging, the database, repositories, services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/FinTrack/internal/auth"
	"github.com/atinyakov/FinTrack/internal/config"
	"github.com/atinyakov/FinTrack/internal/db"
	"github.com/atinyakov/FinTrack/internal/logger"
	"github.com/atinyakov/FinTrack/internal/models"
	"github.com/atinyakov/FinTrack/internal/repository"
	"github.com/atinyakov/FinTrack/internal/server/handler/http"
	"github.com/atinyakov/FinTrack/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	options, err := config.Parse()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	if err := options.Validate(); err != nil {
		zapLogger.Fatal("invalid configuration", zap.Error(err))
	}

	postgresDB, err := db.InitPostgres(options.DB)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()
	gw := db.NewGateway(postgresDB)

	tokens := auth.NewTokenManager(options.SecretKey, options.TokenTTL)

	authRepo := repository.NewPostgresAuthRepository(gw)
	costRepo := repository.NewPostgresEntryRepository(gw, models.Costs)
	receivementRepo := repository.NewPostgresEntryRepository(gw, models.Receivements)

	authService := service.NewAuthService(authRepo, tokens)
	costService := service.NewEntryService(costRepo)
	receivementService := service.NewEntryService(receivementRepo)

	router := http.NewRouter(http.Handlers{
		Users:        http.NewUserHandler(authService, zapLogger),
		Costs:        http.NewEntryHandler(costService, models.Costs, zapLogger),
		Receivements: http.NewEntryHandler(receivementService, models.Receivements, zapLogger),
		DB:           gw,
	}, tokens, options.CORSOrigins, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		tlsOn := options.TLSCertFile != ""
		zapLogger.Info("starting server", zap.String("addr", options.Address), zap.Bool("tls", tlsOn))
		if tlsOn {
			errCh <- server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}
