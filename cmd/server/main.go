// Package main initializes and starts the cookie session authentication
// server, setting up configuration, logging, stores, repositories,
// services, handlers, and optional TLS.
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

	"github.com/atinyakov/cookieauth/internal/config"
	"github.com/atinyakov/cookieauth/internal/db"
	"github.com/atinyakov/cookieauth/internal/logger"
	"github.com/atinyakov/cookieauth/internal/repository"
	"github.com/atinyakov/cookieauth/internal/server/handler/http"
	"github.com/atinyakov/cookieauth/internal/service"
	"github.com/atinyakov/cookieauth/internal/token"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

const (
	startupTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
	cleanerInterval = 10 * time.Minute
)

func main() {
	// Parse command-line, config file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the credential store and the store-native revocation set.
	var (
		users       service.UserRepository
		revocations service.RevocationRepository
	)
	switch options.StoreDriver {
	case config.DriverPostgres:
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer func() { _ = postgresDB.Close() }()

		users = repository.NewPostgresUserRepository(postgresDB)
		revocations = repository.NewPostgresRevocationRepository(postgresDB)
		db.StartRevocationCleaner(ctx, postgresDB, cleanerInterval, zapLogger)

	default:
		initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		client, mdb, err := db.InitMongo(initCtx, options.MongoURI, options.MongoDatabase)
		cancel()
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer func() { _ = client.Disconnect(context.Background()) }()

		users = repository.NewMongoUserRepository(mdb.Collection(repository.UsersCollection))
		revocations = repository.NewMongoRevocationRepository(mdb.Collection(repository.RevokedTokensCollection))
	}

	// Redis, when configured, replaces the store-native revocation set.
	if options.RedisAddr != "" {
		initCtx, cancel := context.WithTimeout(ctx, startupTimeout)
		rdb, err := db.InitRedis(initCtx, options.RedisAddr)
		cancel()
		if err != nil {
			zapLogger.Fatal("cannot init redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()

		revocations = repository.NewRedisRevocationRepository(rdb, "")
	}

	codec, err := token.New([]byte(options.SecretKey), options.TokenTTL)
	if err != nil {
		zapLogger.Fatal("cannot init token codec", zap.Error(err))
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(users, revocations, codec, zapLogger)
	userService := service.NewUserService(users)

	// Create HTTP handlers for session and user endpoints.
	authHandler := &http.AuthHandler{
		AuthService: authService,
		Cookie:      http.SessionCookie{Secure: options.CookieSecure},
		Log:         zapLogger,
	}
	userHandler := &http.UserHandler{UserService: userService, Log: zapLogger}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, userHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Port),
			zap.String("store", options.StoreDriver),
			zap.Bool("tls", options.UseTLS()),
		)
		if options.UseTLS() {
			errCh <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server stopped", zap.Error(err))
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
