// Package main is the entry point for the visa planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/pkordes/visa-planner/internal/config"
	"github.com/pkordes/visa-planner/internal/handler"
	"github.com/pkordes/visa-planner/internal/middleware"
	"github.com/pkordes/visa-planner/internal/repo"
	"github.com/pkordes/visa-planner/internal/service"
	"github.com/pkordes/visa-planner/internal/visa"
	"github.com/pkordes/visa-planner/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	ctx := context.Background()
	kv, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer closeStore.Close()

	// --- Planner ----------------------------------------------------------
	client := visa.NewClient(cfg.VisaAPIBaseURL,
		visa.WithHTTPClient(&http.Client{Timeout: cfg.VisaAPITimeout}),
		visa.WithCache(visa.NewCache(cfg.VisaCacheTTL, nil)),
		visa.WithLogger(logger),
	)
	planner := service.NewPlannerService(repo.NewSnapshotRepo(kv, logger), client, service.Options{
		Logger: logger,
	})
	defer planner.Close()

	if st, err := planner.RestoreLast(ctx); err != nil {
		slog.Warn("could not restore last session", "error", err)
	} else if st.Nationality != "" {
		slog.Info("session restored", "nationality", st.Nationality, "countries", len(st.Route))
	}

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer,
	// then CORS for the map front end and the request body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(middleware.DefaultMaxBodySize))

	r.Mount("/", handler.NewServer(planner, logger).Routes())

	// --- HTTP Server ------------------------------------------------------
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.VisaAPITimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openStore opens the configured key-value store and applies migrations.
// The returned closer releases the underlying connections.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.KVStore, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		// Migrations go through database/sql; the store itself uses the pool.
		sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres for migrations: %w", err)
		}
		n, err := migrations.Up(ctx, sqlDB, goose.DialectPostgres)
		sqlDB.Close()
		if err != nil {
			return nil, nil, err
		}
		logger.Info("migrations applied", "driver", cfg.StoreDriver, "count", n)

		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info("database connection established")
		return repo.NewPostgresKV(pool), closerFunc(pool.Close), nil

	default:
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		n, err := migrations.Up(ctx, db.DB, goose.DialectSQLite3)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		logger.Info("migrations applied", "driver", cfg.StoreDriver, "path", cfg.SQLitePath, "count", n)
		return repo.NewSQLiteKV(db), db, nil
	}
}

// closerFunc adapts a func() to io.Closer.
type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
