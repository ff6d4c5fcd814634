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

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/coreybb/fabula/api"
	"github.com/coreybb/fabula/config"
	"github.com/coreybb/fabula/datastore"
	rh "github.com/coreybb/fabula/route-handlers"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 15 * time.Second
)

var (
	servePort    string
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Create missing tables before serving")
}

// backend is what the server needs from a persistence layer.
type backend struct {
	stories  datastore.StoryStore
	chapters datastore.ChapterStore
	pinger   datastore.Pinger
	closeFn  func() error
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg.Database, serveMigrate)
	if err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}
	defer b.closeFn()

	storyHandler := rh.NewStoryHandler(b.stories, logger)
	chapterHandler := rh.NewChapterHandler(b.chapters, logger)
	router := api.SetupRoutes(logger, storyHandler, chapterHandler, b.pinger, cfg.RequestTimeout)

	return startServer(ctx, cfg.Port, router)
}

// openBackend builds the stores for the configured driver. The memory driver keeps
// everything in process and needs no migration.
func openBackend(ctx context.Context, dbCfg config.DatabaseConfig, migrate bool) (*backend, error) {
	if dbCfg.Driver == config.DriverMemory {
		logger.Warn("Using the in-memory store; data is lost on exit")
		m := datastore.NewMemoryStore()
		return &backend{stories: m, chapters: m, pinger: m, closeFn: func() error { return nil }}, nil
	}

	db, err := openDatabase(ctx, dbCfg)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Schema is up to date", zap.String("driver", db.Driver()))
	}

	return &backend{
		stories:  datastore.NewStoryRepository(db),
		chapters: datastore.NewChapterRepository(db),
		pinger:   db,
		closeFn:  db.Close,
	}, nil
}

func openDatabase(ctx context.Context, dbCfg config.DatabaseConfig) (*datastore.DB, error) {
	db, err := datastore.Open(ctx, datastore.Options{
		Driver:          dbCfg.Driver,
		DSN:             dbCfg.DSN(),
		MaxOpenConns:    dbCfg.MaxOpenConns,
		MaxIdleConns:    dbCfg.MaxIdleConns,
		ConnMaxLifetime: dbCfg.ConnMaxLifetime,
		PingTimeout:     dbPingTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Database connection successful", zap.String("driver", db.Driver()))
	return db, nil
}

// startServer serves until ctx is cancelled, then shuts down gracefully.
func startServer(ctx context.Context, port string, router http.Handler) error {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("port", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done(): // Block until signal received
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("Server gracefully stopped")
	return nil
}
