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

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/warp/party-budget/api"
	"github.com/warp/party-budget/budget"
	"github.com/warp/party-budget/catalog"
	"github.com/warp/party-budget/internal/config"
	"github.com/warp/party-budget/payment"
	"github.com/warp/party-budget/store/sqlite"
)

// GRACEFUL SHUTDOWN:
//   On SIGINT/SIGTERM the server stops accepting connections, waits up to
//   30s for active requests, stops the draft sweeper and closes the store.

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quote API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Server.Port = port
		}
		if db, _ := cmd.Flags().GetString("db"); db != "" {
			cfg.Database.Path = db
		}
		return serve(cfg)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "HTTP server port (overrides config)")
	serveCmd.Flags().String("db", "", `SQLite database path, ":memory:" for in-memory (overrides config)`)
}

func serve(cfg config.Application) error {
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer store.Close()

	cat, err := loadCatalog(context.Background(), store, cfg.Catalog)
	if err != nil {
		return err
	}

	handler := api.NewHandler(store, cat, payment.NewStub(cfg.Payment.Method))
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.Server.AllowedOrigins})

	sweeper := api.NewDraftSweeper(handler)
	sweeper.TTL = cfg.Drafts.TTL
	if cfg.Drafts.SweepInterval > 0 {
		sweeper.CheckInterval = cfg.Drafts.SweepInterval
	} else {
		sweeper.Enabled = false
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("Server starting on http://localhost:%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

// loadCatalog seeds the store with the configured templates, then builds
// the catalog from everything stored. Templates edited in the database
// win over the seed.
func loadCatalog(ctx context.Context, store *sqlite.Store, cfg config.Catalog) (*catalog.Catalog, error) {
	var seed []budget.Template
	if cfg.File != "" {
		fromFile, err := catalog.LoadFile(cfg.File)
		if err != nil {
			return nil, err
		}
		seed = fromFile.All()
	} else {
		seed = catalog.DefaultTemplates()
	}

	inserted, err := store.SeedTemplates(ctx, seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed catalog: %w", err)
	}
	templates, err := store.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	log.WithFields(log.Fields{"templates": len(templates), "seeded": inserted}).Info("catalog loaded")
	return catalog.New(templates...)
}
