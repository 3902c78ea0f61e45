package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"biblioteca/internal/certificate"
	"biblioteca/internal/config"
	"biblioteca/internal/server"
	"biblioteca/internal/store"
	"biblioteca/internal/store/local"
	"biblioteca/internal/store/rest"
)

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	store  store.Store
	server *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	app := &App{config: cfg, logger: logger}
	app.initStore()
	app.initServer()
	return app, nil
}

// initStore selects the persistence backend. The choice is made exactly
// once, here; everything downstream sees only the Store interface.
func (a *App) initStore() {
	switch a.config.StoreBackend {
	case config.BackendREST:
		a.logger.Info("Using REST store backend", zap.String("base_url", a.config.APIBaseURL))
		a.store = rest.New(a.config.APIBaseURL, a.logger)
	default:
		a.logger.Info("Using local file store backend", zap.String("path", a.config.DataFile))
		a.store = local.New(a.config.DataFile, a.logger)
	}
}

func (a *App) initServer() {
	certs := certificate.NewGenerator(a.config.GeminiAPIKey, a.logger)
	srv := server.New(a.store, certs, a.config.AdminPassword, a.config.PublicURL, a.logger)

	a.server = &http.Server{
		Addr:         ":" + a.config.Port,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", a.config.Port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-sigChan

	a.logger.Info("Shutting down")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("Shutdown complete")
	return nil
}
