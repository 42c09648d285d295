package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minicelia/celia/internal/api"
	"github.com/minicelia/celia/internal/config"
	"github.com/minicelia/celia/internal/dialogue"
	"github.com/minicelia/celia/internal/gateway"
	"github.com/minicelia/celia/internal/rules"
	"github.com/minicelia/celia/internal/session"
	"github.com/minicelia/celia/internal/store"
	"github.com/minicelia/celia/internal/worker"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "celia",
	Short: "Mini-CELIA - Copilot Inteligente de Licitaciones",
	RunE:  run,
}

func main() {
	rootCmd.AddCommand(exportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)
	slog.Info("logger initialized", "level", cfg.Log.Level)

	// 4. Initialize snapshot store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	// 5. Session container, restored from the last persisted snapshot when
	// one exists.
	sessions := session.New()
	if payload, savedAt, err := db.LoadSnapshot(ctx); err == nil {
		if err := sessions.Restore(payload); err != nil {
			slog.Warn("persisted snapshot unusable, starting fresh", "error", err)
		} else {
			slog.Info("session restored", "saved_at", savedAt.Format(time.RFC3339))
		}
	}

	// 6. Generation gateway + advisor
	generator := gateway.NewHTTPClient(
		cfg.Generation.BaseURL,
		time.Duration(cfg.Generation.Timeout),
	).WithModels(cfg.Generation.StructuredModel, cfg.Generation.NarrativeModel)

	var chat gateway.ChatResponder
	if cfg.OpenAI.APIKey != "" {
		chat = gateway.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		slog.Info("advisor initialized", "model", cfg.OpenAI.Model)
	}

	validator := rules.NewService(generator)

	// 7. Dialogue engine
	engine := dialogue.New(sessions, generator, chat, validator)
	engine.Welcome()

	// 8. Initialize HTTP router
	handler := api.NewHandler(sessions, engine, validator, generator, db, Version)
	router := api.NewRouter(handler, cfg.Auth.APIKey, cfg.Auth.AdminKey)
	slog.Info("router initialized")

	// 9. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 10. Background workers
	var wg sync.WaitGroup
	autosave := worker.NewAutosaveCoordinator(sessions, db,
		time.Duration(cfg.Worker.AutosaveInterval))
	startWorker(ctx, &wg, "autosave", autosave.Run)

	// 11. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		// Any other error indicates an actual server failure that should trigger shutdown.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel() // Trigger shutdown on server failure
		}
	}()

	// 12. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 13. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	// 13a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 13b. Wait for workers to complete
	wg.Wait()

	// 13c. Close store
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
