package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dopaplan/dopaplan-api/catalog"
	"github.com/dopaplan/dopaplan-api/config"
	"github.com/dopaplan/dopaplan-api/data"
	"github.com/dopaplan/dopaplan-api/logging"
	"github.com/dopaplan/dopaplan-api/scheduler"
	"github.com/dopaplan/dopaplan-api/server"
	"github.com/joho/godotenv"
)

// loadEnvFile reads .env from the working directory, then from the directory
// of the executable. A missing file is not an error
func loadEnvFile() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	_ = godotenv.Load(filepath.Join(filepath.Dir(ex), ".env"))
}

func main() {
	loadEnvFile()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	closer := logging.InitFromConfig(cfg)
	defer func() { _ = closer.Close() }()

	logging.Info("Configuration loaded",
		"env", cfg.Env.String(),
		"address", cfg.Address,
		"port", cfg.Port,
		"catalog_file", cfg.CatalogFile,
		"catalog_reload_at", cfg.CatalogReloadAt,
	)

	store := data.NewCatalogContainer()
	store.SetServerStartTime(time.Now())

	sched := scheduler.NewScheduler(store, catalog.NewLoader(cfg.CatalogFile), cfg.CatalogReloadAt)
	if err := sched.Start(); err != nil {
		logging.Fatal("Failed to start catalog scheduler", "error", err)
	}

	srv := server.NewServer(cfg, store)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("Server failed to start", "error", err)
		}
	}()

	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error", "error", err)
	}
	sched.Stop()
}
